package fixedlot

import (
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/shopspring/decimal"
)

const (
	// Name is the strategy name
	Name        = "fixedlot"
	description = `Buys and sells a fixed lot on the supplied signal dates. A buy is only made when the lot, fees included, can be paid for with available cash. A sell never exceeds the held quantity.`
)

// Strategy trades a fixed lot per signal date
type Strategy struct {
	base.Strategy
}

// New returns a fixed lot strategy with the default board lot and no
// signal dates
func New() *Strategy {
	return &Strategy{Strategy: base.NewStrategy()}
}

// Name returns the name
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// CheckBuy is true on buy signal dates
func (s *Strategy) CheckBuy(bar *data.Bar, _ decimal.Decimal) (bool, error) {
	if bar == nil {
		return false, nil
	}
	return s.IsBuyDate(bar.Instrument, bar.Time), nil
}

// CheckSell is true on sell signal dates
func (s *Strategy) CheckSell(bar *data.Bar, _ decimal.Decimal, _ base.Position) (bool, error) {
	if bar == nil {
		return false, nil
	}
	return s.IsSellDate(bar.Instrument, bar.Time), nil
}

// CalcBuyAmount returns the lot when it is affordable, otherwise zero
func (s *Strategy) CalcBuyAmount(bar *data.Bar, cash decimal.Decimal) (decimal.Decimal, error) {
	if bar == nil {
		return decimal.Zero, nil
	}
	lot := s.LotSize(bar.Instrument)
	ok, err := s.CanAfford(bar.Instrument, bar.Price, lot, cash)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return lot, nil
}

// CalcSellAmount returns the lot, capped at the held quantity
func (s *Strategy) CalcSellAmount(bar *data.Bar, _ decimal.Decimal, pos base.Position) (decimal.Decimal, error) {
	if bar == nil || !pos.Holding() {
		return decimal.Zero, nil
	}
	return decimal.Min(s.LotSize(bar.Instrument), pos.Quantity), nil
}

// OnSameDayConflict does nothing, fixed lots keep no per lot state
func (s *Strategy) OnSameDayConflict(*data.Bar) error {
	return nil
}
