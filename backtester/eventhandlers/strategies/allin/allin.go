package allin

import (
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/shopspring/decimal"
)

const (
	// Name is the strategy name
	Name        = "allin"
	description = `Buys as many whole lots as available cash allows on buy signal dates and sells the entire holding on sell signal dates.`
)

// Strategy commits all cash on a buy and exits the whole position on a sell
type Strategy struct {
	base.Strategy
}

// New returns an all in strategy with no signal dates
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

// CalcBuyAmount grows the amount one lot at a time until the cost, fees
// included, exceeds cash and returns the last affordable amount
func (s *Strategy) CalcBuyAmount(bar *data.Bar, cash decimal.Decimal) (decimal.Decimal, error) {
	if bar == nil || !bar.Price.IsPositive() {
		return decimal.Zero, nil
	}
	lot := s.LotSize(bar.Instrument)
	amount := decimal.Zero
	for {
		next := amount.Add(lot)
		ok, err := s.CanAfford(bar.Instrument, bar.Price, next, cash)
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			return amount, nil
		}
		amount = next
	}
}

// CalcSellAmount returns the entire held quantity
func (s *Strategy) CalcSellAmount(_ *data.Bar, _ decimal.Decimal, pos base.Position) (decimal.Decimal, error) {
	if !pos.Holding() {
		return decimal.Zero, nil
	}
	return pos.Quantity, nil
}

// OnSameDayConflict does nothing
func (s *Strategy) OnSameDayConflict(*data.Bar) error {
	return nil
}
