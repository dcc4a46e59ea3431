package base

import (
	"fmt"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/shopspring/decimal"
)

// NewStrategy returns a base with the default board lot and no signals
func NewStrategy() Strategy {
	return Strategy{lots: NewLotSizes(common.OneHundred)}
}

// SetSignals sets the buy and sell dates
func (s *Strategy) SetSignals(buy, sell DateSet) {
	s.buyDates = buy
	s.sellDates = sell
}

// SetLotSizes sets the trade size per instrument
func (s *Strategy) SetLotSizes(l LotSizes) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.lots = l
	return nil
}

// LotSize returns the trade size of an instrument, the default board lot
// when none is configured
func (s *Strategy) LotSize(instrument string) decimal.Decimal {
	if s.lots.Default.IsZero() && s.lots.PerInstrument == nil {
		return common.OneHundred
	}
	return s.lots.For(instrument)
}

// IsBuyDate reports whether t is a buy signal date for instrument
func (s *Strategy) IsBuyDate(instrument string, t time.Time) bool {
	return s.buyDates.Contains(instrument, t)
}

// IsSellDate reports whether t is a sell signal date for instrument
func (s *Strategy) IsSellDate(instrument string, t time.Time) bool {
	return s.sellDates.Contains(instrument, t)
}

// SetFeeModel sets the fee model used to cost buys
func (s *Strategy) SetFeeModel(c Coster) {
	s.fees = c
}

// CanAfford reports whether buying amount at price, fees included, fits in
// cash
func (s *Strategy) CanAfford(instrument string, price, amount, cash decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, nil
	}
	c := s.fees
	if c == nil {
		e := exchange.Default()
		c = &e
	}
	f, err := c.BuyCost(instrument, price, amount)
	if err != nil {
		return false, err
	}
	return f.Total.LessThanOrEqual(cash), nil
}

// NewDateSet builds a DateSet from dates per instrument
func NewDateSet(dates map[string][]time.Time) DateSet {
	d := make(DateSet, len(dates))
	for instrument, times := range dates {
		for i := range times {
			d.Add(instrument, times[i])
		}
	}
	return d
}

// Add marks t as a signal date for instrument
func (d DateSet) Add(instrument string, t time.Time) {
	m, ok := d[instrument]
	if !ok {
		m = make(map[int64]struct{})
		d[instrument] = m
	}
	m[common.TimeKey(t)] = struct{}{}
}

// Contains reports whether t is a signal date for instrument
func (d DateSet) Contains(instrument string, t time.Time) bool {
	_, ok := d[instrument][common.TimeKey(t)]
	return ok
}

// NewLotSizes returns lot sizes defaulting to def
func NewLotSizes(def decimal.Decimal) LotSizes {
	return LotSizes{Default: def}
}

// For returns the lot size of an instrument
func (l LotSizes) For(instrument string) decimal.Decimal {
	if v, ok := l.PerInstrument[instrument]; ok {
		return v
	}
	return l.Default
}

// Validate ensures every lot size is positive
func (l LotSizes) Validate() error {
	if !l.Default.IsPositive() {
		return fmt.Errorf("default %v %w", l.Default, ErrInvalidLotSize)
	}
	for k, v := range l.PerInstrument {
		if !v.IsPositive() {
			return fmt.Errorf("%v %v %w", k, v, ErrInvalidLotSize)
		}
	}
	return nil
}

// Holding returns true when the position has a positive quantity
func (p Position) Holding() bool {
	return p.Quantity.IsPositive()
}
