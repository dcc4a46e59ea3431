package turtle

import (
	"fmt"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/fixedlot"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/shopspring/decimal"
)

// DefaultConfig returns the classic turtle parameters: stop-loss at 2N,
// stop-profit at 10N, pyramid every 1N and four lots at most
func DefaultConfig() Config {
	return Config{
		IndicatorField:     data.ATRFieldName(defaultATRPeriod),
		StopLossMultiple:   decimal.NewFromInt(2),
		StopProfitMultiple: decimal.NewFromInt(10),
		PyramidMultiple:    decimal.NewFromInt(1),
		MaxPosition:        decimal.NewFromInt(400),
		UpdateOnSameDay:    true,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.MaxHoldingDuration < 0 {
		return fmt.Errorf("%v %w", c.MaxHoldingDuration, ErrNegativeDuration)
	}
	if c.MaxPosition.IsNegative() {
		return fmt.Errorf("max position %v %w", c.MaxPosition, base.ErrInvalidCustomSettings)
	}
	for k, v := range c.MaxPositions {
		if v.IsNegative() {
			return fmt.Errorf("%v max position %v %w", k, v, base.ErrInvalidCustomSettings)
		}
	}
	return nil
}

// New returns a turtle strategy using cfg
func New(cfg Config) *Strategy {
	return &Strategy{
		lot:   fixedlot.New(),
		cfg:   cfg,
		holds: make(map[string][]base.Lot),
	}
}

// Name returns the name
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// SetSignals sets the buy and sell dates
func (s *Strategy) SetSignals(buy, sell base.DateSet) {
	s.lot.SetSignals(buy, sell)
}

// SetLotSizes sets the trade size per instrument
func (s *Strategy) SetLotSizes(l base.LotSizes) error {
	return s.lot.SetLotSizes(l)
}

// SetFeeModel sets the fee model used to cost buys
func (s *Strategy) SetFeeModel(c base.Coster) {
	s.lot.SetFeeModel(c)
}

// Config returns the risk parameters
func (s *Strategy) Config() Config {
	return s.cfg
}

// MaxPosition returns the position cap of an instrument, zero when
// unlimited
func (s *Strategy) MaxPosition(instrument string) decimal.Decimal {
	if v, ok := s.cfg.MaxPositions[instrument]; ok {
		return v
	}
	return s.cfg.MaxPosition
}

// Holds returns a copy of the open lots of an instrument, oldest first
func (s *Strategy) Holds(instrument string) []base.Lot {
	resp := make([]base.Lot, len(s.holds[instrument]))
	copy(resp, s.holds[instrument])
	return resp
}

// SeedLot registers a lot held before the first bar
func (s *Strategy) SeedLot(l base.Lot) error {
	if !l.Quantity.IsPositive() {
		return fmt.Errorf("%v %v %w", l.Instrument, l.Quantity, ErrInvalidLot)
	}
	s.holds[l.Instrument] = append(s.holds[l.Instrument], l)
	return nil
}

// CalcPrice returns the stop-loss, stop-profit and next pyramid levels for
// a lot opened at price. A disabled multiple or a missing indicator yields
// -1 for the level
func (s *Strategy) CalcPrice(price decimal.Decimal, bar *data.Bar) (stopLoss, stopProfit, nextPyramid decimal.Decimal) {
	stopLoss, stopProfit, nextPyramid = common.NegativeOne, common.NegativeOne, common.NegativeOne
	if bar == nil {
		return
	}
	n, ok := bar.Field(s.cfg.IndicatorField)
	if !ok {
		return
	}
	if s.cfg.StopLossMultiple.IsPositive() {
		stopLoss = price.Sub(s.cfg.StopLossMultiple.Mul(n))
	}
	if s.cfg.StopProfitMultiple.IsPositive() {
		stopProfit = price.Add(s.cfg.StopProfitMultiple.Mul(n))
	}
	if s.cfg.PyramidMultiple.IsPositive() {
		nextPyramid = price.Add(s.cfg.PyramidMultiple.Mul(n))
	}
	return
}

// CheckBuy is true on a buy signal date when the price reached the newest
// lot's pyramid level and the position is below its cap
func (s *Strategy) CheckBuy(bar *data.Bar, cash decimal.Decimal) (bool, error) {
	if bar == nil {
		return false, nil
	}
	ok, err := s.lot.CheckBuy(bar, cash)
	if err != nil || !ok {
		return false, err
	}
	return s.canAdd(bar), nil
}

// CheckSell is true on a sell signal date or when any open lot breached a
// risk level
func (s *Strategy) CheckSell(bar *data.Bar, cash decimal.Decimal, pos base.Position) (bool, error) {
	if bar == nil {
		return false, nil
	}
	s.SyncPosition(bar.Instrument, pos)
	ok, err := s.lot.CheckSell(bar, cash, pos)
	if err != nil || ok {
		return ok, err
	}
	lots := s.holds[bar.Instrument]
	for i := range lots {
		if s.stopLossHit(&lots[i], bar) || s.stopProfitHit(&lots[i], bar) || s.expired(&lots[i], bar) {
			return true, nil
		}
	}
	return false, nil
}

// CalcBuyAmount returns the fixed lot when it is affordable and the lot may
// be added, recording the new lot with its risk levels
func (s *Strategy) CalcBuyAmount(bar *data.Bar, cash decimal.Decimal) (decimal.Decimal, error) {
	if bar == nil || !s.canAdd(bar) {
		return decimal.Zero, nil
	}
	amount, err := s.lot.CalcBuyAmount(bar, cash)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, err
	}
	sl, sp, next := s.CalcPrice(bar.Price, bar)
	s.holds[bar.Instrument] = append(s.holds[bar.Instrument], base.Lot{
		Instrument:  bar.Instrument,
		Opened:      bar.Time,
		Price:       bar.Price,
		Quantity:    amount,
		StopLoss:    sl,
		StopProfit:  sp,
		NextPyramid: next,
	})
	log.Debugf(log.Strategy, "%v %v %v opened lot %v at %v, stop-loss %v stop-profit %v next %v",
		Name, common.FormatTime(bar.Time), bar.Instrument, amount, bar.Price, sl, sp, next)
	return amount, nil
}

// CalcSellAmount closes lots in priority order: breached stop-losses, then
// breached stop-profits, then expired lots, then every lot on a sell signal
// date. Otherwise the fixed lot is taken from the oldest lots. The result
// never exceeds the held quantity
func (s *Strategy) CalcSellAmount(bar *data.Bar, cash decimal.Decimal, pos base.Position) (decimal.Decimal, error) {
	if bar == nil {
		return decimal.Zero, nil
	}
	s.SyncPosition(bar.Instrument, pos)
	if !pos.Holding() {
		return decimal.Zero, nil
	}
	rules := []struct {
		reason string
		match  func(*base.Lot, *data.Bar) bool
	}{
		{"stop-loss", s.stopLossHit},
		{"stop-profit", s.stopProfitHit},
		{"holding duration", s.expired},
		{"sell signal", func(*base.Lot, *data.Bar) bool { return s.lot.IsSellDate(bar.Instrument, bar.Time) }},
	}
	for i := range rules {
		amount := s.closeMatching(bar, rules[i].match)
		if amount.IsPositive() {
			log.Debugf(log.Strategy, "%v %v %v closing %v by %v",
				Name, common.FormatTime(bar.Time), bar.Instrument, amount, rules[i].reason)
			return decimal.Min(amount, pos.Quantity), nil
		}
	}
	amount, err := s.lot.CalcSellAmount(bar, cash, pos)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, err
	}
	s.consume(bar.Instrument, amount)
	return amount, nil
}

// OnSameDayConflict reprices the newest lot's stop-profit and pyramid level
// at the bar price. The stop-loss is left untouched
func (s *Strategy) OnSameDayConflict(bar *data.Bar) error {
	if bar == nil || !s.cfg.UpdateOnSameDay {
		return nil
	}
	lots := s.holds[bar.Instrument]
	if len(lots) == 0 {
		return nil
	}
	_, sp, next := s.CalcPrice(bar.Price, bar)
	last := &lots[len(lots)-1]
	last.StopProfit = sp
	last.NextPyramid = next
	return nil
}

// SyncPosition drops the oldest lots until the open lots no longer exceed
// the held quantity. A flat position clears every lot
func (s *Strategy) SyncPosition(instrument string, pos base.Position) {
	if !pos.Holding() {
		delete(s.holds, instrument)
		return
	}
	open := decimal.Zero
	for _, l := range s.holds[instrument] {
		open = open.Add(l.Quantity)
	}
	if excess := open.Sub(pos.Quantity); excess.IsPositive() {
		log.Debugf(log.Strategy, "%v %v dropping %v stale lot quantity", Name, instrument, excess)
		s.consume(instrument, excess)
	}
}

// PositionUnit returns the turtle unit size int(funds / price / n), funds
// being the money allowed at risk and n the volatility measure
func PositionUnit(funds, price, n decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !n.IsPositive() {
		return decimal.Zero
	}
	return funds.Div(price).Div(n).Truncate(0)
}

func (s *Strategy) canAdd(bar *data.Bar) bool {
	lots := s.holds[bar.Instrument]
	if len(lots) > 0 && bar.Price.LessThan(lots[len(lots)-1].NextPyramid) {
		return false
	}
	limit := s.MaxPosition(bar.Instrument)
	if !limit.IsPositive() {
		return true
	}
	held := decimal.Zero
	for i := range lots {
		held = held.Add(lots[i].Quantity)
	}
	return held.LessThan(limit)
}

func (s *Strategy) stopLossHit(l *base.Lot, bar *data.Bar) bool {
	return l.StopLoss.IsPositive() && bar.Price.LessThanOrEqual(l.StopLoss)
}

func (s *Strategy) stopProfitHit(l *base.Lot, bar *data.Bar) bool {
	return l.StopProfit.IsPositive() && bar.Price.GreaterThanOrEqual(l.StopProfit)
}

func (s *Strategy) expired(l *base.Lot, bar *data.Bar) bool {
	return s.cfg.MaxHoldingDuration > 0 && bar.Time.Sub(l.Opened) > s.cfg.MaxHoldingDuration
}

// closeMatching removes every lot matching and returns their summed
// quantity
func (s *Strategy) closeMatching(bar *data.Bar, match func(*base.Lot, *data.Bar) bool) decimal.Decimal {
	lots := s.holds[bar.Instrument]
	kept := lots[:0]
	closed := decimal.Zero
	for i := range lots {
		if match(&lots[i], bar) {
			closed = closed.Add(lots[i].Quantity)
			continue
		}
		kept = append(kept, lots[i])
	}
	s.holds[bar.Instrument] = kept
	return closed
}

// consume takes amount from the oldest lots first, shrinking the front lot
// when it is larger than what remains
func (s *Strategy) consume(instrument string, amount decimal.Decimal) {
	lots := s.holds[instrument]
	for amount.IsPositive() && len(lots) > 0 {
		if lots[0].Quantity.GreaterThan(amount) {
			lots[0].Quantity = lots[0].Quantity.Sub(amount)
			break
		}
		amount = amount.Sub(lots[0].Quantity)
		lots = lots[1:]
	}
	s.holds[instrument] = lots
}
