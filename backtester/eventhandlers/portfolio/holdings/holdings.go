package holdings

import (
	"fmt"
	"sort"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/shopspring/decimal"
)

// NewTracker returns an empty tracker
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*state)}
}

// FromExecutions derives the holdings of a full execution history. Only the
// executions after the last point each instrument's running quantity
// returned to zero contribute to its cost basis
func FromExecutions(executions []execution.Execution) (View, error) {
	t := NewTracker()
	for i := range executions {
		if err := t.Apply(&executions[i]); err != nil {
			return View{}, err
		}
	}
	return t.View(), nil
}

// Apply adds an execution to the running positions. A sell that takes an
// instrument's quantity below zero is a ledger inconsistency
func (t *Tracker) Apply(e *execution.Execution) error {
	if t == nil || e == nil {
		return common.ErrNilArguments
	}
	s, ok := t.states[e.Instrument]
	if !ok {
		s = &state{}
		t.states[e.Instrument] = s
	}
	next := s.quantity.Add(e.Quantity)
	if next.IsNegative() {
		return fmt.Errorf("%v %v sells %v while holding %v: %w",
			e.Instrument, common.FormatTime(e.Time), e.Quantity.Abs(), s.quantity, common.ErrLedgerInconsistency)
	}
	if next.IsZero() {
		*s = state{}
		return nil
	}
	if e.Quantity.IsPositive() {
		if s.boughtQty.IsZero() {
			s.opened = e.Time
		}
		s.boughtQty = s.boughtQty.Add(e.Quantity)
		s.boughtValue = s.boughtValue.Add(e.Price.Mul(e.Quantity))
	}
	s.quantity = next
	return nil
}

// Position returns the held quantity and cost basis of an instrument
func (t *Tracker) Position(instrument string) base.Position {
	if t == nil {
		return base.Position{}
	}
	s, ok := t.states[instrument]
	if !ok || !s.quantity.IsPositive() {
		return base.Position{}
	}
	return base.Position{Quantity: s.quantity, AveragePrice: s.costBasis()}
}

// View returns a snapshot of the current holdings
func (t *Tracker) View() View {
	v := View{holdings: make(map[string]Holding)}
	if t == nil {
		return v
	}
	for k, s := range t.states {
		if !s.quantity.IsPositive() {
			continue
		}
		v.holdings[k] = Holding{
			Instrument: k,
			Quantity:   s.quantity,
			CostBasis:  s.costBasis(),
			Opened:     s.opened,
		}
	}
	return v
}

func (s *state) costBasis() decimal.Decimal {
	if s.boughtQty.IsZero() {
		return decimal.Zero
	}
	return s.boughtValue.Div(s.boughtQty)
}

// Quantity returns the held quantity, zero when the instrument is flat
func (v View) Quantity(instrument string) decimal.Decimal {
	return v.holdings[instrument].Quantity
}

// CostBasis returns the weighted average buy price of the open position.
// Flat instruments have no entry
func (v View) CostBasis(instrument string) (decimal.Decimal, bool) {
	h, ok := v.holdings[instrument]
	return h.CostBasis, ok
}

// Get returns the holding of an instrument
func (v View) Get(instrument string) (Holding, bool) {
	h, ok := v.holdings[instrument]
	return h, ok
}

// Len returns the number of held instruments
func (v View) Len() int {
	return len(v.holdings)
}

// Instruments returns every held instrument in ascending order
func (v View) Instruments() []string {
	resp := make([]string, 0, len(v.holdings))
	for k := range v.holdings {
		resp = append(resp, k)
	}
	sort.Strings(resp)
	return resp
}

// Holdings returns every holding ordered by instrument
func (v View) Holdings() []Holding {
	instruments := v.Instruments()
	resp := make([]Holding, len(instruments))
	for i := range instruments {
		resp[i] = v.holdings[instruments[i]]
	}
	return resp
}

// Available returns instrument to held quantity for non-zero holdings
func (v View) Available() map[string]decimal.Decimal {
	resp := make(map[string]decimal.Decimal, len(v.holdings))
	for k, h := range v.holdings {
		resp[k] = h.Quantity
	}
	return resp
}

// MarketValue returns the sum of every holding marked at its latest price
func (v View) MarketValue(prices PriceSource) (decimal.Decimal, error) {
	if prices == nil {
		return decimal.Zero, common.ErrNilArguments
	}
	total := decimal.Zero
	for _, k := range v.Instruments() {
		p, ok := prices.LastPrice(k)
		if !ok {
			return decimal.Zero, fmt.Errorf("%v %w", k, ErrNoPrice)
		}
		total = total.Add(v.holdings[k].Quantity.Mul(p))
	}
	return total, nil
}

// TotalAssets returns cash plus the market value of every holding
func (v View) TotalAssets(cash decimal.Decimal, prices PriceSource) (decimal.Decimal, error) {
	mv, err := v.MarketValue(prices)
	if err != nil {
		return decimal.Zero, err
	}
	return cash.Add(mv), nil
}

// HoldTime returns, per held instrument, how long the open position has
// been held as of now
func (v View) HoldTime(now time.Time) map[string]time.Duration {
	resp := make(map[string]time.Duration, len(v.holdings))
	for k, h := range v.holdings {
		resp[k] = now.Sub(h.Opened)
	}
	return resp
}
