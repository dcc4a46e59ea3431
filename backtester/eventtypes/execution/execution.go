package execution

import (
	"fmt"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// NewID returns a fresh execution identifier
func NewID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Validate checks the execution is internally consistent
func (e *Execution) Validate() error {
	if e == nil {
		return common.ErrNilArguments
	}
	if e.Quantity.IsZero() {
		return fmt.Errorf("%v %v %w", e.Instrument, e.Time, common.ErrZeroAmount)
	}
	if !e.Direction.CanTransact() || common.DirectionFromQuantity(e.Quantity) != e.Direction {
		return fmt.Errorf("%v %v %v %v: %w", e.Instrument, e.Time, e.Direction, e.Quantity, ErrDirectionMismatch)
	}
	return nil
}

// CashBefore returns the cash balance immediately before the execution
func (e *Execution) CashBefore() decimal.Decimal {
	if e.Synthetic {
		return e.CashAfter
	}
	if e.Direction.IsOpening() {
		return e.CashAfter.Add(e.Total)
	}
	return e.CashAfter.Sub(e.Total)
}

// Append adds an execution to the end of the history, assigning an ID when
// one is not set
func (h *History) Append(e Execution) (Execution, error) {
	if h == nil {
		return Execution{}, common.ErrNilArguments
	}
	if err := e.Validate(); err != nil {
		return Execution{}, err
	}
	if n := len(h.executions); n > 0 && e.Time.Before(h.executions[n-1].Time) {
		return Execution{}, fmt.Errorf("%v %v: %w", e.Instrument, e.Time, ErrOutOfOrder)
	}
	if e.ID == "" {
		id, err := NewID()
		if err != nil {
			return Execution{}, err
		}
		e.ID = id
	}
	h.executions = append(h.executions, e)
	return e, nil
}

// Executions returns a copy of every execution in append order
func (h *History) Executions() []Execution {
	if h == nil {
		return nil
	}
	resp := make([]Execution, len(h.executions))
	copy(resp, h.executions)
	return resp
}

// ForInstrument returns the executions of one instrument in append order
func (h *History) ForInstrument(instrument string) []Execution {
	if h == nil {
		return nil
	}
	var resp []Execution
	for i := range h.executions {
		if h.executions[i].Instrument == instrument {
			resp = append(resp, h.executions[i])
		}
	}
	return resp
}

// Len returns the number of executions
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.executions)
}

// Last returns the most recent execution
func (h *History) Last() (Execution, bool) {
	if h == nil || len(h.executions) == 0 {
		return Execution{}, false
	}
	return h.executions[len(h.executions)-1], true
}

// TotalCommission sums commission over every execution
func (h *History) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	if h == nil {
		return total
	}
	for i := range h.executions {
		total = total.Add(h.executions[i].Commission)
	}
	return total
}

// TotalTax sums tax over every execution
func (h *History) TotalTax() decimal.Decimal {
	total := decimal.Zero
	if h == nil {
		return total
	}
	for i := range h.executions {
		total = total.Add(h.executions[i].Tax)
	}
	return total
}

// Trades returns the number of non synthetic executions
func (h *History) Trades() int {
	if h == nil {
		return 0
	}
	var n int
	for i := range h.executions {
		if !h.executions[i].Synthetic {
			n++
		}
	}
	return n
}
