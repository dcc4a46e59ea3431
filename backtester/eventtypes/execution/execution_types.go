package execution

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/shopspring/decimal"
)

var (
	// ErrDirectionMismatch is returned when an execution's direction does not
	// agree with the sign of its quantity
	ErrDirectionMismatch = errors.New("direction does not match quantity sign")
	// ErrOutOfOrder is returned when appending an execution dated before the
	// last one in the history
	ErrOutOfOrder = errors.New("execution is dated before the previous execution")
)

// Execution is one completed trade. Quantity is signed, positive for buys
// and negative for sells
type Execution struct {
	ID         string           `json:"id"`
	Time       time.Time        `json:"time"`
	Instrument string           `json:"instrument"`
	Price      decimal.Decimal  `json:"price"`
	Quantity   decimal.Decimal  `json:"quantity"`
	CashAfter  decimal.Decimal  `json:"cash-after"`
	Commission decimal.Decimal  `json:"commission"`
	Tax        decimal.Decimal  `json:"tax"`
	Value      decimal.Decimal  `json:"value"`
	Total      decimal.Decimal  `json:"total"`
	Direction  common.Direction `json:"direction"`
	// Synthetic marks executions injected for initial holdings
	Synthetic bool `json:"synthetic"`
}

// History is the append-only arena of executions in scan order
type History struct {
	executions []Execution
}
