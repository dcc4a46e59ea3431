package funding

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotEnoughFunds is returned when a debit would take cash below zero
	ErrNotEnoughFunds = errors.New("not enough funds")
	// ErrInvalidInitialCash is returned when the opening balance is not
	// positive
	ErrInvalidInitialCash = errors.New("initial cash must be greater than zero")
	// ErrNegativeAmount is returned when a negative amount is debited or
	// credited
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// CashTimeline is the ordered sequence of cash balances of a ledger. The
// first entry is the initial cash and the last the currently available cash
type CashTimeline struct {
	balances []decimal.Decimal
}
