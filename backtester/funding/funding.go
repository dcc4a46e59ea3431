package funding

import (
	"fmt"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/shopspring/decimal"
)

// NewCashTimeline creates a timeline opening with initial
func NewCashTimeline(initial decimal.Decimal) (*CashTimeline, error) {
	if !initial.IsPositive() {
		return nil, fmt.Errorf("%v %w", initial, ErrInvalidInitialCash)
	}
	return &CashTimeline{balances: []decimal.Decimal{initial}}, nil
}

// Initial returns the opening balance
func (c *CashTimeline) Initial() decimal.Decimal {
	if c == nil || len(c.balances) == 0 {
		return decimal.Zero
	}
	return c.balances[0]
}

// Available returns the current balance
func (c *CashTimeline) Available() decimal.Decimal {
	if c == nil || len(c.balances) == 0 {
		return decimal.Zero
	}
	return c.balances[len(c.balances)-1]
}

// CanAfford reports whether amount can be debited
func (c *CashTimeline) CanAfford(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(c.Available())
}

// Debit removes amount from the available balance and returns the new
// balance
func (c *CashTimeline) Debit(amount decimal.Decimal) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Zero, common.ErrNilArguments
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("debit %v %w", amount, ErrNegativeAmount)
	}
	if !c.CanAfford(amount) {
		return decimal.Zero, fmt.Errorf("debit %v from %v: %w", amount, c.Available(), ErrNotEnoughFunds)
	}
	next := c.Available().Sub(amount)
	c.balances = append(c.balances, next)
	return next, nil
}

// Credit adds amount to the available balance and returns the new balance
func (c *CashTimeline) Credit(amount decimal.Decimal) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Zero, common.ErrNilArguments
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("credit %v %w", amount, ErrNegativeAmount)
	}
	next := c.Available().Add(amount)
	c.balances = append(c.balances, next)
	return next, nil
}

// Balances returns a copy of every balance in order
func (c *CashTimeline) Balances() []decimal.Decimal {
	if c == nil {
		return nil
	}
	resp := make([]decimal.Decimal, len(c.balances))
	copy(resp, c.balances)
	return resp
}
