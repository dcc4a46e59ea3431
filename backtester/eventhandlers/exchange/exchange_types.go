package exchange

import (
	"errors"

	"github.com/shopspring/decimal"
)

// InstrumentClass selects the fee model applied to an instrument
type InstrumentClass string

const (
	// StockCN is a mainland China listed equity
	StockCN InstrumentClass = "stock_cn"
	// IndexCN is a mainland China index, which has no fee model
	IndexCN InstrumentClass = "index_cn"
)

var (
	// ErrUnsupportedInstrumentClass is returned when fees are requested for a
	// class without a fee model
	ErrUnsupportedInstrumentClass = errors.New("unsupported instrument class")
	// ErrNegativeRate is returned when a fee parameter is negative
	ErrNegativeRate = errors.New("fee parameter cannot be negative")

	defaultTaxRate        = decimal.NewFromFloat(0.001)
	defaultCommissionRate = decimal.NewFromFloat(0.001)
	defaultMinCommission  = decimal.NewFromInt(5)
)

// Exchange holds the fee parameters used to cost executions
type Exchange struct {
	TaxRate        decimal.Decimal
	CommissionRate decimal.Decimal
	MinCommission  decimal.Decimal
	DefaultClass   InstrumentClass
	// Classes overrides DefaultClass per instrument
	Classes map[string]InstrumentClass
}

// Fees is the costing of a single execution
type Fees struct {
	// Value is price * |amount|
	Value      decimal.Decimal
	Commission decimal.Decimal
	Tax        decimal.Decimal
	// Total is the cash debited for a buy or credited for a sell
	Total decimal.Decimal
}
