package exchange

import (
	"fmt"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/shopspring/decimal"
)

// Default returns the CN equity fee model: 0.1% stamp tax, 0.1% commission
// with a minimum of 5 per execution
func Default() Exchange {
	return Exchange{
		TaxRate:        defaultTaxRate,
		CommissionRate: defaultCommissionRate,
		MinCommission:  defaultMinCommission,
		DefaultClass:   StockCN,
	}
}

// Validate checks the fee parameters
func (e *Exchange) Validate() error {
	if e.TaxRate.IsNegative() {
		return fmt.Errorf("tax rate %v %w", e.TaxRate, ErrNegativeRate)
	}
	if e.CommissionRate.IsNegative() {
		return fmt.Errorf("commission rate %v %w", e.CommissionRate, ErrNegativeRate)
	}
	if e.MinCommission.IsNegative() {
		return fmt.Errorf("minimum commission %v %w", e.MinCommission, ErrNegativeRate)
	}
	return nil
}

// ClassOf returns the instrument class for an instrument
func (e *Exchange) ClassOf(instrument string) InstrumentClass {
	if c, ok := e.Classes[instrument]; ok {
		return c
	}
	if e.DefaultClass == "" {
		return StockCN
	}
	return e.DefaultClass
}

// Commission returns max(price*|amount|*rate, minimum)
func (e *Exchange) Commission(instrument string, price, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := e.supported(instrument); err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(price.Mul(amount.Abs()).Mul(e.CommissionRate), e.MinCommission), nil
}

// Tax returns price*|amount|*rate
func (e *Exchange) Tax(instrument string, price, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := e.supported(instrument); err != nil {
		return decimal.Zero, err
	}
	return price.Mul(amount.Abs()).Mul(e.TaxRate), nil
}

// BuyCost returns the costing of buying amount at price, Total being
// price*amount + commission + tax
func (e *Exchange) BuyCost(instrument string, price, amount decimal.Decimal) (Fees, error) {
	f, err := e.fees(instrument, price, amount)
	if err != nil {
		return Fees{}, err
	}
	f.Total = common.DecimalSum(f.Value, f.Commission, f.Tax)
	return f, nil
}

// SellProceeds returns the costing of selling amount at price, Total being
// price*amount - commission - tax
func (e *Exchange) SellProceeds(instrument string, price, amount decimal.Decimal) (Fees, error) {
	f, err := e.fees(instrument, price, amount)
	if err != nil {
		return Fees{}, err
	}
	f.Total = f.Value.Sub(common.DecimalSum(f.Commission, f.Tax))
	return f, nil
}

func (e *Exchange) fees(instrument string, price, amount decimal.Decimal) (Fees, error) {
	commission, err := e.Commission(instrument, price, amount)
	if err != nil {
		return Fees{}, err
	}
	tax, err := e.Tax(instrument, price, amount)
	if err != nil {
		return Fees{}, err
	}
	return Fees{
		Value:      price.Mul(amount.Abs()),
		Commission: commission,
		Tax:        tax,
	}, nil
}

func (e *Exchange) supported(instrument string) error {
	switch c := e.ClassOf(instrument); c {
	case StockCN:
		return nil
	default:
		return fmt.Errorf("%s %w: %s", instrument, ErrUnsupportedInstrumentClass, c)
	}
}
