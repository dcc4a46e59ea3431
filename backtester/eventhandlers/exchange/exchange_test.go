package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hundred = decimal.NewFromInt(100)
	code    = "000001"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	e := Default()
	assert.NoError(t, e.Validate())
	assert.True(t, e.TaxRate.Equal(decimal.NewFromFloat(0.001)))
	assert.True(t, e.CommissionRate.Equal(decimal.NewFromFloat(0.001)))
	assert.True(t, e.MinCommission.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, StockCN, e.ClassOf(code))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	e := Default()
	e.TaxRate = decimal.NewFromInt(-1)
	assert.ErrorIs(t, e.Validate(), ErrNegativeRate)
	e = Default()
	e.CommissionRate = decimal.NewFromInt(-1)
	assert.ErrorIs(t, e.Validate(), ErrNegativeRate)
	e = Default()
	e.MinCommission = decimal.NewFromInt(-1)
	assert.ErrorIs(t, e.Validate(), ErrNegativeRate)
}

func TestCommission(t *testing.T) {
	t.Parallel()
	e := Default()
	c, err := e.Commission(code, decimal.NewFromFloat(4.5), hundred)
	require.NoError(t, err)
	assert.True(t, c.Equal(decimal.NewFromInt(5)), "minimum commission applies")

	c, err = e.Commission(code, decimal.NewFromFloat(100), decimal.NewFromInt(-1000))
	require.NoError(t, err)
	assert.True(t, c.Equal(decimal.NewFromInt(100)), c.String())
}

func TestBuyCostAndSellProceeds(t *testing.T) {
	t.Parallel()
	e := Default()
	buy, err := e.BuyCost(code, decimal.NewFromFloat(7.9), hundred)
	require.NoError(t, err)
	assert.True(t, buy.Value.Equal(decimal.NewFromInt(790)))
	assert.True(t, buy.Commission.Equal(decimal.NewFromInt(5)))
	assert.True(t, buy.Tax.Equal(decimal.NewFromFloat(0.79)))
	assert.True(t, buy.Total.Equal(decimal.NewFromFloat(795.79)), buy.Total.String())

	sell, err := e.SellProceeds(code, decimal.NewFromFloat(6.7), hundred)
	require.NoError(t, err)
	assert.True(t, sell.Total.Equal(decimal.NewFromFloat(664.33)), sell.Total.String())
}

func TestUnsupportedInstrumentClass(t *testing.T) {
	t.Parallel()
	e := Default()
	e.Classes = map[string]InstrumentClass{"000300": IndexCN}
	_, err := e.BuyCost("000300", decimal.NewFromInt(1), hundred)
	assert.ErrorIs(t, err, ErrUnsupportedInstrumentClass)
	_, err = e.Tax("000300", decimal.NewFromInt(1), hundred)
	assert.ErrorIs(t, err, ErrUnsupportedInstrumentClass)

	var empty Exchange
	assert.Equal(t, StockCN, empty.ClassOf(code))
}
