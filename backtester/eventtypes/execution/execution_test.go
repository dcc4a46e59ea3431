package execution

import (
	"testing"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t1 = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func buy(ts time.Time, qty int64) Execution {
	return Execution{
		Time:       ts,
		Instrument: "000001",
		Price:      decimal.NewFromFloat(4.5),
		Quantity:   decimal.NewFromInt(qty),
		Commission: decimal.NewFromInt(5),
		Tax:        decimal.NewFromFloat(0.45),
		Value:      decimal.NewFromInt(450),
		Total:      decimal.NewFromFloat(455.45),
		CashAfter:  decimal.NewFromFloat(544.55),
		Direction:  common.Buy,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	var e *Execution
	assert.ErrorIs(t, e.Validate(), common.ErrNilArguments)

	b := buy(t1, 0)
	assert.ErrorIs(t, b.Validate(), common.ErrZeroAmount)

	b = buy(t1, 100)
	b.Direction = common.Sell
	assert.ErrorIs(t, b.Validate(), ErrDirectionMismatch)

	b = buy(t1, 100)
	assert.NoError(t, b.Validate())
}

func TestCashBefore(t *testing.T) {
	t.Parallel()
	b := buy(t1, 100)
	assert.True(t, b.CashBefore().Equal(decimal.NewFromInt(1000)))

	s := Execution{
		Quantity:  decimal.NewFromInt(-100),
		Direction: common.Sell,
		Total:     decimal.NewFromFloat(784.21),
		CashAfter: decimal.NewFromFloat(1328.76),
	}
	assert.True(t, s.CashBefore().Equal(decimal.NewFromFloat(544.55)))

	b.Synthetic = true
	assert.True(t, b.CashBefore().Equal(b.CashAfter))
}

func TestAppend(t *testing.T) {
	t.Parallel()
	var nilHistory *History
	_, err := nilHistory.Append(buy(t1, 100))
	assert.ErrorIs(t, err, common.ErrNilArguments)

	h := &History{}
	e, err := h.Append(buy(t1, 100))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 1, h.Len())

	_, err = h.Append(buy(t1.Add(-time.Hour), 100))
	assert.ErrorIs(t, err, ErrOutOfOrder)

	other := buy(t1.AddDate(0, 0, 1), 200)
	other.Instrument = "600000"
	other.ID = "fixed"
	e, err = h.Append(other)
	require.NoError(t, err)
	assert.Equal(t, "fixed", e.ID)

	assert.Len(t, h.ForInstrument("000001"), 1)
	assert.Len(t, h.ForInstrument("600000"), 1)
	assert.Empty(t, h.ForInstrument("none"))

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "600000", last.Instrument)
}

func TestExecutionsIsACopy(t *testing.T) {
	t.Parallel()
	h := &History{}
	_, err := h.Append(buy(t1, 100))
	require.NoError(t, err)
	ex := h.Executions()
	ex[0].Instrument = "changed"
	assert.Equal(t, "000001", h.Executions()[0].Instrument)
}

func TestTotals(t *testing.T) {
	t.Parallel()
	h := &History{}
	assert.True(t, h.TotalCommission().IsZero())
	seed := buy(t1, 100)
	seed.Synthetic = true
	seed.Commission = decimal.Zero
	seed.Tax = decimal.Zero
	_, err := h.Append(seed)
	require.NoError(t, err)
	_, err = h.Append(buy(t1, 100))
	require.NoError(t, err)
	_, err = h.Append(buy(t1.AddDate(0, 0, 1), 100))
	require.NoError(t, err)
	assert.True(t, h.TotalCommission().Equal(decimal.NewFromInt(10)))
	assert.True(t, h.TotalTax().Equal(decimal.NewFromFloat(0.9)))
	assert.Equal(t, 2, h.Trades())
	assert.Equal(t, 3, h.Len())
}
