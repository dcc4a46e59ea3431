package strategies

import (
	"errors"
	"testing"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/allin"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/fixedlot"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/turtle"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test")

// fake records calls and returns canned answers
type fake struct {
	base.Strategy
	name     string
	buy      bool
	sell     bool
	buyAmt   decimal.Decimal
	sellAmt  decimal.Decimal
	err      error
	calls    int
	sameDays int
}

func (f *fake) Name() string        { return f.name }
func (f *fake) Description() string { return f.name }

func (f *fake) CheckBuy(*data.Bar, decimal.Decimal) (bool, error) {
	f.calls++
	return f.buy, f.err
}

func (f *fake) CheckSell(*data.Bar, decimal.Decimal, base.Position) (bool, error) {
	f.calls++
	return f.sell, f.err
}

func (f *fake) CalcBuyAmount(*data.Bar, decimal.Decimal) (decimal.Decimal, error) {
	f.calls++
	return f.buyAmt, f.err
}

func (f *fake) CalcSellAmount(*data.Bar, decimal.Decimal, base.Position) (decimal.Decimal, error) {
	f.calls++
	return f.sellAmt, f.err
}

func (f *fake) OnSameDayConflict(*data.Bar) error {
	f.sameDays++
	return f.err
}

var b = &data.Bar{Time: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), Instrument: "000001", Price: decimal.NewFromInt(1)}

func TestGetStrategies(t *testing.T) {
	t.Parallel()
	assert.Len(t, GetStrategies(), 3)
}

func TestLoadStrategyByName(t *testing.T) {
	t.Parallel()
	_, err := LoadStrategyByName("test")
	assert.ErrorIs(t, err, base.ErrStrategyNotFound)

	for _, name := range []string{fixedlot.Name, allin.Name, turtle.Name, "TURTLE"} {
		h, err := LoadStrategyByName(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, h.Description())
	}
	h, err := LoadStrategyByName(turtle.Name)
	require.NoError(t, err)
	_, ok := h.(LotSeeder)
	assert.True(t, ok)
}

func TestChainChecksShortCircuit(t *testing.T) {
	t.Parallel()
	first := &fake{name: "first", buy: true}
	second := &fake{name: "second", buy: true, sell: true}
	c := Chain{first, second}

	ok, err := c.CheckBuy(b, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, second.calls)

	ok, err = c.CheckSell(b, decimal.Zero, base.Position{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, second.calls)

	ok, err = Chain{&fake{name: "none"}}.CheckSell(b, decimal.Zero, base.Position{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChainAmountsFirstNonZero(t *testing.T) {
	t.Parallel()
	c := Chain{
		&fake{name: "zero"},
		&fake{name: "two", buyAmt: decimal.NewFromInt(200), sellAmt: decimal.NewFromInt(20)},
		&fake{name: "three", buyAmt: decimal.NewFromInt(300), sellAmt: decimal.NewFromInt(30)},
	}
	amount, err := c.CalcBuyAmount(b, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(200)))

	amount, err = c.CalcSellAmount(b, decimal.Zero, base.Position{})
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(20)))

	amount, err = Chain{}.CalcBuyAmount(b, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestChainSameDayNotifiesAll(t *testing.T) {
	t.Parallel()
	first, second := &fake{name: "first"}, &fake{name: "second"}
	require.NoError(t, Chain{first, second}.OnSameDayConflict(b))
	assert.Equal(t, 1, first.sameDays)
	assert.Equal(t, 1, second.sameDays)
}

func TestChainErrors(t *testing.T) {
	t.Parallel()
	c := Chain{&fake{name: "broken", err: errTest}}
	_, err := c.CheckBuy(b, decimal.Zero)
	assert.ErrorIs(t, err, errTest)
	_, err = c.CheckSell(b, decimal.Zero, base.Position{})
	assert.ErrorIs(t, err, errTest)
	_, err = c.CalcBuyAmount(b, decimal.Zero)
	assert.ErrorIs(t, err, errTest)
	_, err = c.CalcSellAmount(b, decimal.Zero, base.Position{})
	assert.ErrorIs(t, err, errTest)
	assert.ErrorIs(t, c.OnSameDayConflict(b), errTest)
}

func TestChainSeedLot(t *testing.T) {
	t.Parallel()
	tt := turtle.New(turtle.DefaultConfig())
	c := Chain{fixedlot.New(), tt}
	require.NoError(t, c.SeedLot(base.Lot{Instrument: "000001", Quantity: decimal.NewFromInt(100)}))
	assert.Len(t, tt.Holds("000001"), 1)
	assert.ErrorIs(t, c.SeedLot(base.Lot{Instrument: "000001"}), turtle.ErrInvalidLot)
}

func TestChainSyncPosition(t *testing.T) {
	t.Parallel()
	tt := turtle.New(turtle.DefaultConfig())
	c := Chain{fixedlot.New(), tt}
	require.NoError(t, c.SeedLot(base.Lot{Instrument: "000001", Quantity: decimal.NewFromInt(100)}))
	c.SyncPosition("000001", base.Position{Quantity: decimal.NewFromInt(100)})
	assert.Len(t, tt.Holds("000001"), 1)
	c.SyncPosition("000001", base.Position{})
	assert.Empty(t, tt.Holds("000001"))
}
