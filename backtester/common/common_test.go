package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransact(t *testing.T) {
	t.Parallel()
	for _, ti := range []struct {
		side     Direction
		expected bool
	}{
		{side: Buy, expected: true},
		{side: Sell, expected: true},
		{side: CouldNotBuy, expected: false},
		{side: CouldNotSell, expected: false},
		{side: "", expected: false},
	} {
		assert.Equalf(t, ti.expected, ti.side.CanTransact(), "side %q", ti.side)
	}
}

func TestDirectionFromQuantity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Buy, DirectionFromQuantity(decimal.NewFromInt(100)))
	assert.Equal(t, Sell, DirectionFromQuantity(decimal.NewFromInt(-100)))
	assert.True(t, Buy.IsOpening())
	assert.False(t, Sell.IsOpening())
}

func TestFormatTime(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1998-01-01", FormatTime(time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1998-01-01 09:30:00", FormatTime(time.Date(1998, 1, 1, 9, 30, 0, 0, time.UTC)))
}

func TestDecimalSum(t *testing.T) {
	t.Parallel()
	got := DecimalSum(decimal.NewFromFloat(0.45), decimal.NewFromFloat(0.79), decimal.NewFromFloat(0.67))
	assert.True(t, got.Equal(decimal.NewFromFloat(1.91)), got.String())
	assert.True(t, DecimalSum().IsZero())
}

func TestTimeKey(t *testing.T) {
	t.Parallel()
	utc := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("CST", 8*3600))
	assert.Equal(t, TimeKey(utc), TimeKey(local))
}
