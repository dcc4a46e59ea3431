package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// IsOpening reports whether the direction adds to a position
func (d Direction) IsOpening() bool {
	return d == Buy
}

// CanTransact reports whether the direction results in an execution
func (d Direction) CanTransact() bool {
	return d == Buy || d == Sell
}

// String implements fmt.Stringer
func (d Direction) String() string {
	return string(d)
}

// DirectionFromQuantity returns Buy for positive and Sell for negative
// quantities
func DirectionFromQuantity(q decimal.Decimal) Direction {
	if q.IsNegative() {
		return Sell
	}
	return Buy
}

// FormatTime renders dates without a clock component and intraday
// timestamps with one
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(SimpleTimeFormat)
	}
	return t.Format(DateTimeFormat)
}

// DecimalSum adds up every value
func DecimalSum(values ...decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for i := range values {
		sum = sum.Add(values[i])
	}
	return sum
}

// TimeKey returns a comparable key for a timestamp that ignores location
func TimeKey(t time.Time) int64 {
	return t.UnixNano()
}
