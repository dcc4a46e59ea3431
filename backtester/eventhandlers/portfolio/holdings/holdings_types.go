package holdings

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when an instrument held has no known price to mark
// it to market
var ErrNoPrice = errors.New("no price available for held instrument")

// PriceSource supplies the latest known price of an instrument
type PriceSource interface {
	LastPrice(instrument string) (decimal.Decimal, bool)
}

// Holding is the open position of one instrument
type Holding struct {
	Instrument string          `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
	// CostBasis is the quantity weighted average buy price since the
	// position was last flat
	CostBasis decimal.Decimal `json:"cost-basis"`
	// Opened is the time of the first buy since the position was last flat
	Opened time.Time `json:"opened"`
}

// View is a snapshot of every instrument with a non-zero holding
type View struct {
	holdings map[string]Holding
}

// Tracker derives holdings incrementally, one execution at a time, in the
// same way FromExecutions does over a full history
type Tracker struct {
	states map[string]*state
}

// state is the running position of one instrument. boughtQty and
// boughtValue only cover buys since the quantity last returned to zero
type state struct {
	quantity    decimal.Decimal
	boughtQty   decimal.Decimal
	boughtValue decimal.Decimal
	opened      time.Time
}
