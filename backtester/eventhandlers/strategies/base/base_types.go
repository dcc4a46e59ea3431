package base

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/shopspring/decimal"
)

var (
	// ErrStrategyNotFound used when a strategy name does not exist
	ErrStrategyNotFound = errors.New("strategy not found")
	// ErrInvalidLotSize used when a lot size is not positive
	ErrInvalidLotSize = errors.New("lot size must be greater than zero")
	// ErrInvalidCustomSettings used when bad strategy settings are supplied
	ErrInvalidCustomSettings = errors.New("invalid custom settings")
)

// Coster prices a buy including fees
type Coster interface {
	BuyCost(instrument string, price, amount decimal.Decimal) (exchange.Fees, error)
}

// Position is the engine's view of an instrument holding at the time of a
// decision
type Position struct {
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
}

// DateSet holds signal dates per instrument
type DateSet map[string]map[int64]struct{}

// LotSizes is a default lot size with per instrument overrides
type LotSizes struct {
	Default       decimal.Decimal
	PerInstrument map[string]decimal.Decimal
}

// Lot is an open position record awaiting closure
type Lot struct {
	Instrument  string
	Opened      time.Time
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	StopLoss    decimal.Decimal
	StopProfit  decimal.Decimal
	NextPyramid decimal.Decimal
}

// Strategy is the base every built-in strategy embeds. It carries the
// signal dates, lot sizes and the fee model used to gate buys by cash
type Strategy struct {
	fees      Coster
	buyDates  DateSet
	sellDates DateSet
	lots      LotSizes
}
