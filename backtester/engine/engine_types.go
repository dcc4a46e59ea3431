package engine

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/portfolio/holdings"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/GuQiangJS/finance-tools-py/backtester/funding"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotCalculated is returned when results are requested before
	// CalcTradeHistory has completed
	ErrNotCalculated = errors.New("trade history has not been calculated, call CalcTradeHistory first")
	// ErrAlreadyCalculated is returned when CalcTradeHistory is called more
	// than once on the same engine
	ErrAlreadyCalculated = errors.New("trade history has already been calculated")
	// ErrNoStrategies is returned when an engine is built without strategies
	ErrNoStrategies = errors.New("no strategies configured")
	// ErrInvalidInitialCash is returned when initial cash is not positive
	ErrInvalidInitialCash = funding.ErrInvalidInitialCash
	// ErrInvalidInitialHolding is returned for malformed initial holdings
	ErrInvalidInitialHolding = errors.New("invalid initial holding")
	// ErrPriceFieldMismatch is returned when the tape was priced from a
	// different column than configured
	ErrPriceFieldMismatch = errors.New("price field does not match the tape")
)

// InitialHolding is a position held before the first bar. Zero risk levels
// are treated as disabled
type InitialHolding struct {
	Instrument  string          `json:"instrument" mapstructure:"instrument"`
	Quantity    decimal.Decimal `json:"quantity" mapstructure:"quantity"`
	Price       decimal.Decimal `json:"price" mapstructure:"price"`
	StopLoss    decimal.Decimal `json:"stop-loss" mapstructure:"stop-loss"`
	StopProfit  decimal.Decimal `json:"stop-profit" mapstructure:"stop-profit"`
	NextPyramid decimal.Decimal `json:"next-pyramid" mapstructure:"next-pyramid"`
}

// Config holds everything needed to build an engine
type Config struct {
	InitialCash     decimal.Decimal
	InitialHoldings []InitialHolding
	TaxRate         decimal.Decimal
	CommissionRate  decimal.Decimal
	MinCommission   decimal.Decimal
	// PriceField is the tape column executions are priced from
	PriceField string
	// LiveStart is the first timestamp executions may happen at. Earlier
	// bars only warm up indicators. Zero means the first bar
	LiveStart         time.Time
	InstrumentClass   exchange.InstrumentClass
	InstrumentClasses map[string]exchange.InstrumentClass
	Strategies        []strategies.Handler
}

// CalcOptions controls a CalcTradeHistory run
type CalcOptions struct {
	Verbose bool
	// AllowSameDayBuy keeps the buy when buy and sell signals fall on the
	// same bar
	AllowSameDayBuy bool
	// AllowSameDaySell keeps the sell when buy and sell signals fall on the
	// same bar
	AllowSameDaySell bool
}

// Engine replays a price tape through its strategies once, keeping the cash
// timeline and the execution history. It is not safe for concurrent use
type Engine struct {
	tape       *data.Tape
	exchange   exchange.Exchange
	chain      strategies.Chain
	cash       *funding.CashTimeline
	history    execution.History
	tracker    *holdings.Tracker
	liveStart  time.Time
	started    bool
	calculated bool
}
