package config

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/engine"
	"github.com/GuQiangJS/finance-tools-py/database"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/shopspring/decimal"
)

const envPrefix = "LEDGER"

var (
	// ErrInvalidConfig is returned when a run config fails validation
	ErrInvalidConfig = errors.New("invalid config")

	errUnparsableDate    = errors.New("unparsable date")
	errUnparsableDecimal = errors.New("unparsable decimal")
)

// RunConfig is everything needed to replay a price file through a ledger
type RunConfig struct {
	Data       DataSettings          `json:"data" mapstructure:"data"`
	Funding    FundingSettings       `json:"funding" mapstructure:"funding"`
	Fees       FeeSettings           `json:"fees" mapstructure:"fees"`
	Run        RunSettings           `json:"run" mapstructure:"run"`
	Strategies []StrategySettings    `json:"strategies" mapstructure:"strategies"`
	Database   database.Config       `json:"database" mapstructure:"database"`
	Logging    []log.SubLoggerConfig `json:"logging" mapstructure:"logging"`
}

// DataSettings locates and decodes the price file
type DataSettings struct {
	// Path is resolved against the config file's directory when relative
	Path       string `json:"path" mapstructure:"path"`
	Encoding   string `json:"encoding" mapstructure:"encoding"`
	Instrument string `json:"instrument" mapstructure:"instrument"`
	Timezone   string `json:"timezone" mapstructure:"timezone"`
	PriceField string `json:"price-field" mapstructure:"price-field"`
	// ATRPeriod annotates the tape with an average true range column when
	// positive
	ATRPeriod int    `json:"atr-period" mapstructure:"atr-period"`
	ATRField  string `json:"atr-field" mapstructure:"atr-field"`
}

// FundingSettings holds the starting cash and positions
type FundingSettings struct {
	InitialCash     decimal.Decimal         `json:"initial-cash" mapstructure:"initial-cash"`
	InitialHoldings []engine.InitialHolding `json:"initial-holdings" mapstructure:"initial-holdings"`
}

// FeeSettings holds the fee model parameters
type FeeSettings struct {
	TaxRate           decimal.Decimal           `json:"tax-rate" mapstructure:"tax-rate"`
	CommissionRate    decimal.Decimal           `json:"commission-rate" mapstructure:"commission-rate"`
	MinCommission     decimal.Decimal           `json:"min-commission" mapstructure:"min-commission"`
	InstrumentClass   string                    `json:"instrument-class" mapstructure:"instrument-class"`
	InstrumentClasses []InstrumentClassSettings `json:"instrument-classes" mapstructure:"instrument-classes"`
}

// InstrumentClassSettings overrides the fee class of one instrument
type InstrumentClassSettings struct {
	Instrument string `json:"instrument" mapstructure:"instrument"`
	Class      string `json:"class" mapstructure:"class"`
}

// RunSettings controls the replay and the report
type RunSettings struct {
	LiveStart        time.Time `json:"live-start" mapstructure:"live-start"`
	Verbose          bool      `json:"verbose" mapstructure:"verbose"`
	AllowSameDayBuy  bool      `json:"allow-same-day-buy" mapstructure:"allow-same-day-buy"`
	AllowSameDaySell bool      `json:"allow-same-day-sell" mapstructure:"allow-same-day-sell"`
	ShowHistory      bool      `json:"show-history" mapstructure:"show-history"`
	ShowHold         bool      `json:"show-hold" mapstructure:"show-hold"`
}

// StrategySettings configures one strategy of the chain
type StrategySettings struct {
	Name    string             `json:"name" mapstructure:"name"`
	Lot     decimal.Decimal    `json:"lot" mapstructure:"lot"`
	Lots    []InstrumentAmount `json:"lots" mapstructure:"lots"`
	Signals []SignalSettings   `json:"signals" mapstructure:"signals"`
	Turtle  TurtleSettings     `json:"turtle" mapstructure:"turtle"`
}

// InstrumentAmount is a per instrument quantity override
type InstrumentAmount struct {
	Instrument string          `json:"instrument" mapstructure:"instrument"`
	Amount     decimal.Decimal `json:"amount" mapstructure:"amount"`
}

// SignalSettings lists the buy and sell dates of one instrument
type SignalSettings struct {
	Instrument string      `json:"instrument" mapstructure:"instrument"`
	Buy        []time.Time `json:"buy" mapstructure:"buy"`
	Sell       []time.Time `json:"sell" mapstructure:"sell"`
}

// TurtleSettings overrides the turtle defaults, unset fields keep them
type TurtleSettings struct {
	IndicatorField     string             `json:"indicator-field" mapstructure:"indicator-field"`
	StopLossMultiple   *decimal.Decimal   `json:"stop-loss-multiple" mapstructure:"stop-loss-multiple"`
	StopProfitMultiple *decimal.Decimal   `json:"stop-profit-multiple" mapstructure:"stop-profit-multiple"`
	PyramidMultiple    *decimal.Decimal   `json:"pyramid-multiple" mapstructure:"pyramid-multiple"`
	MaxPosition        *decimal.Decimal   `json:"max-position" mapstructure:"max-position"`
	MaxPositions       []InstrumentAmount `json:"max-positions" mapstructure:"max-positions"`
	MaxHoldingDuration time.Duration      `json:"max-holding-duration" mapstructure:"max-holding-duration"`
	UpdateOnSameDay    *bool              `json:"update-on-same-day" mapstructure:"update-on-same-day"`
}
