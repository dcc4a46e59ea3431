package turtle

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/fixedlot"
	"github.com/shopspring/decimal"
)

const (
	// Name is the strategy name
	Name        = "turtle"
	description = `Trades fixed lots on signal dates and manages every open lot with stop-loss, stop-profit and pyramiding levels derived from an indicator column such as ATR. Additional lots are only added once price reaches the previous lot's pyramid level and total size is below the instrument's maximum position.`

	defaultATRPeriod = 20
)

var (
	// ErrInvalidLot is returned when seeding a lot without a positive
	// quantity
	ErrInvalidLot = errors.New("lot quantity must be greater than zero")
	// ErrNegativeDuration is returned when a maximum holding duration is
	// negative
	ErrNegativeDuration = errors.New("maximum holding duration cannot be negative")
)

// Config holds the risk parameters. A multiple of zero or less disables the
// level it prices
type Config struct {
	IndicatorField     string          `json:"indicator-field" mapstructure:"indicator-field"`
	StopLossMultiple   decimal.Decimal `json:"stop-loss-multiple" mapstructure:"stop-loss-multiple"`
	StopProfitMultiple decimal.Decimal `json:"stop-profit-multiple" mapstructure:"stop-profit-multiple"`
	PyramidMultiple    decimal.Decimal `json:"pyramid-multiple" mapstructure:"pyramid-multiple"`
	// MaxPosition caps the summed lot quantity per instrument, zero is
	// unlimited
	MaxPosition  decimal.Decimal            `json:"max-position" mapstructure:"max-position"`
	MaxPositions map[string]decimal.Decimal `json:"max-positions" mapstructure:"max-positions"`
	// MaxHoldingDuration closes lots held longer than it, zero disables
	MaxHoldingDuration time.Duration `json:"max-holding-duration" mapstructure:"max-holding-duration"`
	// UpdateOnSameDay reprices the newest lot's stop-profit and pyramid
	// levels when a buy and a sell signal fall on the same bar
	UpdateOnSameDay bool `json:"update-on-same-day" mapstructure:"update-on-same-day"`
}

// Strategy is a risk managed pyramiding strategy layered on fixed lots
type Strategy struct {
	lot   *fixedlot.Strategy
	cfg   Config
	holds map[string][]base.Lot
}
