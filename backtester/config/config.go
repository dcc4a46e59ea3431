package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/engine"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/turtle"
	"github.com/GuQiangJS/finance-tools-py/backtester/report"
	"github.com/GuQiangJS/finance-tools-py/database"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	dateLayouts = []string{common.SimpleTimeFormat, common.DateTimeFormat, time.RFC3339}
)

// Load reads a run config from path. Any key can be overridden by an
// environment variable prefixed LEDGER_, e.g. LEDGER_FUNDING_INITIAL_CASH.
// An empty path loads defaults and environment only
func Load(path string) (*RunConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var c RunConfig
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		timeHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if path != "" && c.Data.Path != "" && !filepath.IsAbs(c.Data.Path) {
		c.Data.Path = filepath.Join(filepath.Dir(path), c.Data.Path)
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	log.Debugf(log.ConfigMgr, "loaded run config %q with %d strategies", path, len(c.Strategies))
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	fees := exchange.Default()
	v.SetDefault("data.path", "")
	v.SetDefault("data.encoding", "")
	v.SetDefault("data.instrument", "")
	v.SetDefault("data.timezone", "")
	v.SetDefault("data.price-field", data.DefaultPriceField)
	v.SetDefault("data.atr-period", 0)
	v.SetDefault("funding.initial-cash", "10000")
	v.SetDefault("fees.tax-rate", fees.TaxRate.String())
	v.SetDefault("fees.commission-rate", fees.CommissionRate.String())
	v.SetDefault("fees.min-commission", fees.MinCommission.String())
	v.SetDefault("fees.instrument-class", string(exchange.StockCN))
	v.SetDefault("run.verbose", false)
	v.SetDefault("run.allow-same-day-buy", false)
	v.SetDefault("run.allow-same-day-sell", false)
	v.SetDefault("run.show-history", true)
	v.SetDefault("run.show-hold", true)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.verbose", false)
	v.SetDefault("database.driver", database.DBSQLite3)
	v.SetDefault("database.database", "journal.db")
}

// decimalHook decodes strings and numbers into decimals
func decimalHook(_, to reflect.Type, v any) (any, error) {
	if to != decimalType {
		return v, nil
	}
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		r, err := decimal.NewFromString(strings.TrimSpace(d))
		if err != nil {
			return nil, fmt.Errorf("%w %q", errUnparsableDecimal, d)
		}
		return r, nil
	case float64:
		return decimal.NewFromFloat(d), nil
	case float32:
		return decimal.NewFromFloat32(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	}
	r, err := decimal.NewFromString(fmt.Sprint(v))
	if err != nil {
		return nil, fmt.Errorf("%w %v", errUnparsableDecimal, v)
	}
	return r, nil
}

// timeHook decodes dates and timestamps written in the report layouts
func timeHook(_, to reflect.Type, v any) (any, error) {
	if to != timeType {
		return v, nil
	}
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w %q", errUnparsableDate, s)
}

// Validate checks all config settings
func (c *RunConfig) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("%w: data.path is required", ErrInvalidConfig)
	}
	if c.Data.ATRPeriod < 0 {
		return fmt.Errorf("%w: data.atr-period %d is negative", ErrInvalidConfig, c.Data.ATRPeriod)
	}
	if c.Data.Timezone != "" {
		if _, err := time.LoadLocation(c.Data.Timezone); err != nil {
			return fmt.Errorf("%w: data.timezone %v", ErrInvalidConfig, err)
		}
	}
	if !c.Funding.InitialCash.IsPositive() {
		return fmt.Errorf("%w: funding.initial-cash %v must be positive", ErrInvalidConfig, c.Funding.InitialCash)
	}
	for i, h := range c.Funding.InitialHoldings {
		if h.Instrument == "" || !h.Quantity.IsPositive() || !h.Price.IsPositive() {
			return fmt.Errorf("%w: funding.initial-holdings[%d] needs an instrument, a positive quantity and a positive price", ErrInvalidConfig, i)
		}
	}
	if err := c.validateFees(); err != nil {
		return err
	}
	if err := c.validateStrategies(); err != nil {
		return err
	}
	return c.validateDatabase()
}

func (c *RunConfig) validateFees() error {
	if c.Fees.TaxRate.IsNegative() || c.Fees.CommissionRate.IsNegative() || c.Fees.MinCommission.IsNegative() {
		return fmt.Errorf("%w: fees %w", ErrInvalidConfig, exchange.ErrNegativeRate)
	}
	if !knownClass(c.Fees.InstrumentClass) {
		return fmt.Errorf("%w: fees.instrument-class %q", ErrInvalidConfig, c.Fees.InstrumentClass)
	}
	for i := range c.Fees.InstrumentClasses {
		if c.Fees.InstrumentClasses[i].Instrument == "" || !knownClass(c.Fees.InstrumentClasses[i].Class) {
			return fmt.Errorf("%w: fees.instrument-classes[%d]", ErrInvalidConfig, i)
		}
	}
	return nil
}

func knownClass(c string) bool {
	switch exchange.InstrumentClass(c) {
	case "", exchange.StockCN, exchange.IndexCN:
		return true
	}
	return false
}

func (c *RunConfig) validateStrategies() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, engine.ErrNoStrategies)
	}
	for i := range c.Strategies {
		s := &c.Strategies[i]
		if _, err := strategies.LoadStrategyByName(s.Name); err != nil {
			return fmt.Errorf("%w: strategies[%d] %w", ErrInvalidConfig, i, err)
		}
		if s.Lot.IsNegative() {
			return fmt.Errorf("%w: strategies[%d].lot %w", ErrInvalidConfig, i, base.ErrInvalidLotSize)
		}
		for j := range s.Signals {
			if s.Signals[j].Instrument == "" {
				return fmt.Errorf("%w: strategies[%d].signals[%d] has no instrument", ErrInvalidConfig, i, j)
			}
		}
	}
	return nil
}

func (c *RunConfig) validateDatabase() error {
	if !c.Database.Enabled {
		return nil
	}
	if c.Database.Driver != database.DBSQLite3 && c.Database.Driver != database.DBPostgreSQL {
		return fmt.Errorf("%w: database.driver %w %q", ErrInvalidConfig, database.ErrUnsupportedDriver, c.Database.Driver)
	}
	if c.Database.Database == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, database.ErrNoDatabaseProvided)
	}
	return nil
}

// Rows reads the configured price file, annotating it with an ATR column
// when requested
func (c *RunConfig) Rows() ([]data.Row, error) {
	opts := data.CSVOptions{
		Encoding:          c.Data.Encoding,
		DefaultInstrument: c.Data.Instrument,
	}
	if c.Data.Timezone != "" {
		loc, err := time.LoadLocation(c.Data.Timezone)
		if err != nil {
			return nil, err
		}
		opts.Location = loc
	}
	rows, err := data.ReadCSVFile(c.Data.Path, opts)
	if err != nil {
		return nil, err
	}
	if c.Data.ATRPeriod > 0 {
		if err = data.AnnotateATR(rows, c.Data.ATRPeriod, c.Data.ATRField); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// EngineConfig builds the engine configuration with a fresh strategy chain
func (c *RunConfig) EngineConfig() (engine.Config, error) {
	cfg := engine.Config{
		InitialCash:     c.Funding.InitialCash,
		InitialHoldings: c.Funding.InitialHoldings,
		TaxRate:         c.Fees.TaxRate,
		CommissionRate:  c.Fees.CommissionRate,
		MinCommission:   c.Fees.MinCommission,
		PriceField:      c.Data.PriceField,
		LiveStart:       c.Run.LiveStart,
		InstrumentClass: exchange.InstrumentClass(c.Fees.InstrumentClass),
	}
	if len(c.Fees.InstrumentClasses) > 0 {
		cfg.InstrumentClasses = make(map[string]exchange.InstrumentClass, len(c.Fees.InstrumentClasses))
		for _, ic := range c.Fees.InstrumentClasses {
			cfg.InstrumentClasses[ic.Instrument] = exchange.InstrumentClass(ic.Class)
		}
	}
	for i := range c.Strategies {
		h, err := c.Strategies[i].Build()
		if err != nil {
			return engine.Config{}, fmt.Errorf("strategies[%d] %w", i, err)
		}
		cfg.Strategies = append(cfg.Strategies, h)
	}
	return cfg, nil
}

// CalcOptions returns the replay options
func (c *RunConfig) CalcOptions() engine.CalcOptions {
	return engine.CalcOptions{
		Verbose:          c.Run.Verbose,
		AllowSameDayBuy:  c.Run.AllowSameDayBuy,
		AllowSameDaySell: c.Run.AllowSameDaySell,
	}
}

// ReportOptions returns the report sections to render
func (c *RunConfig) ReportOptions() report.Options {
	return report.Options{
		ShowHistory: c.Run.ShowHistory,
		ShowHold:    c.Run.ShowHold,
	}
}

// Build returns the configured strategy with its signals and lot sizes set
func (s *StrategySettings) Build() (strategies.Handler, error) {
	var h strategies.Handler
	if strings.EqualFold(s.Name, turtle.Name) {
		cfg := s.Turtle.Config()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		h = turtle.New(cfg)
	} else {
		var err error
		if h, err = strategies.LoadStrategyByName(s.Name); err != nil {
			return nil, err
		}
	}
	buy := make(map[string][]time.Time)
	sell := make(map[string][]time.Time)
	for _, sig := range s.Signals {
		buy[sig.Instrument] = append(buy[sig.Instrument], sig.Buy...)
		sell[sig.Instrument] = append(sell[sig.Instrument], sig.Sell...)
	}
	h.SetSignals(base.NewDateSet(buy), base.NewDateSet(sell))

	lots := base.NewLotSizes(common.OneHundred)
	if !s.Lot.IsZero() {
		lots.Default = s.Lot
	}
	if len(s.Lots) > 0 {
		lots.PerInstrument = make(map[string]decimal.Decimal, len(s.Lots))
		for _, l := range s.Lots {
			lots.PerInstrument[l.Instrument] = l.Amount
		}
	}
	if err := h.SetLotSizes(lots); err != nil {
		return nil, err
	}
	return h, nil
}

// Config overlays the settings on the default turtle parameters
func (t *TurtleSettings) Config() turtle.Config {
	cfg := turtle.DefaultConfig()
	if t.IndicatorField != "" {
		cfg.IndicatorField = t.IndicatorField
	}
	if t.StopLossMultiple != nil {
		cfg.StopLossMultiple = *t.StopLossMultiple
	}
	if t.StopProfitMultiple != nil {
		cfg.StopProfitMultiple = *t.StopProfitMultiple
	}
	if t.PyramidMultiple != nil {
		cfg.PyramidMultiple = *t.PyramidMultiple
	}
	if t.MaxPosition != nil {
		cfg.MaxPosition = *t.MaxPosition
	}
	if len(t.MaxPositions) > 0 {
		cfg.MaxPositions = make(map[string]decimal.Decimal, len(t.MaxPositions))
		for _, m := range t.MaxPositions {
			cfg.MaxPositions[m.Instrument] = m.Amount
		}
	}
	cfg.MaxHoldingDuration = t.MaxHoldingDuration
	if t.UpdateOnSameDay != nil {
		cfg.UpdateOnSameDay = *t.UpdateOnSameDay
	}
	return cfg
}
