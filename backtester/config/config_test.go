package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/engine"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/turtle"
	"github.com/GuQiangJS/finance-tools-py/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	prices = `date,code,close
2000-01-01,000001,4.5
2000-01-02,000001,7.9
2000-01-03,000001,6.7
2000-01-04,000001,10
`
	runConfig = `{
	"data": {"path": "prices.csv"},
	"funding": {"initial-cash": 1000},
	"run": {"verbose": true, "show-history": false},
	"strategies": [{
		"name": "FixedLot",
		"signals": [{"instrument": "000001", "buy": ["2000-01-01", "2000-01-03"], "sell": ["2000-01-02"]}]
	}]
}`
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write(t, dir, "prices.csv", prices)
	c, err := Load(write(t, dir, "run.json", runConfig))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "prices.csv"), c.Data.Path)
	assert.Equal(t, "close", c.Data.PriceField)
	assert.True(t, c.Funding.InitialCash.Equal(decimal.NewFromInt(1000)))
	assert.True(t, c.Fees.TaxRate.Equal(decimal.NewFromFloat(0.001)))
	assert.True(t, c.Fees.MinCommission.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, string(exchange.StockCN), c.Fees.InstrumentClass)
	assert.True(t, c.Run.Verbose)
	assert.False(t, c.Run.ShowHistory)
	assert.True(t, c.Run.ShowHold)
	assert.False(t, c.Database.Enabled)
	assert.Equal(t, database.DBSQLite3, c.Database.Driver)
	require.Len(t, c.Strategies, 1)
	require.Len(t, c.Strategies[0].Signals, 1)
	assert.Equal(t, time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC), c.Strategies[0].Signals[0].Buy[1])

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "prices.csv", prices)
	t.Setenv("LEDGER_FUNDING_INITIAL_CASH", "2500.5")
	t.Setenv("LEDGER_FEES_MIN_COMMISSION", "1")
	c, err := Load(write(t, dir, "run.json", runConfig))
	require.NoError(t, err)
	assert.True(t, c.Funding.InitialCash.Equal(decimal.RequireFromString("2500.5")))
	assert.True(t, c.Fees.MinCommission.Equal(decimal.NewFromInt(1)))
}

func TestLoadAndRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write(t, dir, "prices.csv", prices)
	c, err := Load(write(t, dir, "run.json", runConfig))
	require.NoError(t, err)

	rows, err := c.Rows()
	require.NoError(t, err)
	cfg, err := c.EngineConfig()
	require.NoError(t, err)
	e, err := engine.NewFromRows(rows, cfg)
	require.NoError(t, err)
	require.NoError(t, e.CalcTradeHistory(c.CalcOptions()))
	assert.True(t, e.AvailableCash().Equal(decimal.NewFromFloat(653.09)), e.AvailableCash().String())

	out, err := e.Report(c.ReportOptions())
	require.NoError(t, err)
	assert.NotContains(t, out, "History:")
	assert.Contains(t, out, "Holdings:")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	valid := func() RunConfig {
		return RunConfig{
			Data:       DataSettings{Path: "prices.csv"},
			Funding:    FundingSettings{InitialCash: decimal.NewFromInt(1000)},
			Fees:       FeeSettings{InstrumentClass: string(exchange.StockCN)},
			Strategies: []StrategySettings{{Name: "allin"}},
		}
	}
	c := valid()
	require.NoError(t, c.Validate())

	for name, mutate := range map[string]func(*RunConfig){
		"no path":         func(c *RunConfig) { c.Data.Path = "" },
		"negative atr":    func(c *RunConfig) { c.Data.ATRPeriod = -1 },
		"bad timezone":    func(c *RunConfig) { c.Data.Timezone = "Mars/Olympus" },
		"zero cash":       func(c *RunConfig) { c.Funding.InitialCash = decimal.Zero },
		"bad holding":     func(c *RunConfig) { c.Funding.InitialHoldings = []engine.InitialHolding{{Instrument: "000001"}} },
		"negative fee":    func(c *RunConfig) { c.Fees.TaxRate = decimal.NewFromInt(-1) },
		"unknown class":   func(c *RunConfig) { c.Fees.InstrumentClass = "bond" },
		"bad override":    func(c *RunConfig) { c.Fees.InstrumentClasses = []InstrumentClassSettings{{Class: "index_cn"}} },
		"no strategies":   func(c *RunConfig) { c.Strategies = nil },
		"unknown name":    func(c *RunConfig) { c.Strategies[0].Name = "rsi" },
		"negative lot":    func(c *RunConfig) { c.Strategies[0].Lot = decimal.NewFromInt(-100) },
		"anonymous dates": func(c *RunConfig) { c.Strategies[0].Signals = []SignalSettings{{}} },
		"bad driver": func(c *RunConfig) {
			c.Database.Enabled = true
			c.Database.Driver = "mysql"
		},
		"no database": func(c *RunConfig) {
			c.Database.Enabled = true
			c.Database.Driver = database.DBPostgreSQL
		},
	} {
		c := valid()
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, name)
	}

	c = valid()
	c.Strategies = nil
	assert.ErrorIs(t, c.Validate(), engine.ErrNoStrategies)
	c = valid()
	c.Strategies[0].Name = "rsi"
	assert.ErrorIs(t, c.Validate(), base.ErrStrategyNotFound)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	zero := decimal.Zero
	off := false
	s := StrategySettings{
		Name: "turtle",
		Lot:  decimal.NewFromInt(200),
		Lots: []InstrumentAmount{{Instrument: "600000", Amount: decimal.NewFromInt(1000)}},
		Turtle: TurtleSettings{
			IndicatorField:     "n",
			StopProfitMultiple: &zero,
			MaxPositions:       []InstrumentAmount{{Instrument: "600000", Amount: decimal.NewFromInt(3000)}},
			UpdateOnSameDay:    &off,
		},
	}
	h, err := s.Build()
	require.NoError(t, err)
	tt, ok := h.(*turtle.Strategy)
	require.True(t, ok)
	cfg := tt.Config()
	assert.Equal(t, "n", cfg.IndicatorField)
	assert.True(t, cfg.StopLossMultiple.Equal(decimal.NewFromInt(2)))
	assert.True(t, cfg.StopProfitMultiple.IsZero())
	assert.False(t, cfg.UpdateOnSameDay)
	assert.True(t, tt.MaxPosition("600000").Equal(decimal.NewFromInt(3000)))
	assert.True(t, tt.MaxPosition("000001").Equal(decimal.NewFromInt(400)))

	s.Turtle.MaxHoldingDuration = -time.Hour
	_, err = s.Build()
	assert.ErrorIs(t, err, turtle.ErrNegativeDuration)

	s = StrategySettings{Name: "fixedlot", Lots: []InstrumentAmount{{Instrument: "000001"}}}
	_, err = s.Build()
	assert.ErrorIs(t, err, base.ErrInvalidLotSize)
}

func TestHooks(t *testing.T) {
	t.Parallel()
	v, err := decimalHook(nil, decimalType, "1.25")
	require.NoError(t, err)
	assert.True(t, v.(decimal.Decimal).Equal(decimal.RequireFromString("1.25")))
	v, err = decimalHook(nil, decimalType, 7)
	require.NoError(t, err)
	assert.True(t, v.(decimal.Decimal).Equal(decimal.NewFromInt(7)))
	_, err = decimalHook(nil, decimalType, "seven")
	assert.True(t, errors.Is(err, errUnparsableDecimal))

	v, err = timeHook(nil, timeType, "2020-01-02 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 2, 9, 30, 0, 0, time.UTC), v)
	_, err = timeHook(nil, timeType, "yesterday")
	assert.ErrorIs(t, err, errUnparsableDate)
	v, err = timeHook(nil, decimalType, "yesterday")
	require.NoError(t, err)
	assert.Equal(t, "yesterday", v)
}
