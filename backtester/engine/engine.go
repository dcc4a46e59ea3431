package engine

import (
	"fmt"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/exchange"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/portfolio/holdings"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/statistics"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/GuQiangJS/finance-tools-py/backtester/funding"
	"github.com/GuQiangJS/finance-tools-py/backtester/report"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/shopspring/decimal"
)

// DefaultConfig returns the CN equity defaults: 10000 initial cash, 0.1%
// stamp tax, 0.1% commission with a minimum of 5, priced on close
func DefaultConfig() Config {
	fees := exchange.Default()
	return Config{
		InitialCash:     decimal.NewFromInt(10000),
		TaxRate:         fees.TaxRate,
		CommissionRate:  fees.CommissionRate,
		MinCommission:   fees.MinCommission,
		PriceField:      data.DefaultPriceField,
		InstrumentClass: exchange.StockCN,
	}
}

// NewFromRows builds the tape from rows using the configured price field
// and returns an engine over it
func NewFromRows(rows []data.Row, cfg Config) (*Engine, error) {
	field := cfg.PriceField
	if field == "" {
		field = data.DefaultPriceField
	}
	tape, err := data.NewTape(rows, field)
	if err != nil {
		return nil, err
	}
	return New(tape, cfg)
}

// New validates the configuration and returns an engine ready for
// CalcTradeHistory
func New(tape *data.Tape, cfg Config) (*Engine, error) {
	if tape == nil {
		return nil, fmt.Errorf("tape %w", common.ErrNilArguments)
	}
	if tape.Len() == 0 {
		return nil, data.ErrEmptyTape
	}
	if cfg.PriceField != "" && cfg.PriceField != tape.PriceField() {
		return nil, fmt.Errorf("configured %q tape %q: %w", cfg.PriceField, tape.PriceField(), ErrPriceFieldMismatch)
	}
	if len(cfg.Strategies) == 0 {
		return nil, ErrNoStrategies
	}
	for i := range cfg.Strategies {
		if cfg.Strategies[i] == nil {
			return nil, fmt.Errorf("strategy %d %w", i, common.ErrNilArguments)
		}
	}
	cash, err := funding.NewCashTimeline(cfg.InitialCash)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		tape: tape,
		exchange: exchange.Exchange{
			TaxRate:        cfg.TaxRate,
			CommissionRate: cfg.CommissionRate,
			MinCommission:  cfg.MinCommission,
			DefaultClass:   cfg.InstrumentClass,
			Classes:        cfg.InstrumentClasses,
		},
		chain:     strategies.Chain(cfg.Strategies),
		cash:      cash,
		tracker:   holdings.NewTracker(),
		liveStart: cfg.LiveStart,
	}
	if err = e.exchange.Validate(); err != nil {
		return nil, err
	}
	e.chain.SetFeeModel(&e.exchange)
	if e.liveStart.IsZero() {
		e.liveStart = tape.Start()
	}
	for i := range cfg.InitialHoldings {
		if err = e.seed(&cfg.InitialHoldings[i]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// seed records an initial holding as a fee free execution one interval
// before the first bar and hands its lot to strategies that track lots
func (e *Engine) seed(h *InitialHolding) error {
	if h.Instrument == "" || !h.Quantity.IsPositive() || !h.Price.IsPositive() {
		return fmt.Errorf("%q quantity %v price %v: %w", h.Instrument, h.Quantity, h.Price, ErrInvalidInitialHolding)
	}
	if _, ok := e.tape.LastPrice(h.Instrument); !ok {
		return fmt.Errorf("%q is not on the price tape: %w", h.Instrument, ErrInvalidInitialHolding)
	}
	ts := e.tape.Start().Add(-e.tape.Interval())
	ex, err := e.history.Append(execution.Execution{
		Time:       ts,
		Instrument: h.Instrument,
		Price:      h.Price,
		Quantity:   h.Quantity,
		CashAfter:  e.cash.Available(),
		Value:      h.Price.Mul(h.Quantity),
		Total:      h.Price.Mul(h.Quantity),
		Direction:  common.Buy,
		Synthetic:  true,
	})
	if err != nil {
		return err
	}
	if err = e.tracker.Apply(&ex); err != nil {
		return err
	}
	return e.chain.SeedLot(base.Lot{
		Instrument:  h.Instrument,
		Opened:      ts,
		Price:       h.Price,
		Quantity:    h.Quantity,
		StopLoss:    levelOrDisabled(h.StopLoss),
		StopProfit:  levelOrDisabled(h.StopProfit),
		NextPyramid: levelOrDisabled(h.NextPyramid),
	})
}

func levelOrDisabled(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return common.NegativeOne
	}
	return d
}

// CalcTradeHistory replays the tape once. Buys that cannot be afforded and
// sells without a holding are skipped. An engine can only be calculated
// once
func (e *Engine) CalcTradeHistory(opts CalcOptions) error {
	if e.started {
		return ErrAlreadyCalculated
	}
	e.started = true
	bars := e.tape.Bars()
	for i := range bars {
		bar := &bars[i]
		if bar.Time.Before(e.liveStart) {
			continue
		}
		if err := e.processBar(bar, opts); err != nil {
			return fmt.Errorf("%v %v: %w", common.FormatTime(bar.Time), bar.Instrument, err)
		}
	}
	e.calculated = true
	log.Infof(log.Ledger, "calculation complete, %d executions, available cash %v",
		e.history.Trades(), e.cash.Available().StringFixed(2))
	return nil
}

func (e *Engine) processBar(bar *data.Bar, opts CalcOptions) error {
	cash := e.cash.Available()
	pos := e.tracker.Position(bar.Instrument)
	e.chain.SyncPosition(bar.Instrument, pos)
	buy, err := e.chain.CheckBuy(bar, cash)
	if err != nil {
		return err
	}
	sell, err := e.chain.CheckSell(bar, cash, pos)
	if err != nil {
		return err
	}
	if buy && sell {
		if err = e.chain.OnSameDayConflict(bar); err != nil {
			return err
		}
		buy = opts.AllowSameDayBuy
		sell = opts.AllowSameDaySell
		if opts.Verbose {
			log.Debugf(log.Ledger, "%v %v buy and sell signalled on the same bar, buy %v sell %v",
				common.FormatTime(bar.Time), bar.Instrument, buy, sell)
		}
	}
	if buy {
		if err = e.buy(bar, opts); err != nil {
			return err
		}
	}
	if sell {
		return e.sell(bar, opts)
	}
	return nil
}

func (e *Engine) buy(bar *data.Bar, opts CalcOptions) error {
	cash := e.cash.Available()
	amount, err := e.chain.CalcBuyAmount(bar, cash)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		e.skip(bar, common.CouldNotBuy, "no amount", opts)
		return nil
	}
	fees, err := e.exchange.BuyCost(bar.Instrument, bar.Price, amount)
	if err != nil {
		return err
	}
	if !e.cash.CanAfford(fees.Total) {
		e.skip(bar, common.CouldNotBuy, fmt.Sprintf("cost %v exceeds cash %v", fees.Total.StringFixed(2), cash.StringFixed(2)), opts)
		return nil
	}
	after, err := e.cash.Debit(fees.Total)
	if err != nil {
		return err
	}
	return e.record(bar, amount, after, fees, opts)
}

func (e *Engine) sell(bar *data.Bar, opts CalcOptions) error {
	pos := e.tracker.Position(bar.Instrument)
	if !pos.Holding() {
		e.skip(bar, common.CouldNotSell, "no holding", opts)
		return nil
	}
	amount, err := e.chain.CalcSellAmount(bar, e.cash.Available(), pos)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		e.skip(bar, common.CouldNotSell, "no amount", opts)
		return nil
	}
	if amount.GreaterThan(pos.Quantity) {
		return fmt.Errorf("%v %v sells %v while holding %v: %w",
			bar.Instrument, common.FormatTime(bar.Time), amount, pos.Quantity, common.ErrLedgerInconsistency)
	}
	fees, err := e.exchange.SellProceeds(bar.Instrument, bar.Price, amount)
	if err != nil {
		return err
	}
	var after decimal.Decimal
	if fees.Total.IsNegative() {
		// fees exceed the sale value
		if !e.cash.CanAfford(fees.Total.Abs()) {
			e.skip(bar, common.CouldNotSell, "fees exceed proceeds and cash", opts)
			return nil
		}
		after, err = e.cash.Debit(fees.Total.Abs())
	} else {
		after, err = e.cash.Credit(fees.Total)
	}
	if err != nil {
		return err
	}
	return e.record(bar, amount.Neg(), after, fees, opts)
}

func (e *Engine) record(bar *data.Bar, quantity, cashAfter decimal.Decimal, fees exchange.Fees, opts CalcOptions) error {
	ex, err := e.history.Append(execution.Execution{
		Time:       bar.Time,
		Instrument: bar.Instrument,
		Price:      bar.Price,
		Quantity:   quantity,
		CashAfter:  cashAfter,
		Commission: fees.Commission,
		Tax:        fees.Tax,
		Value:      fees.Value,
		Total:      fees.Total,
		Direction:  common.DirectionFromQuantity(quantity),
	})
	if err != nil {
		return err
	}
	if err = e.tracker.Apply(&ex); err != nil {
		return err
	}
	e.chain.SyncPosition(ex.Instrument, e.tracker.Position(ex.Instrument))
	if opts.Verbose {
		log.Infof(log.Ledger, "%v %v %v %v at %v, cash %v",
			common.FormatTime(ex.Time), ex.Instrument, ex.Direction, ex.Quantity.Abs(), ex.Price, ex.CashAfter.StringFixed(2))
	}
	return nil
}

func (e *Engine) skip(bar *data.Bar, d common.Direction, reason string, opts CalcOptions) {
	if !opts.Verbose {
		return
	}
	log.Debugf(log.Ledger, "%v %v %v: %v", common.FormatTime(bar.Time), bar.Instrument, d, reason)
}

// Calculated reports whether CalcTradeHistory has completed
func (e *Engine) Calculated() bool {
	return e.calculated
}

// History returns a copy of every execution in scan order
func (e *Engine) History() []execution.Execution {
	return e.history.Executions()
}

// AvailableCash returns the current cash balance
func (e *Engine) AvailableCash() decimal.Decimal {
	return e.cash.Available()
}

// CashBalances returns every cash balance, initial cash first
func (e *Engine) CashBalances() []decimal.Decimal {
	return e.cash.Balances()
}

// Holdings derives the current holdings from the execution history
func (e *Engine) Holdings() (holdings.View, error) {
	if !e.calculated {
		return holdings.View{}, ErrNotCalculated
	}
	return holdings.FromExecutions(e.history.Executions())
}

// TotalAssets returns available cash plus every holding marked at its last
// price on the tape
func (e *Engine) TotalAssets() (decimal.Decimal, error) {
	v, err := e.Holdings()
	if err != nil {
		return decimal.Zero, err
	}
	return v.TotalAssets(e.cash.Available(), e.tape)
}

// HoldTime returns how long each open position has been held as of the last
// bar
func (e *Engine) HoldTime() (map[string]time.Duration, error) {
	v, err := e.Holdings()
	if err != nil {
		return nil, err
	}
	return v.HoldTime(e.tape.End()), nil
}

// ProfitLoss matches the execution history into closed pairs
func (e *Engine) ProfitLoss() ([]statistics.ClosedPair, error) {
	if !e.calculated {
		return nil, ErrNotCalculated
	}
	return statistics.Match(e.history.Executions())
}

// Summary returns the win rate summary of the closed pairs
func (e *Engine) Summary() (statistics.Summary, error) {
	pairs, err := e.ProfitLoss()
	if err != nil {
		return statistics.Summary{}, err
	}
	return statistics.Summarise(pairs), nil
}

// Report renders the results as text
func (e *Engine) Report(opts report.Options) (string, error) {
	d, err := e.ReportData()
	if err != nil {
		return "", err
	}
	return report.Render(d, opts)
}

// ReportData gathers the values a report renders
func (e *Engine) ReportData() (*report.Data, error) {
	v, err := e.Holdings()
	if err != nil {
		return nil, err
	}
	summary, err := e.Summary()
	if err != nil {
		return nil, err
	}
	d := &report.Data{
		Start:           e.tape.Start(),
		End:             e.tape.End(),
		Bars:            e.tape.Len(),
		Trades:          e.history.Trades(),
		InitialCash:     e.cash.Initial(),
		AvailableCash:   e.cash.Available(),
		TotalCommission: e.history.TotalCommission(),
		TotalTax:        e.history.TotalTax(),
		History:         e.history.Executions(),
		Summary:         &summary,
	}
	total := d.AvailableCash
	for _, h := range v.Holdings() {
		price, ok := e.tape.LastPrice(h.Instrument)
		if !ok {
			return nil, fmt.Errorf("%v %w", h.Instrument, holdings.ErrNoPrice)
		}
		mv := h.Quantity.Mul(price)
		total = total.Add(mv)
		d.Positions = append(d.Positions, report.Position{
			Holding:     h,
			LastPrice:   price,
			MarketValue: mv,
		})
	}
	d.TotalAssets = total
	return d, nil
}
