package report

import (
	"errors"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/portfolio/holdings"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/statistics"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/shopspring/decimal"
)

var errNilData = errors.New("received nil report data")

// Options selects the optional sections of a report
type Options struct {
	ShowHistory bool
	ShowHold    bool
}

// Data is everything a report renders
type Data struct {
	Start           time.Time
	End             time.Time
	Bars            int
	Trades          int
	InitialCash     decimal.Decimal
	AvailableCash   decimal.Decimal
	Positions       []Position
	TotalAssets     decimal.Decimal
	TotalCommission decimal.Decimal
	TotalTax        decimal.Decimal
	History         []execution.Execution
	// Summary of closed trades, omitted when nil
	Summary *statistics.Summary
}

// Position is an open holding marked to market
type Position struct {
	holdings.Holding
	LastPrice   decimal.Decimal
	MarketValue decimal.Decimal
}
