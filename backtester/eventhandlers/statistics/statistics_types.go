package statistics

import (
	"time"

	"github.com/shopspring/decimal"
)

// minQuantity is the smallest execution size the matcher considers
var minQuantity = decimal.NewFromInt(1)

// ClosedPair is a realised round trip between an opening buy lot and the
// sell that closed it
type ClosedPair struct {
	Instrument string          `json:"instrument"`
	Entry      time.Time       `json:"entry"`
	Exit       time.Time       `json:"exit"`
	EntryPrice decimal.Decimal `json:"entry-price"`
	ExitPrice  decimal.Decimal `json:"exit-price"`
	Quantity   decimal.Decimal `json:"quantity"`
	// PnLRatio is exit/entry - 1
	PnLRatio decimal.Decimal `json:"pnl-ratio"`
	// PnLMoney is (exit - entry) * quantity
	PnLMoney decimal.Decimal `json:"pnl-money"`
	Holding  time.Duration   `json:"holding"`
}

// Summary aggregates a closed pair table
type Summary struct {
	Pairs           int             `json:"pairs"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         decimal.Decimal `json:"win-rate"`
	TotalPnLMoney   decimal.Decimal `json:"total-pnl-money"`
	AveragePnLMoney decimal.Decimal `json:"average-pnl-money"`
	AveragePnLRatio decimal.Decimal `json:"average-pnl-ratio"`
	AverageHolding  time.Duration   `json:"average-holding"`
}

// openLot is a queued buy awaiting a closing sell
type openLot struct {
	opened    time.Time
	price     decimal.Decimal
	remaining decimal.Decimal
}
