package strategies

import (
	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/shopspring/decimal"
)

// Handler is the decision policy consulted by the ledger on every bar.
// Every method except OnSameDayConflict must be free of side effects on
// the handler's own state; CalcBuyAmount and CalcSellAmount may record
// the lots they open or close when the amount returned is non-zero
type Handler interface {
	Name() string
	Description() string
	CheckBuy(bar *data.Bar, cash decimal.Decimal) (bool, error)
	CheckSell(bar *data.Bar, cash decimal.Decimal, pos base.Position) (bool, error)
	CalcBuyAmount(bar *data.Bar, cash decimal.Decimal) (decimal.Decimal, error)
	CalcSellAmount(bar *data.Bar, cash decimal.Decimal, pos base.Position) (decimal.Decimal, error)
	OnSameDayConflict(bar *data.Bar) error
	SetSignals(buy, sell base.DateSet)
	SetLotSizes(base.LotSizes) error
	SetFeeModel(base.Coster)
}

// LotSeeder is implemented by handlers that track their own open lots and
// need to learn about positions held before the first bar
type LotSeeder interface {
	SeedLot(base.Lot) error
}

// Chain is an ordered list of handlers evaluated in registration order
type Chain []Handler

// PositionSyncer is implemented by handlers whose own lot tracking must
// follow the ledger's position when other handlers trade
type PositionSyncer interface {
	SyncPosition(instrument string, pos base.Position)
}
