package strategies

import (
	"fmt"
	"strings"

	"github.com/GuQiangJS/finance-tools-py/backtester/data"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/allin"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/base"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/fixedlot"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies/turtle"
	"github.com/shopspring/decimal"
)

// LoadStrategyByName returns a new default instance of the named strategy
func LoadStrategyByName(name string) (Handler, error) {
	for _, s := range GetStrategies() {
		if strings.EqualFold(name, s.Name()) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// GetStrategies returns a fresh instance of every built-in strategy
func GetStrategies() []Handler {
	return []Handler{
		fixedlot.New(),
		allin.New(),
		turtle.New(turtle.DefaultConfig()),
	}
}

// CheckBuy is true when any handler raises a buy signal
func (c Chain) CheckBuy(bar *data.Bar, cash decimal.Decimal) (bool, error) {
	for i := range c {
		ok, err := c[i].CheckBuy(bar, cash)
		if err != nil {
			return false, fmt.Errorf("%v: %w", c[i].Name(), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// CheckSell is true when any handler raises a sell signal
func (c Chain) CheckSell(bar *data.Bar, cash decimal.Decimal, pos base.Position) (bool, error) {
	for i := range c {
		ok, err := c[i].CheckSell(bar, cash, pos)
		if err != nil {
			return false, fmt.Errorf("%v: %w", c[i].Name(), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// CalcBuyAmount returns the first non-zero amount
func (c Chain) CalcBuyAmount(bar *data.Bar, cash decimal.Decimal) (decimal.Decimal, error) {
	for i := range c {
		amount, err := c[i].CalcBuyAmount(bar, cash)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%v: %w", c[i].Name(), err)
		}
		if amount.IsPositive() {
			return amount, nil
		}
	}
	return decimal.Zero, nil
}

// CalcSellAmount returns the first non-zero amount
func (c Chain) CalcSellAmount(bar *data.Bar, cash decimal.Decimal, pos base.Position) (decimal.Decimal, error) {
	for i := range c {
		amount, err := c[i].CalcSellAmount(bar, cash, pos)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%v: %w", c[i].Name(), err)
		}
		if amount.IsPositive() {
			return amount, nil
		}
	}
	return decimal.Zero, nil
}

// OnSameDayConflict notifies every handler
func (c Chain) OnSameDayConflict(bar *data.Bar) error {
	for i := range c {
		if err := c[i].OnSameDayConflict(bar); err != nil {
			return fmt.Errorf("%v: %w", c[i].Name(), err)
		}
	}
	return nil
}

// SetFeeModel sets the fee model on every handler
func (c Chain) SetFeeModel(fees base.Coster) {
	for i := range c {
		c[i].SetFeeModel(fees)
	}
}

// SeedLot passes an initial holding to every handler tracking lots
func (c Chain) SeedLot(l base.Lot) error {
	for i := range c {
		s, ok := c[i].(LotSeeder)
		if !ok {
			continue
		}
		if err := s.SeedLot(l); err != nil {
			return fmt.Errorf("%v: %w", c[i].Name(), err)
		}
	}
	return nil
}

// SyncPosition passes the ledger's position to every handler tracking lots
func (c Chain) SyncPosition(instrument string, pos base.Position) {
	for i := range c {
		if s, ok := c[i].(PositionSyncer); ok {
			s.SyncPosition(instrument, pos)
		}
	}
}
