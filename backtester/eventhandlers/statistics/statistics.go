package statistics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/shopspring/decimal"
)

// Match pairs every sell with the oldest open buy lots of its instrument.
// Executions smaller than one unit are ignored. Pairs are grouped by
// instrument and ordered by exit within an instrument. A sell larger than
// the open lots is a ledger inconsistency
func Match(executions []execution.Execution) ([]ClosedPair, error) {
	queues := make(map[string][]openLot)
	var resp []ClosedPair
	for i := range executions {
		e := &executions[i]
		if e.Quantity.Abs().LessThan(minQuantity) {
			continue
		}
		if e.Quantity.IsPositive() {
			queues[e.Instrument] = append(queues[e.Instrument], openLot{
				opened:    e.Time,
				price:     e.Price,
				remaining: e.Quantity,
			})
			continue
		}
		closing := e.Quantity.Abs()
		queue := queues[e.Instrument]
		for closing.IsPositive() {
			if len(queue) == 0 {
				return nil, fmt.Errorf("%v %v sell of %v has %v unmatched: %w",
					e.Instrument, common.FormatTime(e.Time), e.Quantity.Abs(), closing, common.ErrLedgerInconsistency)
			}
			front := &queue[0]
			matched := decimal.Min(front.remaining, closing)
			resp = append(resp, newPair(e, front, matched))
			front.remaining = front.remaining.Sub(matched)
			closing = closing.Sub(matched)
			if front.remaining.IsZero() {
				queue = queue[1:]
			}
		}
		queues[e.Instrument] = queue
	}
	sort.SliceStable(resp, func(i, j int) bool {
		return resp[i].Instrument < resp[j].Instrument
	})
	return resp, nil
}

func newPair(e *execution.Execution, l *openLot, quantity decimal.Decimal) ClosedPair {
	holding := e.Time.Sub(l.opened)
	if holding < 0 {
		holding = -holding
	}
	ratio := decimal.Zero
	if !l.price.IsZero() {
		ratio = e.Price.Div(l.price).Sub(decimal.NewFromInt(1))
	}
	return ClosedPair{
		Instrument: e.Instrument,
		Entry:      l.opened,
		Exit:       e.Time,
		EntryPrice: l.price,
		ExitPrice:  e.Price,
		Quantity:   quantity,
		PnLRatio:   ratio,
		PnLMoney:   e.Price.Sub(l.price).Mul(quantity),
		Holding:    holding,
	}
}

// ByInstrument indexes closed pairs by instrument
func ByInstrument(pairs []ClosedPair) map[string][]ClosedPair {
	resp := make(map[string][]ClosedPair)
	for i := range pairs {
		resp[pairs[i].Instrument] = append(resp[pairs[i].Instrument], pairs[i])
	}
	return resp
}

// Summarise returns win rate and averages of a closed pair table
func Summarise(pairs []ClosedPair) Summary {
	s := Summary{
		Pairs:           len(pairs),
		WinRate:         decimal.Zero,
		TotalPnLMoney:   decimal.Zero,
		AveragePnLMoney: decimal.Zero,
		AveragePnLRatio: decimal.Zero,
	}
	if len(pairs) == 0 {
		return s
	}
	ratios := decimal.Zero
	var holding int64
	for i := range pairs {
		switch {
		case pairs[i].PnLMoney.IsPositive():
			s.Wins++
		case pairs[i].PnLMoney.IsNegative():
			s.Losses++
		}
		s.TotalPnLMoney = s.TotalPnLMoney.Add(pairs[i].PnLMoney)
		ratios = ratios.Add(pairs[i].PnLRatio)
		holding += int64(pairs[i].Holding)
	}
	n := decimal.NewFromInt(int64(len(pairs)))
	s.WinRate = decimal.NewFromInt(int64(s.Wins)).Div(n)
	s.AveragePnLMoney = s.TotalPnLMoney.Div(n)
	s.AveragePnLRatio = ratios.Div(n)
	s.AverageHolding = time.Duration(holding / int64(len(pairs)))
	return s
}

// PrintResults outputs the summary to the ledger logger
func (s *Summary) PrintResults() {
	log.Info(log.Ledger, "------------------Closed Trades------------------------------")
	log.Infof(log.Ledger, "Closed pairs: %v", s.Pairs)
	log.Infof(log.Ledger, "Wins: %v Losses: %v", s.Wins, s.Losses)
	log.Infof(log.Ledger, "Win rate: %v%%", s.WinRate.Mul(common.OneHundred).Round(2))
	log.Infof(log.Ledger, "Total PnL: %v", s.TotalPnLMoney.Round(2))
	log.Infof(log.Ledger, "Average PnL: %v (%v%%)", s.AveragePnLMoney.Round(2), s.AveragePnLRatio.Mul(common.OneHundred).Round(2))
	log.Infof(log.Ledger, "Average holding: %v", s.AverageHolding)
}

// Serialise returns the closed pairs as indented JSON
func Serialise(pairs []ClosedPair) (string, error) {
	resp, err := json.MarshalIndent(pairs, "", " ")
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// WriteCSV writes the closed pair table with a header row
func WriteCSV(w io.Writer, pairs []ClosedPair) error {
	if w == nil {
		return common.ErrNilArguments
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "buy_date", "sell_date", "buy_price", "sell_price", "amount", "pnl_ratio", "pnl_money", "hold_time"}); err != nil {
		return err
	}
	for i := range pairs {
		p := &pairs[i]
		if err := cw.Write([]string{
			p.Instrument,
			common.FormatTime(p.Entry),
			common.FormatTime(p.Exit),
			p.EntryPrice.String(),
			p.ExitPrice.String(),
			p.Quantity.String(),
			p.PnLRatio.String(),
			p.PnLMoney.String(),
			p.Holding.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
