package data

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewTape validates rows and resolves priceField as the execution price.
// Rows must already be ordered by (timestamp, instrument).
func NewTape(rows []Row, priceField string) (*Tape, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTape
	}
	if priceField == "" {
		priceField = DefaultPriceField
	}
	t := &Tape{
		bars:       make([]Bar, len(rows)),
		priceField: priceField,
		lastPrice:  make(map[string]decimal.Decimal),
	}
	for i := range rows {
		if rows[i].Time.IsZero() {
			return nil, fmt.Errorf("row %d %w: %s", i, ErrMissingColumn, TimeColumn)
		}
		if rows[i].Instrument == "" {
			return nil, fmt.Errorf("row %d %w: %s", i, ErrMissingColumn, InstrumentColumn)
		}
		price, ok := rows[i].Fields[priceField]
		if !ok {
			return nil, fmt.Errorf("row %d %w: %s", i, ErrMissingColumn, priceField)
		}
		if i > 0 {
			switch compareRows(&rows[i-1], &rows[i]) {
			case 0:
				return nil, fmt.Errorf("%w: %s at %v", ErrDuplicateBar, rows[i].Instrument, rows[i].Time)
			case 1:
				return nil, fmt.Errorf("%w: row %d", ErrUnsortedTape, i)
			}
		}
		fields := make(map[string]decimal.Decimal, len(rows[i].Fields))
		for k, v := range rows[i].Fields {
			fields[k] = v
		}
		t.bars[i] = Bar{
			Time:       rows[i].Time,
			Instrument: rows[i].Instrument,
			Price:      price,
			Fields:     fields,
		}
		if _, seen := t.lastPrice[rows[i].Instrument]; !seen {
			t.instrument = append(t.instrument, rows[i].Instrument)
		}
		t.lastPrice[rows[i].Instrument] = price
	}
	sort.Strings(t.instrument)
	return t, nil
}

// SortRows orders rows by timestamp then instrument, for data sources that
// do not guarantee ordering
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareRows(&rows[i], &rows[j]) < 0
	})
}

func compareRows(a, b *Row) int {
	switch {
	case a.Time.Before(b.Time):
		return -1
	case a.Time.After(b.Time):
		return 1
	}
	return strings.Compare(a.Instrument, b.Instrument)
}

// Bars returns the bars in scan order. The slice must not be modified.
func (t *Tape) Bars() []Bar {
	return t.bars
}

// Len returns the number of bars
func (t *Tape) Len() int {
	return len(t.bars)
}

// PriceField returns the column used as execution price
func (t *Tape) PriceField() string {
	return t.priceField
}

// Start returns the first timestamp
func (t *Tape) Start() time.Time {
	return t.bars[0].Time
}

// End returns the last timestamp
func (t *Tape) End() time.Time {
	return t.bars[len(t.bars)-1].Time
}

// Instruments returns every instrument on the tape, sorted
func (t *Tape) Instruments() []string {
	resp := make([]string, len(t.instrument))
	copy(resp, t.instrument)
	return resp
}

// LastPrice returns the latest known price of an instrument
func (t *Tape) LastPrice(instrument string) (decimal.Decimal, bool) {
	p, ok := t.lastPrice[instrument]
	return p, ok
}

// Interval returns the smallest gap between two distinct timestamps, or one
// day when the tape only has a single timestamp
func (t *Tape) Interval() time.Duration {
	var resp time.Duration
	for i := 1; i < len(t.bars); i++ {
		gap := t.bars[i].Time.Sub(t.bars[i-1].Time)
		if gap <= 0 {
			continue
		}
		if resp == 0 || gap < resp {
			resp = gap
		}
	}
	if resp == 0 {
		return 24 * time.Hour
	}
	return resp
}

// Field returns a named numeric column of the bar
func (b *Bar) Field(name string) (decimal.Decimal, bool) {
	if b == nil || b.Fields == nil {
		return decimal.Zero, false
	}
	v, ok := b.Fields[name]
	return v, ok
}
