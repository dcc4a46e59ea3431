package data

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

// ATRFieldName returns the conventional column name for an ATR period
func ATRFieldName(period int) string {
	return fmt.Sprintf("atr_%d", period)
}

// AnnotateATR computes the average true range per instrument and stores it
// on each row under field. Rows inside the warm-up window are left without
// the field so strategies treat the indicator as unavailable. Rows must be
// sorted and carry high, low and close columns.
func AnnotateATR(rows []Row, period int, field string) error {
	if period <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if field == "" {
		field = ATRFieldName(period)
	}
	byInstrument := make(map[string][]int)
	var order []string
	for i := range rows {
		if _, ok := byInstrument[rows[i].Instrument]; !ok {
			order = append(order, rows[i].Instrument)
		}
		byInstrument[rows[i].Instrument] = append(byInstrument[rows[i].Instrument], i)
	}
	for _, inst := range order {
		idx := byInstrument[inst]
		high := make([]float64, len(idx))
		low := make([]float64, len(idx))
		closes := make([]float64, len(idx))
		for j, rowIdx := range idx {
			var err error
			if high[j], err = floatField(&rows[rowIdx], "high"); err != nil {
				return err
			}
			if low[j], err = floatField(&rows[rowIdx], "low"); err != nil {
				return err
			}
			if closes[j], err = floatField(&rows[rowIdx], DefaultPriceField); err != nil {
				return err
			}
		}
		atr := indicators.ATR(high, low, closes, period)
		for j, rowIdx := range idx {
			if j >= len(atr) || j < period || atr[j] <= 0 {
				continue
			}
			if rows[rowIdx].Fields == nil {
				rows[rowIdx].Fields = make(map[string]decimal.Decimal)
			}
			rows[rowIdx].Fields[field] = decimal.NewFromFloat(atr[j])
		}
	}
	return nil
}

func floatField(r *Row, name string) (float64, error) {
	v, ok := r.Fields[name]
	if !ok {
		return 0, fmt.Errorf("%s at %v %w: %s", r.Instrument, r.Time, ErrMissingColumn, name)
	}
	return v.InexactFloat64(), nil
}
