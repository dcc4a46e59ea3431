package data

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func row(t time.Time, inst string, price float64) Row {
	return Row{Time: t, Instrument: inst, Fields: map[string]decimal.Decimal{
		DefaultPriceField: decimal.NewFromFloat(price),
	}}
}

func TestNewTape(t *testing.T) {
	t.Parallel()
	_, err := NewTape(nil, "")
	assert.ErrorIs(t, err, ErrEmptyTape)

	_, err = NewTape([]Row{{Time: day(2000, 1, 1), Fields: map[string]decimal.Decimal{}}}, "")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewTape([]Row{row(day(2000, 1, 1), "000001", 1)}, "open")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewTape([]Row{{Instrument: "000001", Fields: map[string]decimal.Decimal{"close": decimal.Zero}}}, "")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewTape([]Row{row(day(2000, 1, 2), "000001", 1), row(day(2000, 1, 1), "000001", 1)}, "")
	assert.ErrorIs(t, err, ErrUnsortedTape)

	_, err = NewTape([]Row{row(day(2000, 1, 1), "000002", 1), row(day(2000, 1, 1), "000001", 1)}, "")
	assert.ErrorIs(t, err, ErrUnsortedTape)

	_, err = NewTape([]Row{row(day(2000, 1, 1), "000001", 1), row(day(2000, 1, 1), "000001", 2)}, "")
	assert.ErrorIs(t, err, ErrDuplicateBar)

	tape, err := NewTape([]Row{
		row(day(1998, 1, 1), "000001", 4.5),
		row(day(1998, 12, 31), "000002", 41.5),
		row(day(1999, 1, 1), "000001", 7.9),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 3, tape.Len())
	assert.Equal(t, DefaultPriceField, tape.PriceField())
	assert.Equal(t, day(1998, 1, 1), tape.Start())
	assert.Equal(t, day(1999, 1, 1), tape.End())
	assert.Equal(t, []string{"000001", "000002"}, tape.Instruments())
	p, ok := tape.LastPrice("000001")
	assert.True(t, ok)
	assert.True(t, p.Equal(decimal.NewFromFloat(7.9)))
	_, ok = tape.LastPrice("600000")
	assert.False(t, ok)
	assert.Equal(t, 24*time.Hour, tape.Interval())
	assert.True(t, tape.Bars()[1].Price.Equal(decimal.NewFromFloat(41.5)))
}

func TestTapeCopiesFields(t *testing.T) {
	t.Parallel()
	rows := []Row{row(day(2000, 1, 1), "000001", 1)}
	tape, err := NewTape(rows, "")
	require.NoError(t, err)
	rows[0].Fields[DefaultPriceField] = decimal.NewFromInt(99)
	v, ok := tape.Bars()[0].Field(DefaultPriceField)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(1)))
}

func TestIntervalSingleTimestamp(t *testing.T) {
	t.Parallel()
	tape, err := NewTape([]Row{row(day(2000, 1, 1), "000001", 1), row(day(2000, 1, 1), "000002", 1)}, "")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, tape.Interval())
}

func TestSortRows(t *testing.T) {
	t.Parallel()
	rows := []Row{
		row(day(2000, 1, 2), "000001", 1),
		row(day(2000, 1, 1), "000002", 1),
		row(day(2000, 1, 1), "000001", 1),
	}
	SortRows(rows)
	assert.Equal(t, "000001", rows[0].Instrument)
	assert.Equal(t, day(2000, 1, 1), rows[1].Time)
	assert.Equal(t, day(2000, 1, 2), rows[2].Time)
	_, err := NewTape(rows, "")
	assert.NoError(t, err)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()
	in := "Date,Code,Name,Close,High\n" +
		"1999-01-01,000001,PAB,7.9,8\n" +
		"1998-01-01,000001,PAB,4.5,5\n"
	rows, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, day(1998, 1, 1), rows[0].Time)
	assert.Equal(t, "000001", rows[0].Instrument)
	assert.True(t, rows[0].Fields["close"].Equal(decimal.NewFromFloat(4.5)))
	_, hasName := rows[0].Fields["name"]
	assert.False(t, hasName)

	_, err = ReadCSV(strings.NewReader("close\n1\n"), CSVOptions{})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(strings.NewReader("date,close\n2000-01-01,1\n"), CSVOptions{})
	assert.ErrorIs(t, err, ErrMissingColumn)

	rows, err = ReadCSV(strings.NewReader("date,close\n20000101,1\n"), CSVOptions{DefaultInstrument: "IDX"})
	require.NoError(t, err)
	assert.Equal(t, "IDX", rows[0].Instrument)

	_, err = ReadCSV(strings.NewReader("date,code,close\nyesterday,1,1\n"), CSVOptions{})
	assert.ErrorIs(t, err, errUnparsableTime)

	_, err = ReadCSV(strings.NewReader(""), CSVOptions{})
	assert.ErrorIs(t, err, ErrEmptyTape)

	_, err = ReadCSV(strings.NewReader(in), CSVOptions{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, errUnknownEncoding)
}

func TestReadCSVGBK(t *testing.T) {
	t.Parallel()
	utf := "日期,代码,名称,close\n2000-01-01,000001,平安银行,6.7\n"
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(strings.Replace(utf, "日期,代码", "date,code", 1))
	require.NoError(t, err)
	assert.NotEqual(t, utf, encoded)

	rows, err := ReadCSV(strings.NewReader(encoded), CSVOptions{Encoding: "gbk"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Fields["close"].Equal(decimal.NewFromFloat(6.7)))
}

func TestAnnotateATR(t *testing.T) {
	t.Parallel()
	err := AnnotateATR(nil, 0, "")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	const period = 3
	var rows []Row
	for i := 0; i < 10; i++ {
		rows = append(rows, Row{
			Time:       day(2000, 1, 1+i),
			Instrument: "000001",
			Fields: map[string]decimal.Decimal{
				"high":  decimal.NewFromInt(11),
				"low":   decimal.NewFromInt(10),
				"close": decimal.NewFromFloat(10.5),
			},
		})
	}
	require.NoError(t, AnnotateATR(rows, period, ""))
	field := ATRFieldName(period)
	for i := 0; i < period; i++ {
		_, ok := rows[i].Fields[field]
		assert.Falsef(t, ok, "row %d should be inside warm-up", i)
	}
	last, ok := rows[len(rows)-1].Fields[field]
	require.True(t, ok)
	assert.InDelta(t, 1.0, last.InexactFloat64(), 1e-9)

	missing := []Row{row(day(2000, 1, 1), "000001", 1)}
	assert.ErrorIs(t, AnnotateATR(missing, period, "atr"), ErrMissingColumn)
}
