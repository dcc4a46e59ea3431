package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var (
	timeAliases       = []string{TimeColumn, "datetime", "timestamp", "time", "trade_date"}
	instrumentAliases = []string{InstrumentColumn, "symbol", "instrument", "ts_code"}
	timeLayouts       = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"20060102",
		time.RFC3339,
	}

	errUnknownEncoding = errors.New("unknown file encoding")
)

// ReadCSVFile loads a CSV file into sorted rows
func ReadCSVFile(path string, opts CSVOptions) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV parses a header-led CSV stream. The timestamp column and the
// instrument column are recognised by common aliases, every other column that
// parses as a number becomes a bar field. Rows are returned sorted.
func ReadCSV(r io.Reader, opts CSVOptions) ([]Row, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTape
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	timeIdx := indexOf(header, timeAliases)
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TimeColumn)
	}
	instIdx := indexOf(header, instrumentAliases)
	if instIdx < 0 && opts.DefaultInstrument == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, InstrumentColumn)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(record[timeIdx], loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := Row{
			Time:       ts,
			Instrument: opts.DefaultInstrument,
			Fields:     make(map[string]decimal.Decimal, len(record)),
		}
		if instIdx >= 0 {
			row.Instrument = strings.TrimSpace(record[instIdx])
		}
		for i := range record {
			if i == timeIdx || i == instIdx {
				continue
			}
			v, err := decimal.NewFromString(strings.TrimSpace(record[i]))
			if err != nil {
				continue
			}
			row.Fields[header[i]] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTape
	}
	SortRows(rows)
	return rows, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "gbk":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case "gb18030":
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownEncoding, encoding)
	}
}

func indexOf(header, aliases []string) int {
	for _, alias := range aliases {
		for i := range header {
			if header[i] == alias {
				return i
			}
		}
	}
	return -1
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errUnparsableTime, s)
}
