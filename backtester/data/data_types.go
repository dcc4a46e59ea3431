package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Column names every tape understands
const (
	TimeColumn       = "date"
	InstrumentColumn = "code"
	// DefaultPriceField is the column used to price executions unless
	// configured otherwise
	DefaultPriceField = "close"
)

var (
	// ErrEmptyTape is returned when a tape has no rows
	ErrEmptyTape = errors.New("price tape is empty")
	// ErrMissingColumn is returned when a row lacks a required column
	ErrMissingColumn = errors.New("price tape is missing a required column")
	// ErrUnsortedTape is returned when rows are not in ascending
	// (timestamp, instrument) order
	ErrUnsortedTape = errors.New("price tape is not sorted by timestamp and instrument")
	// ErrDuplicateBar is returned when two rows share timestamp and instrument
	ErrDuplicateBar = errors.New("price tape contains a duplicate bar")
	// ErrInvalidPeriod is returned for non-positive indicator periods
	ErrInvalidPeriod = errors.New("invalid indicator period")

	errUnparsableTime = errors.New("unparsable timestamp")
)

// Row is one raw record of a price tape before validation
type Row struct {
	Time       time.Time
	Instrument string
	Fields     map[string]decimal.Decimal
}

// Bar is a validated row with its execution price resolved
type Bar struct {
	Time       time.Time
	Instrument string
	Price      decimal.Decimal
	Fields     map[string]decimal.Decimal
}

// Tape is an immutable, validated price series ordered by timestamp then
// instrument
type Tape struct {
	bars       []Bar
	priceField string
	lastPrice  map[string]decimal.Decimal
	instrument []string
}

// CSVOptions controls how a CSV file is read into rows
type CSVOptions struct {
	// Encoding of the file, "" or "utf-8" for UTF-8, "gbk" or "gb18030" for
	// exports from CN market data terminals
	Encoding string
	// DefaultInstrument is used when the file has no instrument column
	DefaultInstrument string
	// Location for timestamps without zone information, defaults to UTC
	Location *time.Location
}
