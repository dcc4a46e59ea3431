package common

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Direction is the side of an execution
type Direction string

const (
	// Buy opens or adds to a position
	Buy Direction = "BUY"
	// Sell reduces or closes a position
	Sell Direction = "SELL"
	// CouldNotBuy is flagged when a buy signal is raised but the ledger
	// cannot afford the requested amount
	CouldNotBuy Direction = "COULD NOT BUY"
	// CouldNotSell is flagged when a sell signal is raised but there is no
	// holding or the requested amount is zero
	CouldNotSell Direction = "COULD NOT SELL"
)

// SimpleTimeFormat is the date layout used by reports and config files
const SimpleTimeFormat = "2006-01-02"

// DateTimeFormat is used when a bar carries an intraday timestamp
const DateTimeFormat = "2006-01-02 15:04:05"

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrLedgerInconsistency is returned by derived views when the execution
	// history sells more of an instrument than it ever bought
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
	// ErrZeroAmount is returned when a zero quantity reaches a place that
	// requires a trade size
	ErrZeroAmount = errors.New("zero amount received")
)

var (
	// OneHundred is the default board lot for CN equities
	OneHundred = decimal.NewFromInt(100)
	// NegativeOne marks a disabled price level
	NegativeOne = decimal.NewFromInt(-1)
)
