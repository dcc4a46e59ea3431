package execution

import "errors"

var (
	// ErrNoRunID is returned when a journal write or read is missing its run
	ErrNoRunID = errors.New("run id not set")

	errNotConnected = errors.New("database not connected")
)
