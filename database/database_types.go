package database

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/GuQiangJS/finance-tools-py/database/drivers"
)

// Supported database drivers
const (
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// ErrNoDatabaseProvided is returned when a driver is configured without
	// a database name
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrDatabaseDisabled is returned when persistence is requested while the
	// database is disabled in config
	ErrDatabaseDisabled = errors.New("database support disabled")
	// ErrUnsupportedDriver is returned for drivers other than sqlite3 and
	// postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("received nil database config")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Config holds the journal database settings
type Config struct {
	Enabled                   bool   `json:"enabled" mapstructure:"enabled"`
	Verbose                   bool   `json:"verbose" mapstructure:"verbose"`
	Driver                    string `json:"driver" mapstructure:"driver"`
	drivers.ConnectionDetails `json:"connectionDetails" mapstructure:",squash"`
}

// Instance holds a database connection and its config
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	connected bool
	m         sync.RWMutex
}
