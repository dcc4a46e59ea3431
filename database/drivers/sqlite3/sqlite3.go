package sqlite

import (
	"database/sql"
	"path/filepath"

	"github.com/GuQiangJS/finance-tools-py/database"
	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a connection to the sqlite database file named in cfg,
// relative to dataPath
func Connect(cfg *database.Config, dataPath string) (*database.Instance, error) {
	if cfg == nil || cfg.Database == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	i, err := database.NewInstance(cfg)
	if err != nil {
		return nil, err
	}
	i.DataPath = dataPath
	dbConn, err := sql.Open(database.DBSQLite3, filepath.Join(dataPath, cfg.Database))
	if err != nil {
		return nil, err
	}
	i.SetSQLiteConnection(dbConn)
	i.SetConnected(true)
	return i, nil
}
