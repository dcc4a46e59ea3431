package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GuQiangJS/finance-tools-py/backtester/config"
	"github.com/GuQiangJS/finance-tools-py/backtester/engine"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/statistics"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/strategies"
	"github.com/GuQiangJS/finance-tools-py/database"
	"github.com/GuQiangJS/finance-tools-py/database/drivers/postgres"
	sqlite "github.com/GuQiangJS/finance-tools-py/database/drivers/sqlite3"
	journal "github.com/GuQiangJS/finance-tools-py/database/repository/execution"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/urfave/cli/v2"
)

const allLevels = "INFO|DEBUG|WARN|ERROR"

var (
	configPath string
	verbose    bool

	errUnknownFormat = errors.New("unknown output format")
	errNoRunID       = errors.New("run id argument required")
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "replay the configured price file and print the report",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "journal",
			Usage: "write executions and closed pairs to the configured database",
		},
	},
	Action: runLedger,
}

var pnlCommand = &cli.Command{
	Name:  "pnl",
	Usage: "print the closed trades matched first in first out",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "csv",
			Usage: "csv or json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write to a file instead of stdout",
		},
	},
	Action: profitLoss,
}

var journalCommand = &cli.Command{
	Name:      "journal",
	Usage:     "print a journaled run",
	ArgsUsage: "<run id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "pairs",
			Usage: "print the closed pairs instead of the executions",
		},
	},
	Action: showJournal,
}

var strategiesCommand = &cli.Command{
	Name:   "strategies",
	Usage:  "list the built-in strategies",
	Action: listStrategies,
}

func loadConfig() (*config.RunConfig, error) {
	rc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if len(rc.Logging) > 0 {
		if err = log.SetupSubLoggers(rc.Logging); err != nil {
			return nil, err
		}
	}
	if verbose {
		rc.Run.Verbose = true
	}
	if rc.Run.Verbose {
		log.Ledger.SetLevels(allLevels)
		log.Strategy.SetLevels(allLevels)
	}
	if rc.Database.Verbose {
		log.DatabaseMgr.SetLevels(allLevels)
	}
	return rc, nil
}

func calculate(rc *config.RunConfig) (*engine.Engine, error) {
	rows, err := rc.Rows()
	if err != nil {
		return nil, err
	}
	cfg, err := rc.EngineConfig()
	if err != nil {
		return nil, err
	}
	e, err := engine.NewFromRows(rows, cfg)
	if err != nil {
		return nil, err
	}
	return e, e.CalcTradeHistory(rc.CalcOptions())
}

func connect(ctx context.Context, cfg *database.Config) (*database.Instance, error) {
	if !cfg.Enabled {
		return nil, database.ErrDatabaseDisabled
	}
	var db *database.Instance
	var err error
	switch cfg.Driver {
	case database.DBSQLite3:
		dir := "."
		if configPath != "" {
			dir = filepath.Dir(configPath)
		}
		db, err = sqlite.Connect(cfg, dir)
	case database.DBPostgreSQL:
		db, err = postgres.Connect(cfg)
	default:
		err = fmt.Errorf("%w %q", database.ErrUnsupportedDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(ctx); err != nil {
		return nil, errors.Join(err, db.CloseConnection())
	}
	return db, nil
}

func runLedger(c *cli.Context) error {
	rc, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := calculate(rc)
	if err != nil {
		return err
	}
	out, err := e.Report(rc.ReportOptions())
	if err != nil {
		return err
	}
	fmt.Print(out)
	if !c.Bool("journal") {
		return nil
	}
	pairs, err := e.ProfitLoss()
	if err != nil {
		return err
	}
	db, err := connect(c.Context, &rc.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.CloseConnection(); err != nil {
			log.Errorf(log.DatabaseMgr, "closing journal: %v", err)
		}
	}()
	runID, err := journal.NewRunID()
	if err != nil {
		return err
	}
	if err = journal.Insert(c.Context, db, runID, e.History()...); err != nil {
		return err
	}
	if err = journal.InsertPairs(c.Context, db, runID, pairs...); err != nil {
		return err
	}
	log.Infof(log.DatabaseMgr, "journaled run %v", runID)
	fmt.Printf("run id: %v\n", runID)
	return nil
}

func profitLoss(c *cli.Context) error {
	rc, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := calculate(rc)
	if err != nil {
		return err
	}
	pairs, err := e.ProfitLoss()
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch c.String("format") {
	case "csv":
		err = statistics.WriteCSV(w, pairs)
	case "json":
		var s string
		if s, err = statistics.Serialise(pairs); err == nil {
			_, err = fmt.Fprintln(w, s)
		}
	default:
		err = fmt.Errorf("%w %q", errUnknownFormat, c.String("format"))
	}
	if err != nil {
		return err
	}
	summary := statistics.Summarise(pairs)
	summary.PrintResults()
	return nil
}

func showJournal(c *cli.Context) error {
	runID := c.Args().First()
	if runID == "" {
		return errNoRunID
	}
	rc, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := connect(c.Context, &rc.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.CloseConnection(); err != nil {
			log.Errorf(log.DatabaseMgr, "closing journal: %v", err)
		}
	}()
	if c.Bool("pairs") {
		pairs, err := journal.Pairs(c.Context, db, runID)
		if err != nil {
			return err
		}
		s, err := statistics.Serialise(pairs)
		if err != nil {
			return err
		}
		fmt.Println(s)
		return nil
	}
	executions, err := journal.Series(c.Context, db, runID)
	if err != nil {
		return err
	}
	j, err := json.MarshalIndent(executions, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(j))
	return nil
}

func listStrategies(_ *cli.Context) error {
	for _, s := range strategies.GetStrategies() {
		fmt.Printf("%v\n\t%v\n", s.Name(), s.Description())
	}
	return nil
}
