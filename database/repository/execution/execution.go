package execution

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/statistics"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/GuQiangJS/finance-tools-py/database"
	"github.com/GuQiangJS/finance-tools-py/log"
	"github.com/gofrs/uuid"
)

const (
	insertExecution = `INSERT INTO execution (id, run_id, seq, executed_at, instrument, price, quantity,
	cash_after, commission, tax, value, total, direction, synthetic, inserted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectExecutions = `SELECT id, executed_at, instrument, price, quantity, cash_after, commission,
	tax, value, total, direction, synthetic FROM execution WHERE run_id = ? ORDER BY seq`
	insertPair = `INSERT INTO closed_pair (id, run_id, seq, instrument, entry_at, exit_at, entry_price,
	exit_price, quantity, pnl_ratio, pnl_money, holding_seconds, inserted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectPairs = `SELECT instrument, entry_at, exit_at, entry_price, exit_price, quantity, pnl_ratio,
	pnl_money, holding_seconds FROM closed_pair WHERE run_id = ? ORDER BY seq`
)

// NewRunID returns a fresh identifier grouping one run's journal rows
func NewRunID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Insert journals executions for a run in a single transaction, keeping
// their order
func Insert(ctx context.Context, db *database.Instance, runID string, executions ...execution.Execution) error {
	if runID == "" {
		return ErrNoRunID
	}
	now := time.Now().UTC()
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, rebind(db.Dialect(), insertExecution))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range executions {
			e := &executions[i]
			id := e.ID
			if id == "" {
				if id, err = execution.NewID(); err != nil {
					return err
				}
			}
			_, err = stmt.ExecContext(ctx, id, runID, i, e.Time, e.Instrument, e.Price, e.Quantity,
				e.CashAfter, e.Commission, e.Tax, e.Value, e.Total, e.Direction.String(), e.Synthetic, now)
			if err != nil {
				return fmt.Errorf("execution %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf(log.DatabaseMgr, "run %v: %d executions journaled", runID, len(executions))
	return nil
}

// Series returns a run's executions in the order they were journaled
func Series(ctx context.Context, db *database.Instance, runID string) ([]execution.Execution, error) {
	if runID == "" {
		return nil, ErrNoRunID
	}
	conn := db.GetSQL()
	if conn == nil {
		return nil, errNotConnected
	}
	rows, err := conn.QueryContext(ctx, rebind(db.Dialect(), selectExecutions), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []execution.Execution
	for rows.Next() {
		var e execution.Execution
		var direction string
		err = rows.Scan(&e.ID, &e.Time, &e.Instrument, &e.Price, &e.Quantity, &e.CashAfter,
			&e.Commission, &e.Tax, &e.Value, &e.Total, &direction, &e.Synthetic)
		if err != nil {
			return nil, err
		}
		e.Time = e.Time.UTC()
		e.Direction = common.Direction(direction)
		resp = append(resp, e)
	}
	return resp, rows.Err()
}

// InsertPairs journals a run's closed pair table
func InsertPairs(ctx context.Context, db *database.Instance, runID string, pairs ...statistics.ClosedPair) error {
	if runID == "" {
		return ErrNoRunID
	}
	now := time.Now().UTC()
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, rebind(db.Dialect(), insertPair))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i := range pairs {
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			p := &pairs[i]
			_, err = stmt.ExecContext(ctx, id.String(), runID, i, p.Instrument, p.Entry, p.Exit,
				p.EntryPrice, p.ExitPrice, p.Quantity, p.PnLRatio, p.PnLMoney, int64(p.Holding/time.Second), now)
			if err != nil {
				return fmt.Errorf("closed pair %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf(log.DatabaseMgr, "run %v: %d closed pairs journaled", runID, len(pairs))
	return nil
}

// Pairs returns a run's closed pair table
func Pairs(ctx context.Context, db *database.Instance, runID string) ([]statistics.ClosedPair, error) {
	if runID == "" {
		return nil, ErrNoRunID
	}
	conn := db.GetSQL()
	if conn == nil {
		return nil, errNotConnected
	}
	rows, err := conn.QueryContext(ctx, rebind(db.Dialect(), selectPairs), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resp []statistics.ClosedPair
	for rows.Next() {
		var p statistics.ClosedPair
		var seconds int64
		err = rows.Scan(&p.Instrument, &p.Entry, &p.Exit, &p.EntryPrice, &p.ExitPrice, &p.Quantity,
			&p.PnLRatio, &p.PnLMoney, &seconds)
		if err != nil {
			return nil, err
		}
		p.Entry = p.Entry.UTC()
		p.Exit = p.Exit.UTC()
		p.Holding = time.Duration(seconds) * time.Second
		resp = append(resp, p)
	}
	return resp, rows.Err()
}

func inTx(ctx context.Context, db *database.Instance, fn func(*sql.Tx) error) (err error) {
	conn := db.GetSQL()
	if conn == nil {
		return errNotConnected
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginTx %w", err)
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.DatabaseMgr, "journal tx.Rollback %v", errRB)
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders as $n for postgres
func rebind(dialect, query string) string {
	if dialect != database.DBPostgreSQL {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
