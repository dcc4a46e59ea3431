package execution

import (
	"context"
	"testing"
	"time"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventhandlers/statistics"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/GuQiangJS/finance-tools-py/database"
	sqlite "github.com/GuQiangJS/finance-tools-py/database/drivers/sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *database.Instance {
	t.Helper()
	db, err := sqlite.Connect(&database.Config{
		Enabled: true,
		Driver:  database.DBSQLite3,
	}, "")
	assert.ErrorIs(t, err, database.ErrNoDatabaseProvided)
	require.Nil(t, db)

	cfg := &database.Config{Enabled: true, Driver: database.DBSQLite3}
	cfg.Database = "journal.db"
	db, err = sqlite.Connect(cfg, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.CloseConnection())
	})
	require.NoError(t, db.Migrate(context.Background()))
	// migrations are repeatable
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestInsertAndSeries(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	executions := []execution.Execution{
		{
			Time:       d1.AddDate(0, 0, -1),
			Instrument: "000001",
			Price:      decimal.NewFromInt(4),
			Quantity:   decimal.NewFromInt(200),
			CashAfter:  decimal.NewFromInt(1000),
			Value:      decimal.NewFromInt(800),
			Total:      decimal.NewFromInt(800),
			Direction:  common.Buy,
			Synthetic:  true,
		},
		{
			ID:         "5b1e8f5c-4b0a-4c1f-9b8c-000000000001",
			Time:       d1,
			Instrument: "000001",
			Price:      decimal.NewFromFloat(7.9),
			Quantity:   decimal.NewFromInt(-100),
			CashAfter:  decimal.NewFromFloat(1784.21),
			Commission: decimal.NewFromInt(5),
			Tax:        decimal.NewFromFloat(0.79),
			Value:      decimal.NewFromInt(790),
			Total:      decimal.NewFromFloat(784.21),
			Direction:  common.Sell,
		},
	}

	err := Insert(ctx, db, "", executions...)
	assert.ErrorIs(t, err, ErrNoRunID)

	run, err := NewRunID()
	require.NoError(t, err)
	require.NoError(t, Insert(ctx, db, run, executions...))

	other, err := NewRunID()
	require.NoError(t, err)
	got, err := Series(ctx, db, other)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Series(ctx, db, run)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, executions[1].ID, got[1].ID)
	assert.True(t, got[0].Synthetic)
	assert.False(t, got[1].Synthetic)
	assert.Equal(t, common.Sell, got[1].Direction)
	assert.True(t, got[1].Time.Equal(d1))
	assert.True(t, got[1].Price.Equal(executions[1].Price))
	assert.True(t, got[1].Quantity.Equal(executions[1].Quantity))
	assert.True(t, got[1].CashAfter.Equal(executions[1].CashAfter))
	assert.True(t, got[1].Tax.Equal(executions[1].Tax))
	assert.True(t, got[1].Total.Equal(executions[1].Total))

	// a repeated run id collides on its sequence numbers
	assert.Error(t, Insert(ctx, db, run, executions[1]))
}

func TestInsertPairs(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	ctx := context.Background()
	entry := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	pairs := []statistics.ClosedPair{{
		Instrument: "000001",
		Entry:      entry,
		Exit:       entry.Add(48 * time.Hour),
		EntryPrice: decimal.NewFromFloat(4.5),
		ExitPrice:  decimal.NewFromFloat(7.9),
		Quantity:   decimal.NewFromInt(100),
		PnLRatio:   decimal.RequireFromString("0.7555555555555556"),
		PnLMoney:   decimal.NewFromInt(340),
		Holding:    48 * time.Hour,
	}}
	run, err := NewRunID()
	require.NoError(t, err)
	require.NoError(t, InsertPairs(ctx, db, run, pairs...))

	got, err := Pairs(ctx, db, run)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "000001", got[0].Instrument)
	assert.True(t, got[0].Exit.Equal(pairs[0].Exit))
	assert.True(t, got[0].PnLRatio.Equal(pairs[0].PnLRatio))
	assert.True(t, got[0].PnLMoney.Equal(pairs[0].PnLMoney))
	assert.Equal(t, 48*time.Hour, got[0].Holding)

	_, err = Pairs(ctx, db, "")
	assert.ErrorIs(t, err, ErrNoRunID)
}

func TestNotConnected(t *testing.T) {
	t.Parallel()
	db, err := database.NewInstance(&database.Config{Driver: database.DBSQLite3})
	require.NoError(t, err)
	assert.ErrorIs(t, Insert(context.Background(), db, "run", execution.Execution{}), errNotConnected)
	_, err = Series(context.Background(), db, "run")
	assert.ErrorIs(t, err, errNotConnected)
}

func TestRebind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a = ? AND b = ?", rebind(database.DBSQLite3, "a = ? AND b = ?"))
	assert.Equal(t, "a = $1 AND b = $2", rebind(database.DBPostgreSQL, "a = ? AND b = ?"))
}
