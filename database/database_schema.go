package database

// decimals are stored as text on sqlite to keep them exact
var schema = map[string][]string{
	DBSQLite3: {
		`CREATE TABLE IF NOT EXISTS execution (
		id text NOT NULL PRIMARY KEY,
		run_id text NOT NULL,
		seq integer NOT NULL,
		executed_at DATETIME NOT NULL,
		instrument text NOT NULL,
		price text NOT NULL,
		quantity text NOT NULL,
		cash_after text NOT NULL,
		commission text NOT NULL,
		tax text NOT NULL,
		value text NOT NULL,
		total text NOT NULL,
		direction text NOT NULL,
		synthetic BOOLEAN NOT NULL,
		inserted_at DATETIME NOT NULL,
		UNIQUE(run_id, seq)
	);`,
		`CREATE TABLE IF NOT EXISTS closed_pair (
		id text NOT NULL PRIMARY KEY,
		run_id text NOT NULL,
		seq integer NOT NULL,
		instrument text NOT NULL,
		entry_at DATETIME NOT NULL,
		exit_at DATETIME NOT NULL,
		entry_price text NOT NULL,
		exit_price text NOT NULL,
		quantity text NOT NULL,
		pnl_ratio text NOT NULL,
		pnl_money text NOT NULL,
		holding_seconds integer NOT NULL,
		inserted_at DATETIME NOT NULL,
		UNIQUE(run_id, seq)
	);`,
	},
	DBPostgreSQL: {
		`CREATE TABLE IF NOT EXISTS execution (
		id uuid PRIMARY KEY NOT NULL,
		run_id uuid NOT NULL,
		seq integer NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL,
		instrument varchar(64) NOT NULL,
		price NUMERIC NOT NULL,
		quantity NUMERIC NOT NULL,
		cash_after NUMERIC NOT NULL,
		commission NUMERIC NOT NULL,
		tax NUMERIC NOT NULL,
		value NUMERIC NOT NULL,
		total NUMERIC NOT NULL,
		direction varchar(16) NOT NULL,
		synthetic boolean NOT NULL,
		inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE(run_id, seq)
	);`,
		`CREATE TABLE IF NOT EXISTS closed_pair (
		id uuid PRIMARY KEY NOT NULL,
		run_id uuid NOT NULL,
		seq integer NOT NULL,
		instrument varchar(64) NOT NULL,
		entry_at TIMESTAMPTZ NOT NULL,
		exit_at TIMESTAMPTZ NOT NULL,
		entry_price NUMERIC NOT NULL,
		exit_price NUMERIC NOT NULL,
		quantity NUMERIC NOT NULL,
		pnl_ratio NUMERIC NOT NULL,
		pnl_money NUMERIC NOT NULL,
		holding_seconds bigint NOT NULL,
		inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE(run_id, seq)
	);`,
	},
}
