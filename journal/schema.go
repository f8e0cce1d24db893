// journal/schema.go
package journal

const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	mode TEXT NOT NULL,
	created DATETIME NOT NULL,
	min_days INTEGER NOT NULL,
	max_days INTEGER NOT NULL,
	chains INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	expiry DATETIME NOT NULL,
	rank INTEGER NOT NULL,
	score INTEGER NOT NULL,
	probability REAL NOT NULL,
	annualized REAL NOT NULL,
	hundred_trades INTEGER NOT NULL,
	max_profit REAL NOT NULL,
	max_loss REAL NOT NULL,
	ratio REAL NOT NULL,
	lower_sd REAL NOT NULL,
	upper_sd REAL NOT NULL,
	contracts INTEGER NOT NULL,
	legs TEXT NOT NULL,
	PRIMARY KEY (run_id, expiry, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	mode TEXT NOT NULL,
	created TIMESTAMPTZ NOT NULL,
	min_days INTEGER NOT NULL,
	max_days INTEGER NOT NULL,
	chains INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	expiry TIMESTAMPTZ NOT NULL,
	rank INTEGER NOT NULL,
	score INTEGER NOT NULL,
	probability DOUBLE PRECISION NOT NULL,
	annualized DOUBLE PRECISION NOT NULL,
	hundred_trades INTEGER NOT NULL,
	max_profit DOUBLE PRECISION NOT NULL,
	max_loss DOUBLE PRECISION NOT NULL,
	ratio DOUBLE PRECISION NOT NULL,
	lower_sd DOUBLE PRECISION NOT NULL,
	upper_sd DOUBLE PRECISION NOT NULL,
	contracts INTEGER NOT NULL,
	legs TEXT NOT NULL,
	PRIMARY KEY (run_id, expiry, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created);
`
