package journal

// Schema creates the audit tables. Money columns are TEXT so decimal values
// round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	asset TEXT NOT NULL,
	price TEXT NOT NULL,
	amount TEXT NOT NULL,
	quantity TEXT NOT NULL,
	cash TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS records_time_idx ON records(time);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash TEXT NOT NULL,
	cost_basis TEXT NOT NULL,
	market_value TEXT NOT NULL,
	equity TEXT NOT NULL
);
`
