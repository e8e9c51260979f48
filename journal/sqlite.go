package journal

import (
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores records and equity snapshots in a SQLite database and
// supports the queries behind the journal CLI.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps inserts in program order.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO records
		(id, time, kind, asset, price, amount, quantity, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Time.UTC(), string(r.Kind), r.Asset,
		r.Price, r.Amount, r.Quantity, r.Cash,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, cost_basis, market_value, equity)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Cash, e.CostBasis, e.MarketValue, e.Equity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

var (
	_ Journal        = (*SQLite)(nil)
	_ EquityRecorder = (*SQLite)(nil)
)
