package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record id is not in the journal.
var ErrNotFound = errors.New("journal: record not found")

const recordColumns = `id, time, kind, asset, price, amount, quantity, cash`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec  Record
		kind string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Time,
		&kind,
		&rec.Asset,
		&rec.Price,
		&rec.Amount,
		&rec.Quantity,
		&rec.Cash,
	)
	rec.Kind = Kind(kind)
	return rec, err
}

func (j *SQLite) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord returns a single record by id.
func (j *SQLite) GetRecord(id string) (Record, error) {
	row := j.db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return Record{}, err
	}
	return rec, nil
}

// ListBetween returns records whose time is within [start, end), oldest first.
func (j *SQLite) ListBetween(start, end time.Time) ([]Record, error) {
	return j.queryRecords(`
		SELECT `+recordColumns+`
		FROM records
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
}

// Last returns the n most recent records, oldest first.
func (j *SQLite) Last(n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	recs, err := j.queryRecords(`
		SELECT `+recordColumns+`
		FROM records
		ORDER BY time DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(recs)-1; i < k; i, k = i+1, k-1 {
		recs[i], recs[k] = recs[k], recs[i]
	}
	return recs, nil
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, cost_basis, market_value, equity
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Cash, &e.CostBasis, &e.MarketValue, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary aggregates a set of records.
type Summary struct {
	Records      int
	Buys         int
	TakeProfits  int
	StopLosses   int
	Invested     decimal.Decimal
	GrossProfit  decimal.Decimal
	GrossLoss    decimal.Decimal
	RealizedPL   decimal.Decimal
	ProfitFactor decimal.Decimal // zero when there are no losses
}

// Summarize folds recs into a Summary.
func Summarize(recs []Record) Summary {
	var s Summary
	for _, r := range recs {
		s.Records++
		switch r.Kind {
		case Buy:
			s.Buys++
			s.Invested = s.Invested.Add(r.Amount)
			continue
		case SellProfit:
			s.TakeProfits++
		case SellLoss:
			s.StopLosses++
		}
		if r.Amount.IsPositive() {
			s.GrossProfit = s.GrossProfit.Add(r.Amount)
		} else {
			s.GrossLoss = s.GrossLoss.Add(r.Amount.Abs())
		}
		s.RealizedPL = s.RealizedPL.Add(r.Amount)
	}
	if s.GrossLoss.IsPositive() {
		s.ProfitFactor = s.GrossProfit.DivRound(s.GrossLoss, 4)
	}
	return s
}

// Summary summarizes the records within [start, end).
func (j *SQLite) Summary(start, end time.Time) (Summary, error) {
	recs, err := j.ListBetween(start, end)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(recs), nil
}
