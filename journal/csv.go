package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"sync"
	"time"
)

var (
	recordHeader = []string{"id", "time", "kind", "asset", "price", "amount", "quantity", "cash"}
	equityHeader = []string{"time", "cash", "cost_basis", "market_value", "equity"}
)

// CSV appends records (and optionally equity snapshots) to CSV files. The
// header row is only written when a file is empty, so restarting a run keeps
// extending the same files.
type CSV struct {
	mu      sync.Mutex
	records *csv.Writer
	equity  *csv.Writer
	rf, ef  *os.File
}

// NewCSV opens recordsPath and, if non-empty, equityPath for appending.
func NewCSV(recordsPath, equityPath string) (*CSV, error) {
	rf, rw, err := openCSV(recordsPath, recordHeader)
	if err != nil {
		return nil, err
	}

	j := &CSV{records: rw, rf: rf}
	if equityPath == "" {
		return j, nil
	}

	ef, ew, err := openCSV(equityPath, equityHeader)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}
	j.equity, j.ef = ew, ef
	return j, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSV) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.records.Write([]string{
		r.ID,
		r.Time.UTC().Format(time.RFC3339Nano),
		string(r.Kind),
		r.Asset,
		r.Price.String(),
		r.Amount.String(),
		r.Quantity.String(),
		r.Cash.String(),
	})
	if err != nil {
		return err
	}
	j.records.Flush()
	return j.records.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.equity == nil {
		return nil
	}
	err := j.equity.Write([]string{
		e.Time.UTC().Format(time.RFC3339Nano),
		e.Cash.String(),
		e.CostBasis.String(),
		e.MarketValue.String(),
		e.Equity.String(),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.records.Flush()
	errs := []error{j.records.Error(), j.rf.Close()}
	if j.equity != nil {
		j.equity.Flush()
		errs = append(errs, j.equity.Error(), j.ef.Close())
	}
	return errors.Join(errs...)
}

var (
	_ Journal        = (*CSV)(nil)
	_ EquityRecorder = (*CSV)(nil)
)
