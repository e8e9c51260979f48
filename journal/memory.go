package journal

import "sync"

// Memory keeps records in process. Used by replay runs and tests.
type Memory struct {
	mu      sync.Mutex
	records []Record
	equity  []EquitySnapshot
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Records returns a copy of the appended records.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Equity returns a copy of the recorded snapshots.
func (m *Memory) Equity() []EquitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EquitySnapshot, len(m.equity))
	copy(out, m.equity)
	return out
}

var (
	_ Journal        = (*Memory)(nil)
	_ EquityRecorder = (*Memory)(nil)
)
