package pricing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one row of a replay feed.
type Quote struct {
	Time   time.Time
	Symbol string
	Price  decimal.Decimal
}

// Replay serves a recorded price feed. Each symbol has its own queue and
// every Price call consumes the next entry for that symbol.
type Replay struct {
	mu     sync.Mutex
	queues map[string][]Quote
}

func NewReplay(quotes []Quote) *Replay {
	r := &Replay{queues: make(map[string][]Quote)}
	for _, q := range quotes {
		sym := strings.ToUpper(q.Symbol)
		r.queues[sym] = append(r.queues[sym], q)
	}
	return r
}

// LoadReplay reads a CSV feed with columns time,symbol,price. A header row
// is detected and skipped.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	quotes, err := ReadQuotes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewReplay(quotes), nil
}

// ReadQuotes parses time,symbol,price rows.
func ReadQuotes(rd io.Reader) ([]Quote, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var (
		out  []Quote
		line int
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}
		q, err := parseQuote(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, q)
	}
}

func parseQuote(row []string) (Quote, error) {
	if len(row) < 3 {
		return Quote{}, fmt.Errorf("bad row (need time,symbol,price): %v", row)
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return Quote{}, fmt.Errorf("bad time %q: %w", row[0], err)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return Quote{}, fmt.Errorf("bad price %q: %w", row[2], err)
	}
	return Quote{Time: t, Symbol: strings.TrimSpace(row[1]), Price: p}, nil
}

func (r *Replay) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sym := strings.ToUpper(symbol)
	q := r.queues[sym]
	if len(q) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrExhausted, symbol)
	}
	r.queues[sym] = q[1:]
	return q[0].Price, nil
}

// Remaining returns how many prices are left for symbol.
func (r *Replay) Remaining(symbol string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues[strings.ToUpper(symbol)])
}

// Exhausted reports whether every symbol has run out of prices.
func (r *Replay) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.queues {
		if len(q) > 0 {
			return false
		}
	}
	return true
}

// ExhaustedFor reports whether every one of symbols has run out of prices.
// Symbols in the feed that are not listed are ignored.
func (r *Replay) ExhaustedFor(symbols ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sym := range symbols {
		if len(r.queues[strings.ToUpper(sym)]) > 0 {
			return false
		}
	}
	return true
}
