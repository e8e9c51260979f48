package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TextTimeLayout is the timestamp layout of a Text journal line.
const TextTimeLayout = "2006-01-02 15:04:05"

// Text writes one human readable line per record to a flat file opened in
// append mode.
type Text struct {
	mu sync.Mutex
	f  *os.File
}

// NewText opens (or creates) path for appending.
func NewText(path string) (*Text, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Text{f: f}, nil
}

func (j *Text) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := fmt.Fprintln(j.f, FormatLine(r))
	return err
}

func (j *Text) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

// FormatLine renders r the way the Text journal stores it, e.g.
//
//	[2024-01-02 03:04:05] SELL_PROFIT | BTC | price $105.00 | pnl +$5.00 | qty 1.000000 | cash $1005.00 | 01HQ...
func FormatLine(r Record) string {
	amount := fmt.Sprintf("invested $%s", r.Amount.StringFixed(2))
	if r.Kind != Buy {
		sign := "+"
		if r.Amount.IsNegative() {
			sign = "-"
		}
		amount = fmt.Sprintf("pnl %s$%s", sign, r.Amount.Abs().StringFixed(2))
	}

	return fmt.Sprintf("[%s] %s | %s | price $%s | %s | qty %s | cash $%s | %s",
		r.Time.UTC().Format(TextTimeLayout),
		r.Kind,
		r.Asset,
		r.Price.String(),
		amount,
		r.Quantity.StringFixed(6),
		r.Cash.StringFixed(2),
		r.ID,
	)
}

var _ Journal = (*Text)(nil)
