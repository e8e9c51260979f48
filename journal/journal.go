// Package journal is the append-only audit log of executed paper trades.
// Every sink preserves append order and never rewrites or deletes a record.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the action an audit record describes.
type Kind string

const (
	Buy        Kind = "BUY"
	SellProfit Kind = "SELL_PROFIT"
	SellLoss   Kind = "SELL_LOSS"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Buy, SellProfit, SellLoss:
		return true
	}
	return false
}

// Record is one executed action. Amount is the USD spent for a BUY and the
// realized P&L for a sell. Cash is the balance after the action.
type Record struct {
	ID       string
	Time     time.Time
	Kind     Kind
	Asset    string
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Quantity decimal.Decimal
	Cash     decimal.Decimal
}

// EquitySnapshot marks the whole account at the end of a vigil cycle.
type EquitySnapshot struct {
	Time        time.Time
	Cash        decimal.Decimal
	CostBasis   decimal.Decimal
	MarketValue decimal.Decimal
	Equity      decimal.Decimal
}

// Journal is an append-only sink for audit records.
type Journal interface {
	Append(Record) error
	Close() error
}

// EquityRecorder is implemented by sinks that also keep an equity curve.
type EquityRecorder interface {
	RecordEquity(EquitySnapshot) error
}
