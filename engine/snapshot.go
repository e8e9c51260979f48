package engine

import (
	"time"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/shopspring/decimal"
)

// HoldingView is one asset in a Snapshot. Mark is the last observed price,
// zero when none has been seen; unmarked positions are valued at cost.
type HoldingView struct {
	Symbol       string
	Quantity     decimal.Decimal
	CostBasis    decimal.Decimal
	AvgEntry     decimal.Decimal
	Mark         decimal.Decimal
	MarketValue  decimal.Decimal
	UnrealizedPL decimal.Decimal
}

type Snapshot struct {
	Time        time.Time
	Cash        decimal.Decimal
	Holdings    []HoldingView
	CostBasis   decimal.Decimal
	MarketValue decimal.Decimal
	Equity      decimal.Decimal
}

// Snapshot returns a consistent copy of the ledger valued at the last marks.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.ledger.Snapshot()
	s := Snapshot{
		Time:        e.now(),
		Cash:        ls.Cash,
		CostBasis:   ls.CostBasis(),
		MarketValue: ls.MarketValue(e.marks),
		Equity:      ls.Equity(e.marks),
	}
	for _, h := range ls.Holdings {
		v := HoldingView{
			Symbol:    h.Symbol,
			Quantity:  h.Position.Quantity,
			CostBasis: h.Position.CostBasis,
			Mark:      e.marks[h.Symbol],
		}
		v.AvgEntry, _ = h.Position.AverageEntryPrice()
		if v.Mark.IsPositive() {
			v.MarketValue = h.Position.MarketValue(v.Mark)
		} else {
			v.MarketValue = h.Position.CostBasis
		}
		v.UnrealizedPL = v.MarketValue.Sub(h.Position.CostBasis)
		s.Holdings = append(s.Holdings, v)
	}
	return s
}

// EquitySnapshot converts s to the journal's equity row.
func (s Snapshot) EquitySnapshot() journal.EquitySnapshot {
	return journal.EquitySnapshot{
		Time:        s.Time,
		Cash:        s.Cash,
		CostBasis:   s.CostBasis,
		MarketValue: s.MarketValue,
		Equity:      s.Equity,
	}
}
