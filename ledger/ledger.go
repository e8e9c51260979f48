// Package ledger holds the paper account: a USD cash balance and one
// Position per tracked asset. The ledger is not safe for concurrent use; the
// engine serialises access to it.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownAsset     = errors.New("asset not in tracked universe")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrInvalidPrice     = errors.New("price must be positive")
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrNoPosition       = errors.New("no open position")
	ErrEmptyUniverse    = errors.New("tracked universe is empty")
	ErrNegativeCash     = errors.New("initial cash must not be negative")
	ErrDuplicateAsset   = errors.New("duplicate asset in universe")
	ErrQuantityTooSmall = errors.New("amount buys no units at this price")
)

// Ledger is the cash balance plus the positions of a fixed asset universe.
type Ledger struct {
	cash      decimal.Decimal
	positions map[string]*Position
	symbols   []string
}

// New creates a ledger with the given starting cash and an empty position
// for every symbol. The universe cannot change afterwards.
func New(cash decimal.Decimal, symbols []string) (*Ledger, error) {
	if cash.IsNegative() {
		return nil, ErrNegativeCash
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyUniverse
	}

	l := &Ledger{
		cash:      cash,
		positions: make(map[string]*Position, len(symbols)),
		symbols:   make([]string, 0, len(symbols)),
	}
	for _, s := range symbols {
		if _, dup := l.positions[s]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAsset, s)
		}
		l.positions[s] = &Position{}
		l.symbols = append(l.symbols, s)
	}
	return l, nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	return l.cash
}

// Symbols returns the universe in construction order.
func (l *Ledger) Symbols() []string {
	out := make([]string, len(l.symbols))
	copy(out, l.symbols)
	return out
}

// Tracks reports whether symbol belongs to the universe.
func (l *Ledger) Tracks(symbol string) bool {
	_, ok := l.positions[symbol]
	return ok
}

// Position returns a copy of the position for symbol.
func (l *Ledger) Position(symbol string) (Position, error) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	return *p, nil
}

// Buy spends amount USD on symbol at price and returns the units added.
// Nothing changes when an error is returned.
func (l *Ledger) Buy(symbol string, amount, price decimal.Decimal) (decimal.Decimal, error) {
	p, ok := l.positions[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.GreaterThan(l.cash) {
		return decimal.Zero, ErrInsufficientCash
	}

	qty := Quantity(amount, price)
	if qty.IsZero() && amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s at %s", ErrQuantityTooSmall, amount, price)
	}
	l.cash = l.cash.Sub(amount)
	p.Quantity = p.Quantity.Add(qty)
	p.CostBasis = p.CostBasis.Add(amount)
	return qty, nil
}

// Quantity is the number of units amount USD buys at price.
func Quantity(amount, price decimal.Decimal) decimal.Decimal {
	return amount.Div(price)
}

// Close liquidates the whole position in symbol at price, credits the
// proceeds to cash and resets the position. It returns the proceeds and the
// realized P&L.
func (l *Ledger) Close(symbol string, price decimal.Decimal) (proceeds, pnl decimal.Decimal, err error) {
	p, ok := l.positions[symbol]
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	if !price.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidPrice
	}
	if !p.Open() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s", ErrNoPosition, symbol)
	}

	proceeds = p.MarketValue(price)
	pnl = proceeds.Sub(p.CostBasis)

	l.cash = l.cash.Add(proceeds)
	*p = Position{}
	return proceeds, pnl, nil
}

// Holding is one row of a Snapshot.
type Holding struct {
	Symbol   string
	Position Position
}

// Snapshot is a point-in-time copy of the ledger.
type Snapshot struct {
	Cash     decimal.Decimal
	Holdings []Holding
}

// Snapshot copies the ledger state. Holdings follow the universe order.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{Cash: l.cash, Holdings: make([]Holding, 0, len(l.symbols))}
	for _, sym := range l.symbols {
		s.Holdings = append(s.Holdings, Holding{Symbol: sym, Position: *l.positions[sym]})
	}
	return s
}

// CostBasis sums the cost basis of all open positions.
func (s Snapshot) CostBasis() decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.Holdings {
		total = total.Add(h.Position.CostBasis)
	}
	return total
}

// MarketValue marks every open position at marks[symbol]. Positions without a
// mark are valued at cost.
func (s Snapshot) MarketValue(marks map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, h := range s.Holdings {
		if !h.Position.Open() {
			continue
		}
		if px, ok := marks[h.Symbol]; ok && px.IsPositive() {
			total = total.Add(h.Position.MarketValue(px))
		} else {
			total = total.Add(h.Position.CostBasis)
		}
	}
	return total
}

// Equity is cash plus MarketValue(marks).
func (s Snapshot) Equity(marks map[string]decimal.Decimal) decimal.Decimal {
	return s.Cash.Add(s.MarketValue(marks))
}

// OpenSymbols lists symbols with an open position, sorted.
func (s Snapshot) OpenSymbols() []string {
	var out []string
	for _, h := range s.Holdings {
		if h.Position.Open() {
			out = append(out, h.Symbol)
		}
	}
	sort.Strings(out)
	return out
}
