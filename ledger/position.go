package ledger

import "github.com/shopspring/decimal"

// Position is the holding of a single asset under average-cost accounting.
// Individual buy lots are not tracked; every buy folds into Quantity and
// CostBasis, and every sale liquidates the whole position.
type Position struct {
	Quantity  decimal.Decimal // units held
	CostBasis decimal.Decimal // USD spent acquiring Quantity
}

// Open reports whether the position holds any units.
func (p Position) Open() bool {
	return p.Quantity.IsPositive()
}

// AverageEntryPrice is CostBasis / Quantity. ok is false when the position is
// flat, in which case the average is undefined.
func (p Position) AverageEntryPrice() (avg decimal.Decimal, ok bool) {
	if !p.Open() {
		return decimal.Zero, false
	}
	return p.CostBasis.Div(p.Quantity), true
}

// MarketValue is Quantity marked at price.
func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}

// UnrealizedPL is the P&L that closing the whole position at price would
// realize.
func (p Position) UnrealizedPL(price decimal.Decimal) decimal.Decimal {
	return p.MarketValue(price).Sub(p.CostBasis)
}

// Consistent checks quantity == 0 <=> cost basis == 0 and that neither is
// negative.
func (p Position) Consistent() bool {
	if p.Quantity.IsNegative() || p.CostBasis.IsNegative() {
		return false
	}
	return p.Quantity.IsZero() == p.CostBasis.IsZero()
}
