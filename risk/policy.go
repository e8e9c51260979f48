// Package risk gates accumulation buys. Sells are never routed through it.
package risk

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxVolatility is the range ratio above which buys are refused.
var DefaultMaxVolatility = decimal.RequireFromString("0.75")

const DefaultVolatilityWindow = 20

type Policy struct {
	// Exposure limits, zero disables.
	MaxPositionUSD    decimal.Decimal // cost basis cap per asset after a buy
	MinCashReserveUSD decimal.Decimal // cash that must remain after a buy

	// Volatility breaker over the last VolatilityWindow observed prices.
	MaxVolatility    decimal.Decimal // (max-min)/mean, 0 disables
	VolatilityWindow int

	Blocklist []string // symbols that are never bought
}

// Validate rejects negative limits and a window too small to measure.
func (p Policy) Validate() error {
	if p.MaxPositionUSD.IsNegative() {
		return errors.New("risk: max_position_usd must be >= 0")
	}
	if p.MinCashReserveUSD.IsNegative() {
		return errors.New("risk: min_cash_reserve_usd must be >= 0")
	}
	if p.MaxVolatility.IsNegative() {
		return errors.New("risk: max_volatility must be >= 0")
	}
	if p.MaxVolatility.IsPositive() && p.VolatilityWindow < 2 {
		return errors.New("risk: volatility_window must be >= 2")
	}
	return nil
}

func (p Policy) blocked(symbol string) bool {
	for _, s := range p.Blocklist {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// Intent describes a buy the engine is about to make.
type Intent struct {
	Asset     string
	Amount    decimal.Decimal // USD to spend
	Price     decimal.Decimal
	Cash      decimal.Decimal // before the buy
	CostBasis decimal.Decimal // of the current position, before the buy
}
