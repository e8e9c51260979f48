package risk

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	Volatility decimal.Decimal // range ratio used, zero when not evaluated
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Codes returns the violation codes joined by commas.
func (d Decision) Codes() string {
	codes := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		codes[i] = v.Code
	}
	return strings.Join(codes, ",")
}

// Gate evaluates buy intents against a Policy. It remembers the prices it is
// shown so the volatility breaker can look back over a window.
type Gate struct {
	policy Policy

	mu     sync.Mutex
	prices map[string][]decimal.Decimal
}

// NewGate validates p and returns a Gate.
func NewGate(p Policy) (*Gate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.MaxVolatility.IsPositive() && p.VolatilityWindow == 0 {
		p.VolatilityWindow = DefaultVolatilityWindow
	}
	return &Gate{policy: p, prices: make(map[string][]decimal.Decimal)}, nil
}

func (g *Gate) Policy() Policy { return g.policy }

// Observe records a price for symbol, keeping only the configured window.
func (g *Gate) Observe(symbol string, price decimal.Decimal) {
	if !price.IsPositive() || g.policy.VolatilityWindow < 2 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	w := append(g.prices[symbol], price)
	if n := len(w) - g.policy.VolatilityWindow; n > 0 {
		w = append([]decimal.Decimal(nil), w[n:]...)
	}
	g.prices[symbol] = w
}

// Volatility returns the range ratio (max-min)/mean of the observed window
// and false when fewer than two prices are known.
func (g *Gate) Volatility(symbol string) (decimal.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return rangeRatio(g.prices[symbol])
}

func rangeRatio(w []decimal.Decimal) (decimal.Decimal, bool) {
	if len(w) < 2 {
		return decimal.Zero, false
	}
	lo, hi, sum := w[0], w[0], decimal.Zero
	for _, p := range w {
		lo = decimal.Min(lo, p)
		hi = decimal.Max(hi, p)
		sum = sum.Add(p)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(w))))
	return hi.Sub(lo).Div(mean), true
}

// Evaluate checks a buy intent. All failing checks are reported.
func (g *Gate) Evaluate(in Intent) Decision {
	d := Decision{Allowed: true}
	p := g.policy

	if p.blocked(in.Asset) {
		d.add("BLOCKLISTED", fmt.Sprintf("%s is on the blocklist", in.Asset))
	}

	if p.MaxPositionUSD.IsPositive() {
		after := in.CostBasis.Add(in.Amount)
		if after.GreaterThan(p.MaxPositionUSD) {
			d.add("POSITION_TOO_LARGE",
				fmt.Sprintf("position cost %s would exceed max %s",
					after.StringFixed(2), p.MaxPositionUSD.StringFixed(2)))
		}
	}

	if p.MinCashReserveUSD.IsPositive() {
		left := in.Cash.Sub(in.Amount)
		if left.LessThan(p.MinCashReserveUSD) {
			d.add("CASH_RESERVE",
				fmt.Sprintf("cash after buy %s below reserve %s",
					left.StringFixed(2), p.MinCashReserveUSD.StringFixed(2)))
		}
	}

	if p.MaxVolatility.IsPositive() {
		if vol, ok := g.Volatility(in.Asset); ok {
			d.Volatility = vol
			if vol.GreaterThan(p.MaxVolatility) {
				d.add("VOLATILITY",
					fmt.Sprintf("range ratio %s exceeds max %s",
						vol.StringFixed(4), p.MaxVolatility.String()))
			}
		}
	}

	return d
}
