package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func codes(dec Decision) []string {
	var out []string
	for _, v := range dec.Violations {
		out = append(out, v.Code)
	}
	return out
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"zero value", Policy{}, false},
		{"negative position cap", Policy{MaxPositionUSD: d("-1")}, true},
		{"negative reserve", Policy{MinCashReserveUSD: d("-1")}, true},
		{"negative volatility", Policy{MaxVolatility: d("-0.1")}, true},
		{"window too small", Policy{MaxVolatility: d("0.5"), VolatilityWindow: 1}, true},
		{"window defaulted", Policy{MaxVolatility: d("0.5")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGate(tt.policy)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGateEvaluate(t *testing.T) {
	t.Parallel()

	base := Intent{Asset: "BTC", Amount: d("100"), Price: d("100"), Cash: d("1000"), CostBasis: d("0")}

	tests := []struct {
		name   string
		policy Policy
		intent func(Intent) Intent
		want   []string
	}{
		{
			name:   "unlimited policy allows",
			policy: Policy{},
		},
		{
			name:   "blocklisted",
			policy: Policy{Blocklist: []string{"btc"}},
			want:   []string{"BLOCKLISTED"},
		},
		{
			name:   "position cap reached exactly is allowed",
			policy: Policy{MaxPositionUSD: d("300")},
			intent: func(in Intent) Intent { in.CostBasis = d("200"); return in },
		},
		{
			name:   "position cap exceeded",
			policy: Policy{MaxPositionUSD: d("250")},
			intent: func(in Intent) Intent { in.CostBasis = d("200"); return in },
			want:   []string{"POSITION_TOO_LARGE"},
		},
		{
			name:   "cash reserve",
			policy: Policy{MinCashReserveUSD: d("950")},
			want:   []string{"CASH_RESERVE"},
		},
		{
			name:   "all failures reported",
			policy: Policy{Blocklist: []string{"BTC"}, MinCashReserveUSD: d("950"), MaxPositionUSD: d("50")},
			want:   []string{"BLOCKLISTED", "POSITION_TOO_LARGE", "CASH_RESERVE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(tt.policy)
			require.NoError(t, err)

			in := base
			if tt.intent != nil {
				in = tt.intent(in)
			}
			dec := g.Evaluate(in)
			assert.Equal(t, tt.want, codes(dec))
			assert.Equal(t, len(tt.want) == 0, dec.Allowed)
		})
	}
}

func TestGateVolatility(t *testing.T) {
	t.Parallel()

	g, err := NewGate(Policy{MaxVolatility: d("0.75"), VolatilityWindow: 3})
	require.NoError(t, err)

	in := Intent{Asset: "ETH", Amount: d("50"), Price: d("50"), Cash: d("1000")}

	// Not enough history yet.
	g.Observe("ETH", d("50"))
	dec := g.Evaluate(in)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.Volatility.IsZero())

	// 50 -> 100: range 50 over mean 75 = 0.6667
	g.Observe("ETH", d("100"))
	dec = g.Evaluate(in)
	assert.True(t, dec.Allowed)
	assert.Equal(t, "0.6667", dec.Volatility.StringFixed(4))

	// 50, 100, 10: range 90 over mean 53.33 = 1.6875
	g.Observe("ETH", d("10"))
	dec = g.Evaluate(in)
	assert.False(t, dec.Allowed)
	assert.Equal(t, "VOLATILITY", dec.Codes())

	// Window slides: 100, 10, 10 still volatile; after more calm prices it clears.
	for i := 0; i < 3; i++ {
		g.Observe("ETH", d("10"))
	}
	dec = g.Evaluate(in)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.Volatility.IsZero())

	// Other symbols are tracked separately.
	_, ok := g.Volatility("BTC")
	assert.False(t, ok)
}

func TestGateIgnoresNonPositivePrices(t *testing.T) {
	t.Parallel()

	g, err := NewGate(Policy{MaxVolatility: d("0.1"), VolatilityWindow: 2})
	require.NoError(t, err)

	g.Observe("BTC", d("0"))
	g.Observe("BTC", d("-5"))
	_, ok := g.Volatility("BTC")
	assert.False(t, ok)
}
