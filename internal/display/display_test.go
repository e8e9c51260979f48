package display

import (
	"errors"
	"testing"

	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/vigil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestActionLine(t *testing.T) {
	tests := []struct {
		name string
		act  engine.Action
		want []string
	}{
		{
			name: "buy",
			act:  engine.Action{Outcome: engine.Opened, Reason: engine.Accumulate, Asset: "BTC", Price: d("100"), QuantityAdded: d("1"), Cash: d("900")},
			want: []string{"BUY", "BTC", "$100", "+1.000000 units", "cash $900.00"},
		},
		{
			name: "take profit",
			act:  engine.Action{Outcome: engine.Closed, Reason: engine.TakeProfit, Asset: "BTC", Price: d("105"), PnL: d("5"), Cash: d("1005")},
			want: []string{"PROFIT", "pnl +$5.00", "cash $1005.00"},
		},
		{
			name: "stop loss",
			act:  engine.Action{Outcome: engine.Closed, Reason: engine.StopLoss, Asset: "ETH", Price: d("47.5"), PnL: d("-2.5"), Cash: d("997.5")},
			want: []string{"LOSS", "ETH", "pnl -$2.50"},
		},
		{
			name: "price unavailable",
			act:  engine.Action{Reason: engine.PriceUnavailable, Asset: "SOL", Err: errors.New("timeout")},
			want: []string{"HOLD", "SOL", "PriceUnavailable: timeout"},
		},
		{
			name: "risk rejected",
			act:  engine.Action{Reason: engine.RiskRejected, Asset: "BTC", Violations: []risk.Violation{{Code: "VOLATILITY"}}},
			want: []string{"RiskRejected", "[VOLATILITY]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActionLine(tt.act)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestPortfolio(t *testing.T) {
	s := engine.Snapshot{
		Cash:      d("900"),
		CostBasis: d("100"),
		Equity:    d("1010"),
		Holdings: []engine.HoldingView{
			{Symbol: "BTC", Quantity: d("1"), CostBasis: d("100"), AvgEntry: d("100"), Mark: d("110"), MarketValue: d("110"), UnrealizedPL: d("10")},
			{Symbol: "ETH"},
		},
	}
	got := Portfolio(s)
	assert.Contains(t, got, "ASSET")
	assert.Contains(t, got, "1.00000000")
	assert.Contains(t, got, "110.00")
	assert.Contains(t, got, "+$10.00")
	assert.Contains(t, got, "ETH")
	assert.Contains(t, got, "Equity $1010.00")
}

func TestSummaryAndBanner(t *testing.T) {
	got := Summary(vigil.Summary{Cycles: 3, Buys: 4, TakeProfits: 1, StopLosses: 1, Cash: d("852.5"), Equity: d("1002.5")})
	assert.Contains(t, got, "Cycles:       3")
	assert.Contains(t, got, "Final cash:   $852.50")

	got = Banner("vigil", d("100000"), []vigil.Asset{{Symbol: "BTC", BuyAmount: d("100")}})
	assert.Contains(t, got, "VIGIL")
	assert.Contains(t, got, "BTC ($100.00)")
	assert.Contains(t, got, "$100000.00")
}

func TestJournalSummary(t *testing.T) {
	got := JournalSummary(journal.Summary{Records: 2, Buys: 1, TakeProfits: 1, Invested: d("100"), GrossProfit: d("5"), RealizedPL: d("5")})
	assert.Contains(t, got, "Records: 2")
	assert.Contains(t, got, "Realized +$5.00")
	assert.Contains(t, got, "PF n/a")
}
