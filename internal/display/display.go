// Package display renders engine state for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/vigil"
	"github.com/shopspring/decimal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	profitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Banner is printed when a run starts.
func Banner(mode string, cash decimal.Decimal, assets []vigil.Asset) string {
	syms := make([]string, len(assets))
	for i, a := range assets {
		syms[i] = fmt.Sprintf("%s ($%s)", a.Symbol, a.BuyAmount.StringFixed(2))
	}
	body := strings.Join([]string{
		titleStyle.Render("PAPERTRADER · " + strings.ToUpper(mode)),
		fmt.Sprintf("Cash:   $%s", cash.StringFixed(2)),
		fmt.Sprintf("Assets: %s", strings.Join(syms, ", ")),
	}, "\n")
	return boxStyle.Render(body)
}

// ActionLine is a one-line description of an engine action.
func ActionLine(a engine.Action) string {
	switch a.Outcome {
	case engine.Opened:
		return buyStyle.Render(fmt.Sprintf("BUY    %-5s @ $%s  +%s units  cash $%s",
			a.Asset, a.Price.String(), a.QuantityAdded.StringFixed(6), a.Cash.StringFixed(2)))
	case engine.Closed:
		style, label := profitStyle, "PROFIT"
		if a.Reason == engine.StopLoss {
			style, label = lossStyle, "LOSS  "
		}
		return style.Render(fmt.Sprintf("%s %-5s @ $%s  pnl %s  cash $%s",
			label, a.Asset, a.Price.String(), signed(a.PnL), a.Cash.StringFixed(2)))
	}

	line := fmt.Sprintf("HOLD   %-5s %s", a.Asset, a.Reason)
	if a.Err != nil {
		line += ": " + a.Err.Error()
	}
	for _, v := range a.Violations {
		line += " [" + v.Code + "]"
	}
	return mutedStyle.Render(line)
}

// Portfolio renders a snapshot as a table of holdings with totals.
func Portfolio(s engine.Snapshot) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %14s %12s %12s %12s %12s",
		"ASSET", "QTY", "AVG", "MARK", "VALUE", "UPNL")))
	b.WriteString("\n")
	for _, h := range s.Holdings {
		if !h.Quantity.IsPositive() {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%-6s %14s", h.Symbol, "-")))
			b.WriteString("\n")
			continue
		}
		mark := "-"
		if h.Mark.IsPositive() {
			mark = h.Mark.StringFixed(2)
		}
		row := fmt.Sprintf("%-6s %14s %12s %12s %12s %12s",
			h.Symbol,
			h.Quantity.StringFixed(8),
			h.AvgEntry.StringFixed(2),
			mark,
			h.MarketValue.StringFixed(2),
			signed(h.UnrealizedPL),
		)
		b.WriteString(pnlStyle(h.UnrealizedPL).Render(row))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Cash $%s  Invested $%s  Equity $%s",
		s.Cash.StringFixed(2), s.CostBasis.StringFixed(2), s.Equity.StringFixed(2))
	return boxStyle.Render(b.String())
}

// Summary renders the result of a vigil run.
func Summary(s vigil.Summary) string {
	body := strings.Join([]string{
		titleStyle.Render("RUN SUMMARY"),
		fmt.Sprintf("Cycles:       %d", s.Cycles),
		fmt.Sprintf("Buys:         %d", s.Buys),
		fmt.Sprintf("Take profits: %d", s.TakeProfits),
		fmt.Sprintf("Stop losses:  %d", s.StopLosses),
		fmt.Sprintf("Skipped:      %d", s.Skipped),
		fmt.Sprintf("Errors:       %d", s.Errors),
		fmt.Sprintf("Final cash:   $%s", s.Cash.StringFixed(2)),
		fmt.Sprintf("Equity:       $%s", s.Equity.StringFixed(2)),
	}, "\n")
	return boxStyle.Render(body)
}

// JournalSummary renders aggregate statistics over journal records.
func JournalSummary(s journal.Summary) string {
	pf := "n/a"
	if s.ProfitFactor.IsPositive() {
		pf = s.ProfitFactor.StringFixed(2)
	}
	body := strings.Join([]string{
		fmt.Sprintf("Records: %d  (buys %d, take profits %d, stop losses %d)",
			s.Records, s.Buys, s.TakeProfits, s.StopLosses),
		fmt.Sprintf("Invested $%s", s.Invested.StringFixed(2)),
		pnlStyle(s.RealizedPL).Render(fmt.Sprintf("Realized %s  (gross +%s / -%s, PF %s)",
			signed(s.RealizedPL), s.GrossProfit.StringFixed(2), s.GrossLoss.StringFixed(2), pf)),
	}, "\n")
	return boxStyle.Render(body)
}

func pnlStyle(pnl decimal.Decimal) lipgloss.Style {
	switch {
	case pnl.IsPositive():
		return profitStyle
	case pnl.IsNegative():
		return lossStyle
	}
	return lipgloss.NewStyle()
}

func signed(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-$" + v.Abs().StringFixed(2)
	}
	return "+$" + v.StringFixed(2)
}
