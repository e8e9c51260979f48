package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/engine/engineobs"
	"github.com/rustyeddy/papertrader/internal/logger"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/vigil"
	"github.com/shopspring/decimal"
)

func usd(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func initLogging(cfg *config.Config) (func(), error) {
	if err := logger.Init(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Tracing: cfg.Log.Tracing,
		Output:  os.Stderr,
	}); err != nil {
		return nil, err
	}
	return func() { _ = logger.Shutdown(context.Background()) }, nil
}

func openSink(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "text":
		return journal.NewText(jc.Path)
	case "csv":
		return journal.NewCSV(jc.Path, jc.EquityPath)
	case "sqlite":
		return journal.NewSQLite(jc.Path)
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}

// buildJournal opens the primary sink and any mirrors. With mirrors the
// result is a journal.Multi in configuration order; only the primary can
// fail a write.
func buildJournal(jc config.JournalConfig) (journal.Journal, error) {
	primary, err := openSink(jc)
	if err != nil {
		return nil, fmt.Errorf("%s journal %s: %w", jc.Type, jc.Path, err)
	}
	if len(jc.Mirrors) == 0 {
		return primary, nil
	}

	var mirrors []journal.Journal
	for _, m := range jc.Mirrors {
		s, err := openSink(m)
		if err != nil {
			_ = journal.NewMulti(primary, mirrors...).Close()
			return nil, fmt.Errorf("%s journal %s: %w", m.Type, m.Path, err)
		}
		mirrors = append(mirrors, s)
	}
	return journal.NewMulti(primary, mirrors...), nil
}

func buildSource(cfg *config.Config) (pricing.Source, error) {
	ps := cfg.PriceSource
	timeout, err := ps.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	switch ps.Type {
	case "coingecko":
		ids := map[string]string{}
		for _, a := range cfg.Assets {
			if a.SourceID != "" {
				ids[a.Symbol] = a.SourceID
			}
		}
		return pricing.NewCoinGecko(pricing.CoinGeckoOptions{
			BaseURL: ps.BaseURL,
			APIKey:  ps.APIKey,
			Timeout: timeout,
			IDs:     ids,
		}), nil
	case "yahoo":
		tickers := map[string]string{}
		for _, a := range cfg.Assets {
			if a.SourceID != "" {
				tickers[a.Symbol] = a.SourceID
			}
		}
		return pricing.NewYahoo(tickers), nil
	case "static":
		prices := make(map[string]decimal.Decimal, len(ps.Prices))
		for sym, p := range ps.Prices {
			prices[sym] = usd(p)
		}
		return pricing.NewStatic(prices), nil
	}
	return nil, fmt.Errorf("unknown price source %q", ps.Type)
}

// buildGate returns nil when no risk check is configured.
func buildGate(rc config.RiskConfig) (*risk.Gate, error) {
	if !rc.Enabled() {
		return nil, nil
	}
	return risk.NewGate(risk.Policy{
		MaxPositionUSD:    usd(rc.MaxPositionUSD),
		MinCashReserveUSD: usd(rc.MinCashReserveUSD),
		MaxVolatility:     usd(rc.MaxVolatility),
		VolatilityWindow:  rc.VolatilityWindow,
		Blocklist:         rc.Blocklist,
	})
}

func buildAssets(cfg *config.Config) []vigil.Asset {
	out := make([]vigil.Asset, len(cfg.Assets))
	for i, a := range cfg.Assets {
		out[i] = vigil.Asset{
			Symbol:    strings.ToUpper(strings.TrimSpace(a.Symbol)),
			BuyAmount: usd(a.BuyAmount),
		}
	}
	return out
}

func buildEngine(cfg *config.Config, src pricing.Source, j journal.Journal) (engine.Trader, error) {
	assets := buildAssets(cfg)
	symbols := make([]string, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
	}

	l, err := ledger.New(usd(cfg.Account.InitialCash), symbols)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	gate, err := buildGate(cfg.Risk)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.PriceSource.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.Config{
		Ledger:  l,
		Journal: j,
		Policy: engine.Policy{
			TakeProfitRatio: usd(cfg.Policy.TakeProfitRatio),
			StopLossRatio:   usd(cfg.Policy.StopLossRatio),
		},
		Source:       src,
		Gate:         gate,
		FetchTimeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return engineobs.Wrap(eng), nil
}
