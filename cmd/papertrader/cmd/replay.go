package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/vigil"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded price feed",
	Long: `Run the trading loop over a CSV price feed instead of live prices.

The feed has columns time,symbol,price (header optional). Each cycle consumes
the next price of every configured asset; the run ends when every configured
asset has run out of prices. Symbols in the feed that are not configured are
ignored. There is no waiting between cycles or assets.

Example:
  papertrader replay -f papertrader.yaml --prices prices.csv`,
	RunE: runReplay,
}

var (
	replayConfigPath string
	replayPricesPath string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	replayCmd.Flags().StringVarP(&replayPricesPath, "prices", "p", "", "CSV price feed (required)")
	replayCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the portfolio after each cycle")
	replayCmd.MarkFlagRequired("prices")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(replayConfigPath, envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	feed, err := pricing.LoadReplay(replayPricesPath)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runVigil(ctx, cmd.OutOrStdout(), "replay", cfg, feed, func(r *vigil.Runner) {
		r.Interval = 0
		r.Stagger = 0
		symbols := make([]string, len(r.Assets))
		for i, a := range r.Assets {
			symbols[i] = a.Symbol
		}
		r.StopWhen = func() bool { return feed.ExhaustedFor(symbols...) }
	})
}
