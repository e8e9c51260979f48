package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/internal/display"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/pricing"
	"github.com/rustyeddy/papertrader/vigil"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop against live prices",
	Long: `Run the paper-trading loop ("vigil mode") until interrupted.

Every schedule.interval each asset is priced and evaluated in order,
schedule.stagger apart. Without -f the built-in defaults are used:
$100000 cash, BTC $100 and ETH $50 per buy, take profit at +5%, stop loss
at -5%, CoinGecko prices every minute.

Example:
  papertrader run -f papertrader.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runMaxCycles  int
	runQuiet      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().IntVarP(&runMaxCycles, "cycles", "n", 0, "stop after this many cycles (0 = until interrupted)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the portfolio after each cycle")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath, envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runMaxCycles > 0 {
		cfg.Schedule.MaxCycles = runMaxCycles
	}

	src, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("price source: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runVigil(ctx, cmd.OutOrStdout(), "vigil", cfg, src, nil)
}

// runVigil wires the engine for cfg and runs the loop. tweak adjusts the
// runner before it starts.
func runVigil(ctx context.Context, out io.Writer, mode string, cfg *config.Config, src pricing.Source, tweak func(*vigil.Runner)) error {
	shutdown, err := initLogging(cfg)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer shutdown()

	j, err := buildJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	eng, err := buildEngine(cfg, src, j)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	interval, err := cfg.Schedule.IntervalDuration()
	if err != nil {
		return err
	}
	stagger, err := cfg.Schedule.StaggerDuration()
	if err != nil {
		return err
	}

	r := &vigil.Runner{
		Engine:    eng,
		Assets:    buildAssets(cfg),
		Interval:  interval,
		Stagger:   stagger,
		MaxCycles: cfg.Schedule.MaxCycles,
		OnAction: func(a engine.Action) {
			fmt.Fprintln(out, display.ActionLine(a))
		},
	}
	if er, ok := j.(journal.EquityRecorder); ok {
		r.Equity = er
	}
	if !runQuiet {
		r.OnCycle = func(n int, snap engine.Snapshot) {
			fmt.Fprintf(out, "cycle %d\n%s\n", n, display.Portfolio(snap))
		}
	}
	if tweak != nil {
		tweak(r)
	}

	fmt.Fprintln(out, display.Banner(mode, usd(cfg.Account.InitialCash), r.Assets))

	sum, err := r.Run(ctx)
	fmt.Fprintln(out, display.Summary(sum))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Audit journal: %s (%s)\n", cfg.Journal.Path, cfg.Journal.Type)
	return nil
}
