package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A paper-trading agent for crypto assets",
	Long: `Papertrader tracks a fixed set of crypto assets against a virtual USD
balance. On every cycle it fetches a price per asset and either takes profit,
stops a loss or accumulates, writing every executed action to an append-only
audit journal.

It provides tools for:
  - Running the trading loop against live prices (vigil mode)
  - Replaying a recorded price feed deterministically
  - Querying the SQLite audit journal
  - Generating and validating configuration files`,
	SilenceUsage: true,
}

var envFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the config")
}
