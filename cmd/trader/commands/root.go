package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Congressional disclosure copy-trading agents",
	Long: `trader runs a fleet of copy-trading agents over congressional
stock disclosures: scraping filings, scoring them per agent strategy,
sizing orders against monthly budgets, and replaying historical
disclosures in backtests.

Examples:
  go run ./cmd/trader backtest --dataset data/2024.json
  go run ./cmd/trader agents list
  go run ./cmd/trader api
  go run ./cmd/trader scheduler
  go run ./cmd/trader status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
