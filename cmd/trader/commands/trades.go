package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/database"
)

var tradesCmd = &cobra.Command{
	Use:   "trades <agent-id>",
	Short: "List an agent's stored closed trades",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		trades, err := repos.NewTradeRepository(db.Pool).ListClosedTrades(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(trades) == 0 {
			fmt.Printf("no closed trades for %s\n", args[0])
			return nil
		}

		fmt.Printf("%-8s %10s %10s %10s %9s %8s %5s %s\n",
			"TICKER", "SHARES", "ENTRY", "EXIT", "PROFIT", "RETURN", "DAYS", "REASON")
		var total float64
		for _, tr := range trades {
			fmt.Printf("%-8s %10.4f %10.2f %10.2f %+9.2f %+7.2f%% %5d %s\n",
				tr.Ticker, tr.Shares, tr.EntryPrice, tr.ExitPrice,
				tr.Profit, tr.ReturnPct, tr.HoldingDays, tr.Reason)
			total += tr.Profit
		}
		fmt.Printf("\n%d trades, total profit %+.2f\n", len(trades), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tradesCmd)
}
