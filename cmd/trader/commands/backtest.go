package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/agents"
	"github.com/hadoku/trader/internal/backtest"
	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/internal/dataset"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/database"
	"github.com/hadoku/trader/pkg/logger"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a disclosure dataset through the agents",
	Long: `Replays a recorded dataset of disclosures and daily prices
through the agent fleet day by day and prints a per-agent report.

Example:
  go run ./cmd/trader backtest --dataset data/2024.json
  go run ./cmd/trader backtest --dataset data/2024.json --agents chatgpt,claude --benchmark SPY`,
	RunE: runBacktest,
}

var (
	backtestDataset   string
	backtestAgents    string
	backtestStart     string
	backtestEnd       string
	backtestBenchmark string
	backtestEventsOut string
	backtestPersist   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestDataset, "dataset", "", "dataset file (required)")
	backtestCmd.Flags().StringVar(&backtestAgents, "agents", "", "comma-separated agent ids (default all)")
	backtestCmd.Flags().StringVar(&backtestStart, "start", "", "start date YYYY-MM-DD (default dataset span)")
	backtestCmd.Flags().StringVar(&backtestEnd, "end", "", "end date YYYY-MM-DD (default dataset span)")
	backtestCmd.Flags().StringVar(&backtestBenchmark, "benchmark", "SPY", "benchmark ticker for alpha")
	backtestCmd.Flags().StringVar(&backtestEventsOut, "events", "", "write the full event log to this JSON file")
	backtestCmd.Flags().BoolVar(&backtestPersist, "persist", false, "store the run's closed trades in the database")
	backtestCmd.MarkFlagRequired("dataset")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ds, err := dataset.Load(backtestDataset)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	configs, err := selectAgents(backtestAgents)
	if err != nil {
		return err
	}

	start, end := ds.Span()
	if backtestStart != "" {
		if start, err = time.Parse("2006-01-02", backtestStart); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	if backtestEnd != "" {
		if end, err = time.Parse("2006-01-02", backtestEnd); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}

	var stats contracts.StatsProvider
	if book := ds.StatsBook(); book != nil {
		stats = book
	}

	engine, err := backtest.NewEngine(configs, ds.Signals, ds.PriceBook(), stats, log, backtest.Options{
		Start:           start,
		End:             end,
		BenchmarkTicker: backtestBenchmark,
	})
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	printReport(report)

	if backtestEventsOut != "" {
		if err := writeEvents(engine, backtestEventsOut); err != nil {
			return err
		}
		fmt.Printf("\nEvent log written to %s\n", backtestEventsOut)
	}

	if backtestPersist {
		stored, err := persistTrades(cmd.Context(), cfg, engine, configs)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d closed trades stored\n", stored)
	}

	return nil
}

func persistTrades(ctx context.Context, cfg *config.Config, engine *backtest.Engine, configs []*contracts.AgentConfig) (int, error) {
	db, err := database.New(cfg)
	if err != nil {
		return 0, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	tradeRepo := repos.NewTradeRepository(db.Pool)
	stored := 0
	for _, agent := range configs {
		book := engine.Portfolio(agent.ID)
		if book == nil {
			continue
		}
		for _, trade := range book.ClosedTrades() {
			if err := tradeRepo.InsertClosedTrade(ctx, agent.ID, trade); err != nil {
				return stored, err
			}
			stored++
		}
	}
	return stored, nil
}

func selectAgents(list string) ([]*contracts.AgentConfig, error) {
	if list == "" {
		return agents.Registry(), nil
	}
	var configs []*contracts.AgentConfig
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		cfg, ok := agents.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown agent %q (known: %s)", id, strings.Join(agents.IDs(), ", "))
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no agents selected")
	}
	return configs, nil
}

func printReport(report *backtest.Report) {
	fmt.Printf("=== Backtest %s - %s ===\n",
		report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"))
	if report.BenchmarkTicker != "" {
		fmt.Printf("Benchmark %s: %+.2f%%\n", report.BenchmarkTicker, report.BenchmarkReturnPct)
	}
	fmt.Printf("Events: %d\n\n", report.EventCount)

	fmt.Printf("%-12s %12s %12s %9s %7s %8s %8s %6s %9s\n",
		"AGENT", "CONTRIBUTED", "FINAL", "RETURN", "TRADES", "WINRATE", "MAXDD", "OPEN", "ALPHA")
	for _, a := range report.Agents {
		fmt.Printf("%-12s %12.2f %12.2f %+8.2f%% %7d %7.1f%% %7.2f%% %6d %+8.2f%%\n",
			a.AgentID, a.Contributed, a.FinalValue, a.TotalReturnPct,
			a.TotalTrades, a.WinRatePct, a.MaxDrawdownPct, a.OpenPositions, a.AlphaPct)
	}
}

func writeEvents(engine *backtest.Engine, path string) error {
	data, err := json.MarshalIndent(engine.Events().Events(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}
