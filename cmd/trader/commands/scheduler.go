package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/agents"
	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/internal/execution"
	"github.com/hadoku/trader/internal/external/capitol"
	"github.com/hadoku/trader/internal/scheduler"
	"github.com/hadoku/trader/internal/scheduler/jobs"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/database"
	"github.com/hadoku/trader/pkg/httputil"
	"github.com/hadoku/trader/pkg/logger"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler",
	Long: `Runs the scheduler daemon with the live trading jobs:

  disclosure_fetch   - scrape recent disclosures daily
  signal_evaluation  - evaluate pending signals and place orders (weekdays)
  budget_topup       - credit monthly agent budgets on the 1st

Use --run-now to trigger one job immediately and exit.

Example:
  go run ./cmd/trader scheduler
  go run ./cmd/trader scheduler --run-now disclosure_fetch`,
	RunE: runScheduler,
}

var schedulerRunNow string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&schedulerRunNow, "run-now", "", "run one job immediately instead of scheduling")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	signalRepo := repos.NewSignalRepository(db.Pool)
	statsRepo := repos.NewStatsRepository(db.Pool)
	budgetRepo := repos.NewBudgetRepository(db.Pool)

	capitolClient := capitol.NewClient(cfg.Capitol, log)
	worker := execution.NewWorkerClient(cfg.Worker, httputil.New(log), log)
	configs := agents.Registry()

	sched := scheduler.New(log)
	jobList := []scheduler.Job{
		jobs.NewDisclosureJob(capitolClient, signalRepo, log),
		jobs.NewEvaluationJob(configs, signalRepo, statsRepo, budgetRepo, worker, log),
		jobs.NewBudgetTopUpJob(configs, budgetRepo, log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job: %w", err)
		}
	}

	if schedulerRunNow != "" {
		for _, job := range jobList {
			if job.Name() == schedulerRunNow {
				return job.Run(cmd.Context())
			}
		}
		return fmt.Errorf("unknown job %q (known: %v)", schedulerRunNow, sched.Jobs())
	}

	sched.Start()
	log.WithField("jobs", sched.Jobs()).Info("Scheduler running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
