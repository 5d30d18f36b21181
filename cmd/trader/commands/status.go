package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/execution"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/database"
	"github.com/hadoku/trader/pkg/httputil"
	"github.com/hadoku/trader/pkg/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database and trade worker connectivity",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	fmt.Println("=== Status ===")

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("database:  DOWN (%v)\n", err)
	} else {
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			fmt.Printf("database:  DOWN (%v)\n", err)
		} else {
			fmt.Println("database:  OK")
		}
	}

	worker := execution.NewWorkerClient(cfg.Worker, httputil.New(log), log)
	health, err := worker.Health(ctx)
	if err != nil {
		fmt.Printf("worker:    DOWN (%v)\n", err)
		return nil
	}
	fmt.Printf("worker:    %s (authenticated: %v)\n", health.Status, health.Authenticated)

	accounts, err := worker.Accounts(ctx)
	if err != nil {
		fmt.Printf("accounts:  unavailable (%v)\n", err)
		return nil
	}
	for _, acct := range accounts {
		name := acct.Nickname
		if name == "" {
			name = acct.AccountNumber
		}
		fmt.Printf("account:   %s balance %.2f, %d positions\n",
			name, acct.Balance, len(acct.Positions))
	}

	return nil
}
