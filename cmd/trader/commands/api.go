package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hadoku/trader/internal/api"
	"github.com/hadoku/trader/internal/api/handlers"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/logger"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health               - Health check
  GET  /api/agents           - List agent configurations
  GET  /api/agents/{id}      - One agent configuration
  POST /api/backtest         - Start a backtest from a stored dataset
  GET  /api/backtest         - List backtest runs
  GET  /api/backtest/{id}    - Run status and report
  GET  /ws/backtest/{id}     - Live event stream over websocket

Example:
  go run ./cmd/trader api
  go run ./cmd/trader api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "listen port (default from config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	backtestHandler := handlers.NewBacktestHandler(cfg, log)
	agentHandler := handlers.NewAgentHandler(log)
	router := api.NewRouter(backtestHandler, agentHandler, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
