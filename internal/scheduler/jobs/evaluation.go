package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/internal/execution"
	"github.com/hadoku/trader/internal/filter"
	"github.com/hadoku/trader/internal/scoring"
	"github.com/hadoku/trader/internal/sizing"
	"github.com/hadoku/trader/pkg/logger"
)

// EvaluationJob runs every stored unprocessed disclosure through each
// agent's filter, scoring, and sizing, reserves budget, and sends the
// resulting buy orders to the trade worker.
type EvaluationJob struct {
	agents  []*contracts.AgentConfig
	signals *repos.SignalRepository
	stats   *repos.StatsRepository
	budgets *repos.BudgetRepository
	worker  *execution.WorkerClient
	logger  *logger.Logger
}

func NewEvaluationJob(
	configs []*contracts.AgentConfig,
	signals *repos.SignalRepository,
	stats *repos.StatsRepository,
	budgets *repos.BudgetRepository,
	worker *execution.WorkerClient,
	log *logger.Logger,
) *EvaluationJob {
	return &EvaluationJob{
		agents:  configs,
		signals: signals,
		stats:   stats,
		budgets: budgets,
		worker:  worker,
		logger:  log,
	}
}

func (j *EvaluationJob) Name() string {
	return "signal_evaluation"
}

// Schedule returns the cron schedule (9:45 AM on weekdays, after open)
func (j *EvaluationJob) Schedule() string {
	return "0 45 9 * * 1-5"
}

func (j *EvaluationJob) Run(ctx context.Context) error {
	now := time.Now().UTC()
	month := now.Format("2006-01")

	statsByPolitician, err := j.stats.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load politician stats: %w", err)
	}

	pending, err := j.signals.FetchUnprocessed(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch unprocessed signals: %w", err)
	}
	if len(pending) == 0 {
		j.logger.Debug("No pending signals")
		return nil
	}

	executed := 0
	for _, sig := range pending {
		if sig.Action != contracts.ActionBuy {
			// sells against live positions go through position review,
			// not the signal path
			j.logger.WithFields(map[string]interface{}{
				"ticker":     sig.Ticker,
				"politician": sig.Politician,
			}).Debug("Skipping non-buy disclosure")
			if err := j.signals.MarkProcessed(ctx, sig); err != nil {
				return fmt.Errorf("mark processed: %w", err)
			}
			continue
		}

		price := sig.TradePrice
		if sig.DisclosurePrice != nil && *sig.DisclosurePrice > 0 {
			price = *sig.DisclosurePrice
		}
		if price <= 0 {
			j.logger.WithField("ticker", sig.Ticker).Warn("Disclosure has no usable price")
			if err := j.signals.MarkProcessed(ctx, sig); err != nil {
				return fmt.Errorf("mark processed: %w", err)
			}
			continue
		}

		enriched := contracts.Enrich(sig, now, price)
		for _, cfg := range j.agents {
			n, err := j.evaluate(ctx, cfg, enriched, price, month, statsByPolitician)
			if err != nil {
				return err
			}
			executed += n
		}

		if err := j.signals.MarkProcessed(ctx, sig); err != nil {
			return fmt.Errorf("mark processed: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"signals":  len(pending),
		"executed": executed,
	}).Info("Signal evaluation completed")

	return nil
}

// evaluate runs one agent over one signal and returns how many orders
// it placed (0 or 1). Budget failures skip the signal; transport errors
// abort the run.
func (j *EvaluationJob) evaluate(
	ctx context.Context,
	cfg *contracts.AgentConfig,
	sig contracts.EnrichedSignal,
	price float64,
	month string,
	statsByPolitician map[string]contracts.PoliticianStats,
) (int, error) {
	res := filter.Evaluate(cfg, sig)
	if !res.Pass {
		return 0, nil
	}

	req := sizing.Request{
		AcceptedCount:     1,
		CongressionalSize: sig.SizeEstimate,
	}
	if !cfg.PassFail() {
		in := scoring.Inputs{ConfirmationCount: 1}
		if st, ok := statsByPolitician[strings.ToLower(sig.Politician)]; ok {
			in.Stats = &st
		}
		result := scoring.Score(cfg.Scoring, sig, in)
		switch {
		case result.Score >= cfg.ExecuteThreshold:
		case result.Score >= cfg.HalfSizeThreshold:
			req.HalfSize = true
		default:
			return 0, nil
		}
		score := result.Score
		req.Score = &score
	}

	remaining, err := j.budgets.Remaining(ctx, cfg.ID, month)
	if err != nil {
		return 0, fmt.Errorf("budget remaining for %s: %w", cfg.ID, err)
	}
	req.Remaining = remaining

	amount, err := sizing.Calculate(cfg, req)
	if err != nil {
		return 0, fmt.Errorf("size %s for %s: %w", sig.Ticker, cfg.ID, err)
	}
	if amount <= 0 {
		return 0, nil
	}

	quantity := math.Floor(amount / price)
	if quantity < 1 {
		return 0, nil
	}
	cost := quantity * price

	if err := j.budgets.Reserve(ctx, cfg.ID, month, cost); err != nil {
		if errors.Is(err, repos.ErrInsufficientBudget) {
			j.logger.WithFields(map[string]interface{}{
				"agent":  cfg.ID,
				"ticker": sig.Ticker,
			}).Info("Budget exhausted, skipping order")
			return 0, nil
		}
		return 0, fmt.Errorf("reserve budget for %s: %w", cfg.ID, err)
	}

	resp, err := j.worker.ExecuteTrade(ctx, execution.TradeRequest{
		Ticker:   sig.Ticker,
		Action:   string(contracts.ActionBuy),
		Quantity: quantity,
	})
	if err != nil {
		if relErr := j.budgets.Release(ctx, cfg.ID, month, cost); relErr != nil {
			j.logger.WithError(relErr).Error("Failed to release reserved budget")
		}
		return 0, fmt.Errorf("execute %s for %s: %w", sig.Ticker, cfg.ID, err)
	}
	if !resp.Success {
		if relErr := j.budgets.Release(ctx, cfg.ID, month, cost); relErr != nil {
			j.logger.WithError(relErr).Error("Failed to release reserved budget")
		}
		j.logger.WithFields(map[string]interface{}{
			"agent":   cfg.ID,
			"ticker":  sig.Ticker,
			"message": resp.Message,
		}).Warn("Worker rejected order")
		return 0, nil
	}

	j.logger.WithFields(map[string]interface{}{
		"agent":    cfg.ID,
		"ticker":   sig.Ticker,
		"quantity": quantity,
		"amount":   cost,
		"order_id": resp.OrderID,
	}).Info("Order placed")

	return 1, nil
}
