package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/data/repos"
	"github.com/hadoku/trader/pkg/logger"
)

// BudgetTopUpJob credits each agent's monthly budget on the first of
// the month. The insert is idempotent, so a rerun in the same month is
// a no-op.
type BudgetTopUpJob struct {
	agents  []*contracts.AgentConfig
	budgets *repos.BudgetRepository
	logger  *logger.Logger
}

func NewBudgetTopUpJob(configs []*contracts.AgentConfig, budgets *repos.BudgetRepository, log *logger.Logger) *BudgetTopUpJob {
	return &BudgetTopUpJob{
		agents:  configs,
		budgets: budgets,
		logger:  log,
	}
}

func (j *BudgetTopUpJob) Name() string {
	return "budget_topup"
}

// Schedule returns the cron schedule (midnight on the 1st of the month)
func (j *BudgetTopUpJob) Schedule() string {
	return "0 0 0 1 * *"
}

func (j *BudgetTopUpJob) Run(ctx context.Context) error {
	month := time.Now().UTC().Format("2006-01")

	credited := 0
	for _, cfg := range j.agents {
		ok, err := j.budgets.TopUp(ctx, cfg.ID, month, cfg.MonthlyBudget)
		if err != nil {
			return fmt.Errorf("top up %s: %w", cfg.ID, err)
		}
		if ok {
			credited++
			j.logger.WithFields(map[string]interface{}{
				"agent":  cfg.ID,
				"month":  month,
				"amount": cfg.MonthlyBudget,
			}).Info("Budget credited")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"month":    month,
		"credited": credited,
		"agents":   len(j.agents),
	}).Info("Budget top-up completed")

	return nil
}
