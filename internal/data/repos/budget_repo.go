package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientBudget means a reservation would overdraw the agent's
// remaining monthly budget.
var ErrInsufficientBudget = errors.New("insufficient remaining budget")

// BudgetRepository implements contracts.BudgetStore on Postgres. Live
// trading sizes against persisted budget rows, one per (agent, month);
// the reservation is check-then-commit inside a single transaction so
// concurrent evaluators can never spend the same dollar twice.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new budget repository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Remaining returns the unreserved budget for the agent's month.
// A month with no row yet has zero remaining; the top-up job creates it.
func (r *BudgetRepository) Remaining(ctx context.Context, agentID string, month string) (float64, error) {
	query := `
		SELECT remaining FROM trading.budgets
		WHERE agent_id = $1 AND month = $2
	`

	var remaining float64
	err := r.pool.QueryRow(ctx, query, agentID, month).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query budget %s/%s: %w", agentID, month, err)
	}
	return remaining, nil
}

// Reserve debits amount from the month's remaining budget. The row is
// locked for the duration of the check so the commit only happens
// against a balance that still covers it.
func (r *BudgetRepository) Reserve(ctx context.Context, agentID string, month string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("reserve %s/%s: non-positive amount %.2f", agentID, month, amount)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve: %w", err)
	}
	defer tx.Rollback(ctx)

	var remaining float64
	err = tx.QueryRow(ctx,
		`SELECT remaining FROM trading.budgets
		 WHERE agent_id = $1 AND month = $2 FOR UPDATE`,
		agentID, month).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInsufficientBudget
	}
	if err != nil {
		return fmt.Errorf("check budget: %w", err)
	}
	if remaining < amount {
		return ErrInsufficientBudget
	}

	_, err = tx.Exec(ctx,
		`UPDATE trading.budgets SET remaining = remaining - $3
		 WHERE agent_id = $1 AND month = $2`,
		agentID, month, amount)
	if err != nil {
		return fmt.Errorf("commit reserve: %w", err)
	}
	return tx.Commit(ctx)
}

// Release credits amount back, for failed or cancelled executions.
func (r *BudgetRepository) Release(ctx context.Context, agentID string, month string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("release %s/%s: non-positive amount %.2f", agentID, month, amount)
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE trading.budgets SET remaining = remaining + $3
		 WHERE agent_id = $1 AND month = $2`,
		agentID, month, amount)
	if err != nil {
		return fmt.Errorf("release budget: %w", err)
	}
	return nil
}

// TopUp creates or refreshes the month's row, adding the monthly amount
// exactly once per (agent, month) no matter how often the job fires.
func (r *BudgetRepository) TopUp(ctx context.Context, agentID string, month string, amount float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO trading.budgets (agent_id, month, remaining)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (agent_id, month) DO NOTHING`,
		agentID, month, amount)
	if err != nil {
		return false, fmt.Errorf("top up budget %s/%s: %w", agentID, month, err)
	}
	return tag.RowsAffected() > 0, nil
}
