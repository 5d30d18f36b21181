package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hadoku/trader/internal/contracts"
)

// TradeRepository implements contracts.TradeStore on Postgres.
type TradeRepository struct {
	pool *pgxpool.Pool
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

// InsertClosedTrade records one realized trade for an agent.
func (r *TradeRepository) InsertClosedTrade(ctx context.Context, agentID string, trade contracts.ClosedTrade) error {
	query := `
		INSERT INTO trading.closed_trades
			(agent_id, ticker, shares, entry_price, entry_date,
			 exit_price, exit_date, profit, return_pct, holding_days, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		agentID, trade.Ticker, trade.Shares, trade.EntryPrice, trade.EntryDate,
		trade.ExitPrice, trade.ExitDate, trade.Profit, trade.ReturnPct,
		trade.HoldingDays, string(trade.Reason),
	)
	if err != nil {
		return fmt.Errorf("insert closed trade %s/%s: %w", agentID, trade.Ticker, err)
	}
	return nil
}

// ListClosedTrades returns an agent's realized trades, oldest exit first.
func (r *TradeRepository) ListClosedTrades(ctx context.Context, agentID string) ([]contracts.ClosedTrade, error) {
	query := `
		SELECT ticker, shares, entry_price, entry_date,
		       exit_price, exit_date, profit, return_pct, holding_days, reason
		FROM trading.closed_trades
		WHERE agent_id = $1
		ORDER BY exit_date, id
	`

	rows, err := r.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("query closed trades: %w", err)
	}
	defer rows.Close()

	var trades []contracts.ClosedTrade
	for rows.Next() {
		var trade contracts.ClosedTrade
		var reason string
		err := rows.Scan(
			&trade.Ticker, &trade.Shares, &trade.EntryPrice, &trade.EntryDate,
			&trade.ExitPrice, &trade.ExitDate, &trade.Profit, &trade.ReturnPct,
			&trade.HoldingDays, &reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan closed trade: %w", err)
		}
		trade.Reason = contracts.ExitReason(reason)
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed trades: %w", err)
	}
	return trades, nil
}
