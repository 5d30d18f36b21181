package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hadoku/trader/internal/contracts"
)

// StatsRepository reads politician track records aggregated by the
// ingest pipeline. Because the scoring engine needs a non-blocking
// lookup, the whole table is loaded up front into a dataset-style book
// rather than queried per signal.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// LoadAll fetches every politician's aggregate record.
func (r *StatsRepository) LoadAll(ctx context.Context) (map[string]contracts.PoliticianStats, error) {
	query := `
		SELECT politician, trades, win_rate
		FROM trading.politician_stats
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query politician stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]contracts.PoliticianStats)
	for rows.Next() {
		var politician string
		var st contracts.PoliticianStats
		if err := rows.Scan(&politician, &st.Trades, &st.WinRate); err != nil {
			return nil, fmt.Errorf("scan politician stats: %w", err)
		}
		stats[strings.ToLower(politician)] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate politician stats: %w", err)
	}
	return stats, nil
}
