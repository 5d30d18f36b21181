// Package repos holds the pgx persistence boundary: ingested signals,
// realized trades, live budget reservations and politician track
// records. The simulation core never touches these; only the live path
// and the ingest pipeline do.
package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hadoku/trader/internal/contracts"
)

// SignalRepository implements contracts.SignalStore on Postgres.
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository.
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

// Insert stores an ingested signal. Re-ingesting the same disclosure is
// a no-op: the natural key is (politician, ticker, action, trade_date).
func (r *SignalRepository) Insert(ctx context.Context, sig contracts.Signal) error {
	query := `
		INSERT INTO trading.signals
			(ticker, action, asset_type, trade_price, trade_date,
			 disclosure_date, disclosure_price, size_estimate, source, politician)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (politician, ticker, action, trade_date) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		sig.Ticker, string(sig.Action), string(sig.AssetType),
		sig.TradePrice, sig.TradeDate, sig.DisclosureDate,
		sig.DisclosurePrice, sig.SizeEstimate, sig.Source, sig.Politician,
	)
	if err != nil {
		return fmt.Errorf("insert signal %s/%s: %w", sig.Politician, sig.Ticker, err)
	}
	return nil
}

// FetchUnprocessed returns every pending signal disclosed on or before
// the given date, oldest disclosure first.
func (r *SignalRepository) FetchUnprocessed(ctx context.Context, onOrBefore time.Time) ([]contracts.Signal, error) {
	query := `
		SELECT ticker, action, asset_type, trade_price, trade_date,
		       disclosure_date, disclosure_price, size_estimate, source, politician
		FROM trading.signals
		WHERE processed_at IS NULL AND disclosure_date <= $1
		ORDER BY disclosure_date, ticker, politician
	`

	rows, err := r.pool.Query(ctx, query, onOrBefore)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed signals: %w", err)
	}
	defer rows.Close()

	var signals []contracts.Signal
	for rows.Next() {
		var sig contracts.Signal
		var action, assetType string
		err := rows.Scan(
			&sig.Ticker, &action, &assetType, &sig.TradePrice, &sig.TradeDate,
			&sig.DisclosureDate, &sig.DisclosurePrice, &sig.SizeEstimate,
			&sig.Source, &sig.Politician,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Action = contracts.TradeAction(action)
		sig.AssetType = contracts.AssetType(assetType)
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return signals, nil
}

// MarkProcessed timestamps a signal so it is never delivered again.
func (r *SignalRepository) MarkProcessed(ctx context.Context, sig contracts.Signal) error {
	query := `
		UPDATE trading.signals
		SET processed_at = now()
		WHERE politician = $1 AND ticker = $2 AND action = $3 AND trade_date = $4
		  AND processed_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		sig.Politician, sig.Ticker, string(sig.Action), sig.TradeDate)
	if err != nil {
		return fmt.Errorf("mark signal processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
