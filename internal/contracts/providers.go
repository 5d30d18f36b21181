package contracts

import (
	"context"
	"time"
)

// PriceProvider looks up a closing price for a ticker on a date.
// Absence is an expected outcome, not an error: the caller records a
// "no price" skip and re-evaluates the next day. Implementations used by
// the simulation core must be preloaded and non-blocking.
type PriceProvider interface {
	GetPrice(ticker string, date time.Time) (float64, bool)
}

// PoliticianStats is the external track record for one politician
type PoliticianStats struct {
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
}

// StatsProvider supplies politician track records for the skill component.
// A false second return means no record exists for that politician.
type StatsProvider interface {
	GetStats(politician string) (PoliticianStats, bool)
}

// SignalStore is the persistence boundary for ingested signals
type SignalStore interface {
	Insert(ctx context.Context, sig Signal) error
	FetchUnprocessed(ctx context.Context, onOrBefore time.Time) ([]Signal, error)
	MarkProcessed(ctx context.Context, sig Signal) error
}

// TradeStore records closed trades for later analysis
type TradeStore interface {
	InsertClosedTrade(ctx context.Context, agentID string, trade ClosedTrade) error
	ListClosedTrades(ctx context.Context, agentID string) ([]ClosedTrade, error)
}

// BudgetStore is the per-agent budget reservation boundary for live
// deployments. Reserve must be check-then-commit against the persisted
// remaining budget; the core assumes no other coordination primitive.
type BudgetStore interface {
	Remaining(ctx context.Context, agentID string, month string) (float64, error)
	Reserve(ctx context.Context, agentID string, month string, amount float64) error
	Release(ctx context.Context, agentID string, month string, amount float64) error
}
