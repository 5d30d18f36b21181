package dataset

import (
	"strings"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// PriceBook is an immutable in-memory close-price lookup keyed by ticker
// and day. Lookups never block, which is what the simulation requires of
// its price collaborator.
type PriceBook struct {
	closes map[string]map[string]float64
}

// NewPriceBook indexes the price points. Later duplicates win, matching
// a re-exported dataset overriding earlier rows.
func NewPriceBook(points []PricePoint) *PriceBook {
	book := &PriceBook{closes: make(map[string]map[string]float64)}
	for _, pt := range points {
		ticker := strings.ToUpper(pt.Ticker)
		if book.closes[ticker] == nil {
			book.closes[ticker] = make(map[string]float64)
		}
		book.closes[ticker][dayKey(pt.Date)] = pt.Close
	}
	return book
}

// GetPrice returns the close for the ticker on the given day.
func (b *PriceBook) GetPrice(ticker string, date time.Time) (float64, bool) {
	price, ok := b.closes[strings.ToUpper(ticker)][dayKey(date)]
	return price, ok
}

// Tickers returns the number of distinct tickers in the book.
func (b *PriceBook) Tickers() int { return len(b.closes) }

// StatsBook is the in-memory politician track-record lookup.
type StatsBook struct {
	stats map[string]contracts.PoliticianStats
}

// NewStatsBook indexes stats entries case-insensitively by politician.
func NewStatsBook(entries []StatsEntry) *StatsBook {
	book := &StatsBook{stats: make(map[string]contracts.PoliticianStats, len(entries))}
	for _, e := range entries {
		book.stats[strings.ToLower(e.Politician)] = contracts.PoliticianStats{
			Trades:  e.Trades,
			WinRate: e.WinRate,
		}
	}
	return book
}

// GetStats returns the politician's aggregate record.
func (b *StatsBook) GetStats(politician string) (contracts.PoliticianStats, bool) {
	st, ok := b.stats[strings.ToLower(politician)]
	return st, ok
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
