// Package dataset handles the exported backtest input format: a single
// JSON document carrying the historical signals plus the daily closes
// every replay needs. Datasets are produced offline and loaded read-only.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// PricePoint is one (ticker, day, close) observation.
type PricePoint struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// StatsEntry is one politician's aggregate track record.
type StatsEntry struct {
	Politician string  `json:"politician"`
	Trades     int     `json:"trades"`
	WinRate    float64 `json:"win_rate"`
}

// Dataset is the on-disk document.
type Dataset struct {
	Name      string             `json:"name,omitempty"`
	CreatedAt time.Time          `json:"created_at,omitempty"`
	Signals   []contracts.Signal `json:"signals"`
	Prices    []PricePoint       `json:"prices"`
	Stats     []StatsEntry       `json:"stats,omitempty"`
}

// Load reads and validates a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Save writes the dataset as indented JSON.
func (d *Dataset) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the structural invariants a replay depends on.
func (d *Dataset) Validate() error {
	if len(d.Signals) == 0 {
		return fmt.Errorf("no signals")
	}
	if len(d.Prices) == 0 {
		return fmt.Errorf("no prices")
	}
	for i, sig := range d.Signals {
		if sig.Ticker == "" {
			return fmt.Errorf("signal %d: missing ticker", i)
		}
		if sig.Action != contracts.ActionBuy && sig.Action != contracts.ActionSell {
			return fmt.Errorf("signal %d: unknown action %q", i, sig.Action)
		}
		if sig.DisclosureDate.IsZero() {
			return fmt.Errorf("signal %d: missing disclosure date", i)
		}
		if sig.DisclosureDate.Before(sig.TradeDate) {
			return fmt.Errorf("signal %d: disclosed before traded", i)
		}
	}
	for i, pt := range d.Prices {
		if pt.Ticker == "" || pt.Date.IsZero() {
			return fmt.Errorf("price %d: missing ticker or date", i)
		}
		if pt.Close <= 0 {
			return fmt.Errorf("price %d: close must be > 0", i)
		}
	}
	return nil
}

// Span returns the natural simulation bounds: the earliest disclosure
// date through the last priced day.
func (d *Dataset) Span() (start, end time.Time) {
	for _, sig := range d.Signals {
		if start.IsZero() || sig.DisclosureDate.Before(start) {
			start = sig.DisclosureDate
		}
	}
	for _, pt := range d.Prices {
		if pt.Date.After(end) {
			end = pt.Date
		}
	}
	return start, end
}

// PriceBook builds the in-memory price lookup for the dataset.
func (d *Dataset) PriceBook() *PriceBook {
	return NewPriceBook(d.Prices)
}

// StatsBook builds the in-memory track-record lookup, or nil when the
// dataset carries no stats.
func (d *Dataset) StatsBook() *StatsBook {
	if len(d.Stats) == 0 {
		return nil
	}
	return NewStatsBook(d.Stats)
}
