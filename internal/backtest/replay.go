package backtest

import (
	"sort"
	"strings"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// confirmWindowDays bounds how far back disclosures of the same ticker
// and action count toward the confirmation tally.
const confirmWindowDays = 30

// QueuedSignal pairs a signal with a stable id the engine uses to mark
// it processed.
type QueuedSignal struct {
	contracts.Signal
	ID int
}

// Replayer feeds historical signals back into the simulation in
// disclosure-date order. Each signal is delivered at most once per run.
type Replayer struct {
	signals   []contracts.Signal
	processed []bool
}

// NewReplayer sorts the signals by disclosure date with a deterministic
// tiebreak so repeated runs replay in the same order.
func NewReplayer(signals []contracts.Signal) *Replayer {
	sorted := make([]contracts.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.DisclosureDate.Equal(b.DisclosureDate) {
			return a.DisclosureDate.Before(b.DisclosureDate)
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.Politician < b.Politician
	})
	return &Replayer{
		signals:   sorted,
		processed: make([]bool, len(sorted)),
	}
}

// Due returns every unprocessed signal disclosed on or before date.
func (r *Replayer) Due(date time.Time) []QueuedSignal {
	day := midnight(date)
	var due []QueuedSignal
	for i, sig := range r.signals {
		if r.processed[i] {
			continue
		}
		if midnight(sig.DisclosureDate).After(day) {
			break
		}
		due = append(due, QueuedSignal{Signal: sig, ID: i})
	}
	return due
}

// MarkProcessed removes a signal from future consideration.
func (r *Replayer) MarkProcessed(id int) {
	if id >= 0 && id < len(r.processed) {
		r.processed[id] = true
	}
}

// PendingCount returns how many signals have not been delivered yet.
func (r *Replayer) PendingCount() int {
	n := 0
	for _, done := range r.processed {
		if !done {
			n++
		}
	}
	return n
}

// ConfirmationCount tallies distinct politicians who disclosed the same
// ticker and action within the lookback window ending at date. The
// signal's own politician is included, so an unconfirmed signal
// counts 1.
func (r *Replayer) ConfirmationCount(sig contracts.Signal, date time.Time) int {
	day := midnight(date)
	cutoff := day.AddDate(0, 0, -confirmWindowDays)
	seen := make(map[string]bool)
	for _, other := range r.signals {
		if other.Ticker != sig.Ticker || other.Action != sig.Action {
			continue
		}
		d := midnight(other.DisclosureDate)
		if d.After(day) || d.Before(cutoff) {
			continue
		}
		seen[strings.ToLower(other.Politician)] = true
	}
	if len(seen) == 0 {
		return 1
	}
	return len(seen)
}

// Reset restores every signal to the pending state for another pass.
func (r *Replayer) Reset() {
	for i := range r.processed {
		r.processed[i] = false
	}
}
