package backtest

import (
	"testing"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

func buySignal(ticker, politician string, disclosed time.Time) contracts.Signal {
	return contracts.Signal{
		Ticker:         ticker,
		Action:         contracts.ActionBuy,
		AssetType:      contracts.AssetStock,
		TradePrice:     100,
		TradeDate:      disclosed.AddDate(0, 0, -5),
		DisclosureDate: disclosed,
		SizeEstimate:   32500,
		Source:         "senate_efd",
		Politician:     politician,
	}
}

func TestReplayerDueIsOrderedAndAtMostOnce(t *testing.T) {
	r := NewReplayer([]contracts.Signal{
		buySignal("MSFT", "B. Smith", day(2024, time.January, 5)),
		buySignal("AAPL", "A. Jones", day(2024, time.January, 3)),
		buySignal("NVDA", "C. Brown", day(2024, time.January, 10)),
	})

	due := r.Due(day(2024, time.January, 5))
	if len(due) != 2 {
		t.Fatalf("expected 2 due signals, got %d", len(due))
	}
	if due[0].Ticker != "AAPL" || due[1].Ticker != "MSFT" {
		t.Errorf("wrong order: %s, %s", due[0].Ticker, due[1].Ticker)
	}

	r.MarkProcessed(due[0].ID)
	due = r.Due(day(2024, time.January, 5))
	if len(due) != 1 || due[0].Ticker != "MSFT" {
		t.Fatalf("processed signal delivered again: %+v", due)
	}

	if got := r.PendingCount(); got != 2 {
		t.Errorf("pending = %d, want 2", got)
	}
}

func TestReplayerUnprocessedSignalStaysDue(t *testing.T) {
	r := NewReplayer([]contracts.Signal{
		buySignal("AAPL", "A. Jones", day(2024, time.January, 3)),
	})

	for i := 0; i < 3; i++ {
		due := r.Due(day(2024, time.January, 3+i))
		if len(due) != 1 {
			t.Fatalf("day %d: expected signal still due, got %d", i, len(due))
		}
	}
}

func TestReplayerConfirmationCount(t *testing.T) {
	r := NewReplayer([]contracts.Signal{
		buySignal("AAPL", "A. Jones", day(2024, time.January, 3)),
		buySignal("AAPL", "B. Smith", day(2024, time.January, 8)),
		buySignal("AAPL", "a. jones", day(2024, time.January, 9)), // same person, case differs
		buySignal("MSFT", "C. Brown", day(2024, time.January, 9)),
	})

	sig := buySignal("AAPL", "A. Jones", day(2024, time.January, 3))

	if got := r.ConfirmationCount(sig, day(2024, time.January, 3)); got != 1 {
		t.Errorf("day 3: count = %d, want 1", got)
	}
	if got := r.ConfirmationCount(sig, day(2024, time.January, 9)); got != 2 {
		t.Errorf("day 9: count = %d, want 2 (case-insensitive politicians)", got)
	}

	// disclosures beyond the window stop counting
	if got := r.ConfirmationCount(sig, day(2024, time.March, 1)); got != 1 {
		t.Errorf("after window: count = %d, want 1", got)
	}
}

func TestReplayerReset(t *testing.T) {
	r := NewReplayer([]contracts.Signal{
		buySignal("AAPL", "A. Jones", day(2024, time.January, 3)),
	})
	due := r.Due(day(2024, time.January, 3))
	r.MarkProcessed(due[0].ID)
	if r.PendingCount() != 0 {
		t.Fatal("expected no pending signals")
	}

	r.Reset()
	if r.PendingCount() != 1 {
		t.Error("reset did not restore pending signals")
	}
}
