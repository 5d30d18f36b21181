package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestTopUpOncePerCalendarMonth(t *testing.T) {
	p := NewPortfolio("test")

	if !p.TopUpIfNewMonth(day(2024, time.January, 1), 1000) {
		t.Fatal("first top-up rejected")
	}
	// every later day of the same month is a no-op
	for d := 2; d <= 31; d++ {
		if p.TopUpIfNewMonth(day(2024, time.January, d), 1000) {
			t.Fatalf("duplicate top-up on day %d", d)
		}
	}
	if !p.TopUpIfNewMonth(day(2024, time.February, 1), 1000) {
		t.Fatal("month transition did not top up")
	}

	if !almostEqual(p.Cash(), 2000) {
		t.Errorf("cash = %.2f, want 2000", p.Cash())
	}
	if !almostEqual(p.Contributed(), 2000) {
		t.Errorf("contributed = %.2f, want 2000", p.Contributed())
	}
}

func TestOpenDebitsCashAndRejectsOverdraft(t *testing.T) {
	p := NewPortfolio("test")
	p.TopUpIfNewMonth(day(2024, time.January, 1), 1000)

	pos, err := p.Open("AAPL", 400, 100, day(2024, time.January, 2))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !almostEqual(pos.Shares, 4) {
		t.Errorf("shares = %v, want 4", pos.Shares)
	}
	if !almostEqual(p.Cash(), 600) {
		t.Errorf("cash = %.2f, want 600", p.Cash())
	}

	if _, err := p.Open("MSFT", 601, 100, day(2024, time.January, 2)); err == nil {
		t.Error("overdraft buy accepted")
	}
	if _, err := p.Open("MSFT", 100, 0, day(2024, time.January, 2)); err == nil {
		t.Error("zero-price buy accepted")
	}
}

func TestFullCloseRealizesProfit(t *testing.T) {
	p := NewPortfolio("test")
	p.TopUpIfNewMonth(day(2024, time.January, 1), 1000)
	pos, _ := p.Open("AAPL", 1000, 100, day(2024, time.January, 2))

	trade := p.Close(pos, 100, 120, day(2024, time.January, 20), contracts.ExitTakeProfit)

	if !almostEqual(trade.Profit, 200) {
		t.Errorf("profit = %.2f, want 200", trade.Profit)
	}
	if !almostEqual(trade.ReturnPct, 20) {
		t.Errorf("return = %.2f%%, want 20%%", trade.ReturnPct)
	}
	if trade.HoldingDays != 18 {
		t.Errorf("holding days = %d, want 18", trade.HoldingDays)
	}
	if p.OpenCount() != 0 {
		t.Error("fully closed position still open")
	}
	if !almostEqual(p.Cash(), 1200) {
		t.Errorf("cash = %.2f, want 1200", p.Cash())
	}
}

func TestPartialCloseShrinksPosition(t *testing.T) {
	p := NewPortfolio("test")
	p.TopUpIfNewMonth(day(2024, time.January, 1), 1000)
	pos, _ := p.Open("AAPL", 1000, 100, day(2024, time.January, 2))

	trade := p.Close(pos, 50, 110, day(2024, time.January, 10), contracts.ExitTakeProfit)

	if !almostEqual(trade.Shares, 5) {
		t.Errorf("sold shares = %v, want 5", trade.Shares)
	}
	if !almostEqual(trade.Profit, 50) {
		t.Errorf("profit = %.2f, want 50", trade.Profit)
	}
	if p.OpenCount() != 1 {
		t.Fatal("partial close removed the position")
	}
	if !almostEqual(pos.Shares, 5) {
		t.Errorf("remaining shares = %v, want 5", pos.Shares)
	}
	if !almostEqual(p.Cash(), 550) {
		t.Errorf("cash = %.2f, want 550", p.Cash())
	}
}

func TestSnapshotMarksToMarket(t *testing.T) {
	p := NewPortfolio("test")
	p.TopUpIfNewMonth(day(2024, time.January, 1), 1000)
	pos, _ := p.Open("AAPL", 600, 100, day(2024, time.January, 2))
	pos.CurrentPrice = 110

	snap := p.TakeSnapshot(day(2024, time.January, 3))

	if !almostEqual(snap.Cash, 400) {
		t.Errorf("cash = %.2f, want 400", snap.Cash)
	}
	if !almostEqual(snap.PositionsValue, 660) {
		t.Errorf("positions value = %.2f, want 660", snap.PositionsValue)
	}
	if !almostEqual(snap.TotalValue, 1060) {
		t.Errorf("total = %.2f, want 1060", snap.TotalValue)
	}
	if len(p.Snapshots()) != 1 {
		t.Error("snapshot not recorded")
	}
}

func TestTickerCountAndFind(t *testing.T) {
	p := NewPortfolio("test")
	p.TopUpIfNewMonth(day(2024, time.January, 1), 1000)
	p.Open("AAPL", 200, 100, day(2024, time.January, 2))
	p.Open("aapl", 200, 105, day(2024, time.January, 3))
	p.Open("MSFT", 200, 50, day(2024, time.January, 3))

	if got := p.TickerCount("AAPL"); got != 2 {
		t.Errorf("ticker count = %d, want 2", got)
	}
	pos := p.FindPosition("AAPL")
	if pos == nil || !almostEqual(pos.EntryPrice, 100) {
		t.Error("FindPosition did not return the oldest position")
	}
	if p.FindPosition("NVDA") != nil {
		t.Error("found a position that does not exist")
	}
}

func TestMaxDrawdown(t *testing.T) {
	curve := []contracts.Snapshot{
		{TotalValue: 1000},
		{TotalValue: 1200},
		{TotalValue: 900},
		{TotalValue: 1100},
		{TotalValue: 1050},
	}
	got := maxDrawdownPct(curve)
	want := (1200.0 - 900.0) / 1200.0 * 100
	if !almostEqual(got, want) {
		t.Errorf("max drawdown = %.4f, want %.4f", got, want)
	}

	if maxDrawdownPct(nil) != 0 {
		t.Error("empty curve should have zero drawdown")
	}
}
