package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/logger"
)

type fakePrices struct {
	byDay map[string]map[string]float64
}

func newFakePrices() *fakePrices {
	return &fakePrices{byDay: make(map[string]map[string]float64)}
}

// set fills every day in [from, to] with the price
func (f *fakePrices) set(ticker string, from, to time.Time, price float64) {
	if f.byDay[ticker] == nil {
		f.byDay[ticker] = make(map[string]float64)
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		f.byDay[ticker][d.Format("2006-01-02")] = price
	}
}

func (f *fakePrices) GetPrice(ticker string, date time.Time) (float64, bool) {
	p, ok := f.byDay[ticker][date.Format("2006-01-02")]
	return p, ok
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func passFailAgent(id string, budget float64) *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:               id,
		Name:             id,
		MonthlyBudget:    budget,
		AssetTypes:       []contracts.AssetType{contracts.AssetStock},
		MaxSignalAgeDays: 45,
		MaxPriceMovePct:  50,
		Sizing:           contracts.SizingSpec{Mode: contracts.SizeEqualSplit},
	}
}

func runEngine(t *testing.T, agents []*contracts.AgentConfig, signals []contracts.Signal, prices contracts.PriceProvider, opts Options) (*Engine, *Report) {
	t.Helper()
	eng, err := NewEngine(agents, signals, prices, nil, testLogger(), opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return eng, report
}

func TestRunStopLossAndBenchmark(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.February, 29)

	prices := newFakePrices()
	prices.set("AAPL", start, day(2024, time.January, 12), 100)
	prices.set("AAPL", day(2024, time.January, 13), end, 85)
	prices.set("SPY", start, day(2024, time.February, 28), 400)
	prices.set("SPY", day(2024, time.February, 29), end, 420)

	agent := passFailAgent("alpha", 1000)
	agent.Exit = contracts.ExitSpec{StopLossMode: contracts.StopFixed, StopLossPct: 10}

	signals := []contracts.Signal{buySignal("AAPL", "A. Jones", day(2024, time.January, 2))}

	eng, report := runEngine(t, []*contracts.AgentConfig{agent}, signals, prices, Options{
		Start: start, End: end, BenchmarkTicker: "SPY",
	})

	topUps := eng.Events().ByType(contracts.EventBudgetTopUp)
	if len(topUps) != 2 {
		t.Fatalf("top-ups = %d, want 2 (one per calendar month)", len(topUps))
	}

	executed := eng.Events().ByType(contracts.EventTradeExecuted)
	if len(executed) != 1 {
		t.Fatalf("executions = %d, want 1", len(executed))
	}
	if !almostEqual(executed[0].Amount, 1000) || !almostEqual(executed[0].Shares, 10) {
		t.Errorf("execution amount=%.2f shares=%v, want 1000 and 10", executed[0].Amount, executed[0].Shares)
	}

	exits := eng.Events().ByType(contracts.EventPositionExit)
	if len(exits) != 1 {
		t.Fatalf("exits = %d, want 1", len(exits))
	}
	if exits[0].ExitReason != contracts.ExitStopLoss {
		t.Errorf("exit reason = %s, want stop_loss", exits[0].ExitReason)
	}
	// the drop lands on a Saturday; the stop fires the following Monday
	if !exits[0].Date.Equal(day(2024, time.January, 15)) {
		t.Errorf("exit date = %v, want 2024-01-15", exits[0].Date)
	}
	if !almostEqual(exits[0].Profit, -150) {
		t.Errorf("exit profit = %.2f, want -150", exits[0].Profit)
	}

	if len(report.Agents) != 1 {
		t.Fatalf("agent reports = %d, want 1", len(report.Agents))
	}
	ar := report.Agents[0]
	if !almostEqual(ar.Contributed, 2000) {
		t.Errorf("contributed = %.2f, want 2000", ar.Contributed)
	}
	if !almostEqual(ar.FinalValue, 1850) {
		t.Errorf("final value = %.2f, want 1850", ar.FinalValue)
	}
	if !almostEqual(ar.TotalReturnPct, -7.5) {
		t.Errorf("return = %.4f%%, want -7.5%%", ar.TotalReturnPct)
	}
	if ar.TotalTrades != 1 || ar.Wins != 0 || ar.Losses != 1 {
		t.Errorf("trades=%d wins=%d losses=%d, want 1/0/1", ar.TotalTrades, ar.Wins, ar.Losses)
	}
	if !almostEqual(ar.MaxDrawdownPct, 15) {
		t.Errorf("max drawdown = %.4f%%, want 15%%", ar.MaxDrawdownPct)
	}
	if !almostEqual(ar.BenchmarkReturnPct, 5) {
		t.Errorf("benchmark = %.4f%%, want 5%%", ar.BenchmarkReturnPct)
	}
	if !almostEqual(ar.AlphaPct, -12.5) {
		t.Errorf("alpha = %.4f%%, want -12.5%%", ar.AlphaPct)
	}
}

func TestSignalWaitsForFirstQuote(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.January, 31)

	prices := newFakePrices()
	prices.set("NVDA", day(2024, time.January, 8), end, 100)

	agent := passFailAgent("alpha", 1000)
	signals := []contracts.Signal{buySignal("NVDA", "A. Jones", day(2024, time.January, 2))}

	eng, _ := runEngine(t, []*contracts.AgentConfig{agent}, signals, prices, Options{Start: start, End: end})

	executed := eng.Events().ByType(contracts.EventTradeExecuted)
	if len(executed) != 1 {
		t.Fatalf("executions = %d, want exactly 1", len(executed))
	}
	if !executed[0].Date.Equal(day(2024, time.January, 8)) {
		t.Errorf("executed on %v, want first quoted day 2024-01-08", executed[0].Date)
	}

	received := eng.Events().ByType(contracts.EventSignalReceived)
	if len(received) != 1 {
		t.Errorf("signal_received = %d, want 1 despite retries", len(received))
	}
}

func TestScoreThresholdsDriveDecisions(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.January, 10)

	prices := newFakePrices()
	prices.set("AAPL", start, end, 100)

	// the signal's filing lag is 5 days; FastDays 7 makes every agent
	// score exactly the fast score
	scoring := &contracts.ScoringSpec{
		FilingSpeed: &contracts.FilingSpeedSpec{
			Weight: 1, FastDays: 7, SlowDays: 30, FastScore: 0.9, SlowScore: 0.3,
		},
	}

	full := passFailAgent("full", 1000)
	full.Scoring = scoring
	full.ExecuteThreshold = 0.85
	full.HalfSizeThreshold = 0.5

	half := passFailAgent("half", 1000)
	half.Scoring = scoring
	half.ExecuteThreshold = 0.95
	half.HalfSizeThreshold = 0.5

	skip := passFailAgent("skip", 1000)
	skip.Scoring = scoring
	skip.ExecuteThreshold = 0.99
	skip.HalfSizeThreshold = 0.95

	signals := []contracts.Signal{buySignal("AAPL", "A. Jones", day(2024, time.January, 2))}

	eng, _ := runEngine(t, []*contracts.AgentConfig{full, half, skip}, signals, prices, Options{Start: start, End: end})

	for _, e := range eng.Events().ByAgent("full") {
		if e.Type == contracts.EventAgentDecision {
			if e.Decision != contracts.DecisionExecute {
				t.Errorf("full agent decision = %s, want execute", e.Decision)
			}
			if e.Score == nil || !almostEqual(e.Score.Score, 0.9) {
				t.Errorf("full agent score missing or wrong: %+v", e.Score)
			}
		}
		if e.Type == contracts.EventTradeExecuted && !almostEqual(e.Amount, 1000) {
			t.Errorf("full agent amount = %.2f, want 1000", e.Amount)
		}
	}

	for _, e := range eng.Events().ByAgent("half") {
		if e.Type == contracts.EventAgentDecision && e.Decision != contracts.DecisionHalfSize {
			t.Errorf("half agent decision = %s, want half_size", e.Decision)
		}
		if e.Type == contracts.EventTradeExecuted && !almostEqual(e.Amount, 500) {
			t.Errorf("half agent amount = %.2f, want 500", e.Amount)
		}
	}

	skipDecisions := 0
	for _, e := range eng.Events().ByAgent("skip") {
		if e.Type == contracts.EventTradeExecuted {
			t.Error("below-threshold agent executed a trade")
		}
		if e.Type == contracts.EventAgentDecision {
			skipDecisions++
			if e.Decision != contracts.DecisionSkip || e.SkipReason != contracts.SkipBelowThreshold {
				t.Errorf("skip agent decision = %s/%s, want skip/below_threshold", e.Decision, e.SkipReason)
			}
		}
	}
	if skipDecisions != 1 {
		t.Errorf("skip agent decisions = %d, want 1", skipDecisions)
	}
}

func TestDisclosedSellClosesPosition(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.January, 31)

	prices := newFakePrices()
	prices.set("AAPL", start, end, 100)
	prices.set("MSFT", start, end, 50)

	agent := passFailAgent("alpha", 1000)

	buy := buySignal("AAPL", "A. Jones", day(2024, time.January, 2))
	sell := buySignal("AAPL", "A. Jones", day(2024, time.January, 9))
	sell.Action = contracts.ActionSell
	orphan := buySignal("MSFT", "A. Jones", day(2024, time.January, 9))
	orphan.Action = contracts.ActionSell

	eng, _ := runEngine(t, []*contracts.AgentConfig{agent}, []contracts.Signal{buy, sell, orphan}, prices, Options{Start: start, End: end})

	exits := eng.Events().ByType(contracts.EventPositionExit)
	if len(exits) != 1 {
		t.Fatalf("exits = %d, want 1", len(exits))
	}
	if exits[0].ExitReason != contracts.ExitFollowSell || !almostEqual(exits[0].SellPct, 100) {
		t.Errorf("exit = %s/%.0f%%, want follow_sell full close", exits[0].ExitReason, exits[0].SellPct)
	}
	if !exits[0].Date.Equal(day(2024, time.January, 9)) {
		t.Errorf("exit date = %v, want 2024-01-09", exits[0].Date)
	}

	sawOrphanSkip := false
	for _, e := range eng.Events().ByAgent("alpha") {
		if e.Type == contracts.EventAgentDecision && e.Ticker == "MSFT" && e.SkipReason == contracts.SkipSellNoPosition {
			sawOrphanSkip = true
		}
	}
	if !sawOrphanSkip {
		t.Error("sell without position was not recorded as a skip")
	}
}

func TestMaxOpenPositionsConstraint(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.January, 10)

	prices := newFakePrices()
	prices.set("AAPL", start, end, 100)
	prices.set("MSFT", start, end, 50)

	agent := passFailAgent("alpha", 1000)
	agent.Sizing.MaxOpenPositions = 1

	signals := []contracts.Signal{
		buySignal("AAPL", "A. Jones", day(2024, time.January, 2)),
		buySignal("MSFT", "B. Smith", day(2024, time.January, 2)),
	}

	eng, _ := runEngine(t, []*contracts.AgentConfig{agent}, signals, prices, Options{Start: start, End: end})

	executed := eng.Events().ByType(contracts.EventTradeExecuted)
	if len(executed) != 1 {
		t.Fatalf("executions = %d, want 1", len(executed))
	}
	// two accepted signals split the budget before the cap applies
	if executed[0].Ticker != "AAPL" || !almostEqual(executed[0].Amount, 500) {
		t.Errorf("executed %s for %.2f, want AAPL for 500", executed[0].Ticker, executed[0].Amount)
	}

	sawCapSkip := false
	for _, e := range eng.Events().ByType(contracts.EventAgentDecision) {
		if e.Ticker == "MSFT" && e.SkipReason == contracts.SkipMaxPositions {
			sawCapSkip = true
		}
	}
	if !sawCapSkip {
		t.Error("position cap skip not recorded")
	}
}

func TestNewEngineValidation(t *testing.T) {
	prices := newFakePrices()
	log := testLogger()

	if _, err := NewEngine(nil, nil, prices, nil, log, Options{Start: day(2024, time.January, 1), End: day(2024, time.January, 2)}); err == nil {
		t.Error("no agents accepted")
	}

	a := passFailAgent("dup", 100)
	b := passFailAgent("dup", 100)
	if _, err := NewEngine([]*contracts.AgentConfig{a, b}, nil, prices, nil, log, Options{Start: day(2024, time.January, 1), End: day(2024, time.January, 2)}); err == nil {
		t.Error("duplicate agent ids accepted")
	}

	if _, err := NewEngine([]*contracts.AgentConfig{a}, nil, prices, nil, log, Options{Start: day(2024, time.January, 2), End: day(2024, time.January, 1)}); err == nil {
		t.Error("inverted date range accepted")
	}
}
