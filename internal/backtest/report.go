package backtest

import (
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// AgentReport summarizes one agent's run. Open positions count at their
// last mark; only closed trades feed the win rate.
type AgentReport struct {
	AgentID            string  `json:"agent_id"`
	Contributed        float64 `json:"contributed"`
	FinalValue         float64 `json:"final_value"`
	Cash               float64 `json:"cash"`
	TotalReturnPct     float64 `json:"total_return_pct"`
	TotalTrades        int     `json:"total_trades"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	WinRatePct         float64 `json:"win_rate_pct"`
	MaxDrawdownPct     float64 `json:"max_drawdown_pct"`
	OpenPositions      int     `json:"open_positions"`
	BenchmarkReturnPct float64 `json:"benchmark_return_pct"`
	AlphaPct           float64 `json:"alpha_pct"`
}

// Report is the full result of a simulation run.
type Report struct {
	Start              time.Time     `json:"start"`
	End                time.Time     `json:"end"`
	BenchmarkTicker    string        `json:"benchmark_ticker,omitempty"`
	BenchmarkReturnPct float64       `json:"benchmark_return_pct"`
	Agents             []AgentReport `json:"agents"`
	EventCount         int           `json:"event_count"`
}

// buildReport runs after the day loop completes. It only reads state, so
// calling it again yields the same report.
func (e *Engine) buildReport() *Report {
	benchmark := e.benchmarkReturnPct()

	report := &Report{
		Start:              e.clock.Start(),
		End:                e.clock.End(),
		BenchmarkTicker:    e.opts.BenchmarkTicker,
		BenchmarkReturnPct: benchmark,
		EventCount:         e.events.Len(),
	}

	for _, agent := range e.agents {
		book := e.books[agent.ID]

		wins, losses := 0, 0
		for _, trade := range book.ClosedTrades() {
			if trade.Profit > 0 {
				wins++
			} else {
				losses++
			}
		}
		total := wins + losses
		winRate := 0.0
		if total > 0 {
			winRate = float64(wins) / float64(total) * 100
		}

		finalValue := book.TotalValue()
		returnPct := 0.0
		if book.Contributed() > 0 {
			returnPct = (finalValue - book.Contributed()) / book.Contributed() * 100
		}

		report.Agents = append(report.Agents, AgentReport{
			AgentID:            agent.ID,
			Contributed:        book.Contributed(),
			FinalValue:         finalValue,
			Cash:               book.Cash(),
			TotalReturnPct:     returnPct,
			TotalTrades:        total,
			Wins:               wins,
			Losses:             losses,
			WinRatePct:         winRate,
			MaxDrawdownPct:     maxDrawdownPct(book.Snapshots()),
			OpenPositions:      book.OpenCount(),
			BenchmarkReturnPct: benchmark,
			AlphaPct:           returnPct - benchmark,
		})
	}
	return report
}

// benchmarkReturnPct replays the calendar read-only to find the first
// and last days the benchmark ticker has a quote, then computes the
// buy-and-hold return between them.
func (e *Engine) benchmarkReturnPct() float64 {
	if e.opts.BenchmarkTicker == "" {
		return 0
	}

	var first, last float64
	e.clock.Reset()
	for e.clock.Running() {
		if e.clock.IsMarketDay() {
			if price, ok := e.prices.GetPrice(e.opts.BenchmarkTicker, e.clock.Current()); ok {
				if first == 0 {
					first = price
				}
				last = price
			}
		}
		e.clock.Advance()
	}
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// maxDrawdownPct is the largest peak-to-trough decline of the equity
// curve, as a positive percent. Monthly deposits raise the curve and are
// not netted out; drawdown measures the worst observed drop in value.
func maxDrawdownPct(curve []contracts.Snapshot) float64 {
	peak := 0.0
	worst := 0.0
	for _, snap := range curve {
		if snap.TotalValue > peak {
			peak = snap.TotalValue
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - snap.TotalValue) / peak * 100
		if dd > worst {
			worst = dd
		}
	}
	return worst
}
