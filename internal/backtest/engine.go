// Package backtest replays historical disclosure signals through each
// agent's full decision pipeline on a simulated calendar, tracking one
// isolated portfolio per agent and recording an auditable event log.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/execution"
	"github.com/hadoku/trader/internal/filter"
	"github.com/hadoku/trader/internal/scoring"
	"github.com/hadoku/trader/internal/sizing"
	"github.com/hadoku/trader/pkg/logger"
)

// Options configures a single simulation run.
type Options struct {
	Start time.Time
	End   time.Time

	// BenchmarkTicker is bought and held over the same span to compute
	// per-agent alpha. Empty disables the benchmark.
	BenchmarkTicker string

	// EventSink, when set, receives every event as it is logged, with
	// its sequence number assigned. Sinks must not block.
	EventSink func(contracts.Event)
}

// Engine drives the simulation: one pass over every calendar day in the
// range, weekends skipped, each day processing due signals and then the
// exit rules for every open position.
type Engine struct {
	agents   []*contracts.AgentConfig
	prices   contracts.PriceProvider
	stats    contracts.StatsProvider
	log      *logger.Logger
	opts     Options
	clock    *Clock
	replayer *Replayer
	books    map[string]*Portfolio
	events   *EventLog
	received map[int]bool
}

// NewEngine wires a run. stats may be nil when no track records are
// available; skill components then fall back to their default scores.
func NewEngine(agents []*contracts.AgentConfig, signals []contracts.Signal, prices contracts.PriceProvider, stats contracts.StatsProvider, log *logger.Logger, opts Options) (*Engine, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("backtest: no agents configured")
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("backtest: end %s before start %s",
			opts.End.Format("2006-01-02"), opts.Start.Format("2006-01-02"))
	}
	seen := make(map[string]bool, len(agents))
	books := make(map[string]*Portfolio, len(agents))
	for _, a := range agents {
		if seen[a.ID] {
			return nil, fmt.Errorf("backtest: duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
		books[a.ID] = NewPortfolio(a.ID)
	}
	return &Engine{
		agents:   agents,
		prices:   prices,
		stats:    stats,
		log:      log,
		opts:     opts,
		clock:    NewClock(opts.Start, opts.End),
		replayer: NewReplayer(signals),
		books:    books,
		events:   NewEventLog(),
		received: make(map[int]bool),
	}, nil
}

// Events exposes the run's event log.
func (e *Engine) Events() *EventLog { return e.events }

func (e *Engine) record(ev contracts.Event) {
	stamped := e.events.Append(ev)
	if e.opts.EventSink != nil {
		e.opts.EventSink(stamped)
	}
}

// Portfolio returns the book for one agent, or nil.
func (e *Engine) Portfolio(agentID string) *Portfolio { return e.books[agentID] }

// Run executes the simulation and builds the final report. The context
// is checked once per simulated day so long runs stay cancellable.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.log.WithFields(map[string]interface{}{
		"start":  e.opts.Start.Format("2006-01-02"),
		"end":    e.opts.End.Format("2006-01-02"),
		"agents": len(e.agents),
	}).Info("backtest started")

	for e.clock.Running() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := e.clock.Current()
		if !e.clock.IsMarketDay() {
			e.clock.Advance()
			continue
		}

		e.applyTopUps(date)
		e.processSignals(date)
		e.processExits(date)
		e.recordDailySummaries(date)

		e.clock.Advance()
	}

	report := e.buildReport()
	e.log.WithFields(map[string]interface{}{
		"events":  e.events.Len(),
		"pending": e.replayer.PendingCount(),
	}).Info("backtest finished")
	return report, nil
}

// applyTopUps deposits each agent's monthly budget on the first market
// day of every calendar month in the range.
func (e *Engine) applyTopUps(date time.Time) {
	for _, agent := range e.agents {
		book := e.books[agent.ID]
		if book.TopUpIfNewMonth(date, agent.MonthlyBudget) {
			e.record(contracts.Event{
				Date:    date,
				Type:    contracts.EventBudgetTopUp,
				AgentID: agent.ID,
				Amount:  agent.MonthlyBudget,
				Cash:    book.Cash(),
			})
		}
	}
}

// processSignals delivers every due signal to every agent. A signal
// stays pending while its ticker has no quote for the day; once priced
// it is evaluated by all agents and retired.
func (e *Engine) processSignals(date time.Time) {
	due := e.replayer.Due(date)
	if len(due) == 0 {
		return
	}

	// equal_split shares the day's budget across every priced signal
	// that clears the agent's filter, counted up front
	acceptedByAgent := make(map[string]int, len(e.agents))
	for _, agent := range e.agents {
		acceptedByAgent[agent.ID] = e.countAccepted(agent, due, date)
	}

	for _, q := range due {
		if !e.received[q.ID] {
			e.received[q.ID] = true
			e.record(contracts.Event{
				Date:   date,
				Type:   contracts.EventSignalReceived,
				Ticker: q.Ticker,
			})
		}

		price, ok := e.prices.GetPrice(q.Ticker, date)
		if !ok {
			e.log.WithFields(map[string]interface{}{
				"ticker": q.Ticker,
				"date":   date.Format("2006-01-02"),
			}).Debug("no quote for due signal, holding")
			continue
		}

		enriched := contracts.Enrich(q.Signal, date, price)
		confirmations := e.replayer.ConfirmationCount(q.Signal, date)

		for _, agent := range e.agents {
			e.evaluateSignal(agent, enriched, price, confirmations, acceptedByAgent[agent.ID], date)
		}
		e.replayer.MarkProcessed(q.ID)
	}
}

// countAccepted counts how many of the day's priced due signals clear
// the agent's filter; equal_split divides the budget across them.
func (e *Engine) countAccepted(agent *contracts.AgentConfig, due []QueuedSignal, date time.Time) int {
	n := 0
	for _, q := range due {
		price, ok := e.prices.GetPrice(q.Ticker, date)
		if !ok {
			continue
		}
		enriched := contracts.Enrich(q.Signal, date, price)
		if filter.Evaluate(agent, enriched).Pass {
			n++
		}
	}
	return n
}

func (e *Engine) evaluateSignal(agent *contracts.AgentConfig, sig contracts.EnrichedSignal, price float64, confirmations, acceptedCount int, date time.Time) {
	book := e.books[agent.ID]

	if res := filter.Evaluate(agent, sig); !res.Pass {
		e.record(contracts.Event{
			Date:         date,
			Type:         contracts.EventAgentDecision,
			AgentID:      agent.ID,
			Ticker:       sig.Ticker,
			Decision:     contracts.DecisionReject,
			FilterReason: res.Reason,
		})
		return
	}

	if sig.Action == contracts.ActionSell {
		e.followSell(agent, sig, price, date)
		return
	}

	var scorePtr *float64
	var scoreResult *contracts.ScoreResult
	halfSize := false
	if !agent.PassFail() {
		in := scoring.Inputs{ConfirmationCount: confirmations}
		if e.stats != nil {
			if st, ok := e.stats.GetStats(sig.Politician); ok {
				in.Stats = &st
			}
		}
		result := scoring.Score(agent.Scoring, sig, in)
		scoreResult = &result
		switch {
		case result.Score >= agent.ExecuteThreshold:
		case result.Score >= agent.HalfSizeThreshold:
			halfSize = true
		default:
			e.skip(agent, sig.Ticker, contracts.SkipBelowThreshold, scoreResult, date)
			return
		}
		s := result.Score
		scorePtr = &s
	}

	if limit := agent.Sizing.MaxOpenPositions; limit > 0 && book.OpenCount() >= limit {
		e.skip(agent, sig.Ticker, contracts.SkipMaxPositions, scoreResult, date)
		return
	}
	if limit := agent.Sizing.MaxPerTicker; limit > 0 && book.TickerCount(sig.Ticker) >= limit {
		e.skip(agent, sig.Ticker, contracts.SkipMaxPerTicker, scoreResult, date)
		return
	}

	amount, err := sizing.Calculate(agent, sizing.Request{
		Score:             scorePtr,
		Remaining:         book.Cash(),
		AcceptedCount:     acceptedCount,
		HalfSize:          halfSize,
		CongressionalSize: sig.SizeEstimate,
	})
	if err != nil {
		e.log.WithError(err).WithField("agent", agent.ID).Error("sizing failed")
		e.skip(agent, sig.Ticker, contracts.SkipZeroSize, scoreResult, date)
		return
	}
	if amount <= 0 {
		e.skip(agent, sig.Ticker, contracts.SkipZeroSize, scoreResult, date)
		return
	}

	pos, err := book.Open(sig.Ticker, amount, price, date)
	if err != nil {
		e.log.WithError(err).WithField("agent", agent.ID).Error("open failed")
		return
	}

	decision := contracts.DecisionExecute
	if halfSize {
		decision = contracts.DecisionHalfSize
	}
	e.record(contracts.Event{
		Date:     date,
		Type:     contracts.EventAgentDecision,
		AgentID:  agent.ID,
		Ticker:   sig.Ticker,
		Decision: decision,
		Score:    scoreResult,
	})
	e.record(contracts.Event{
		Date:    date,
		Type:    contracts.EventTradeExecuted,
		AgentID: agent.ID,
		Ticker:  sig.Ticker,
		Amount:  amount,
		Shares:  pos.Shares,
		Price:   price,
		Cash:    book.Cash(),
	})
}

// followSell mirrors a disclosed sell: any open position in the ticker
// is liquidated in full. With nothing to sell the signal is a no-op.
func (e *Engine) followSell(agent *contracts.AgentConfig, sig contracts.EnrichedSignal, price float64, date time.Time) {
	book := e.books[agent.ID]
	pos := book.FindPosition(sig.Ticker)
	if pos == nil {
		e.skip(agent, sig.Ticker, contracts.SkipSellNoPosition, nil, date)
		return
	}
	pos.CurrentPrice = price
	trade := book.Close(pos, 100, price, date, contracts.ExitFollowSell)
	e.record(contracts.Event{
		Date:       date,
		Type:       contracts.EventPositionExit,
		AgentID:    agent.ID,
		Ticker:     sig.Ticker,
		ExitReason: contracts.ExitFollowSell,
		SellPct:    100,
		Price:      price,
		Profit:     trade.Profit,
		Cash:       book.Cash(),
	})
}

func (e *Engine) skip(agent *contracts.AgentConfig, ticker string, reason contracts.SkipReason, score *contracts.ScoreResult, date time.Time) {
	e.record(contracts.Event{
		Date:       date,
		Type:       contracts.EventAgentDecision,
		AgentID:    agent.ID,
		Ticker:     ticker,
		Decision:   contracts.DecisionSkip,
		SkipReason: reason,
		Score:      score,
	})
}

// processExits runs the exit state machine over every open position.
// Positions without a quote keep their last mark and are re-checked the
// next market day.
func (e *Engine) processExits(date time.Time) {
	for _, agent := range e.agents {
		book := e.books[agent.ID]
		// Close mutates the position slice, so walk a copy.
		open := make([]*contracts.Position, len(book.Positions()))
		copy(open, book.Positions())
		for _, pos := range open {
			price, ok := e.prices.GetPrice(pos.Ticker, date)
			if !ok {
				continue
			}
			decision := execution.EvaluateExit(agent.Exit, pos, price, date)
			if decision == nil {
				continue
			}
			trade := book.Close(pos, decision.SellPct, price, date, decision.Reason)
			e.record(contracts.Event{
				Date:       date,
				Type:       contracts.EventPositionExit,
				AgentID:    agent.ID,
				Ticker:     pos.Ticker,
				ExitReason: decision.Reason,
				SellPct:    decision.SellPct,
				Price:      price,
				Profit:     trade.Profit,
				Cash:       book.Cash(),
			})
		}
	}
}

func (e *Engine) recordDailySummaries(date time.Time) {
	for _, agent := range e.agents {
		book := e.books[agent.ID]
		snap := book.TakeSnapshot(date)
		e.record(contracts.Event{
			Date:       date,
			Type:       contracts.EventDailySummary,
			AgentID:    agent.ID,
			Cash:       snap.Cash,
			TotalValue: snap.TotalValue,
			OpenCount:  book.OpenCount(),
		})
	}
}
