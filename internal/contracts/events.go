package contracts

import "time"

// EventType classifies event log entries
type EventType string

const (
	EventSignalReceived EventType = "signal_received"
	EventAgentDecision  EventType = "agent_decision"
	EventTradeExecuted  EventType = "trade_executed"
	EventPositionExit   EventType = "position_exit"
	EventBudgetTopUp    EventType = "budget_top_up"
	EventDailySummary   EventType = "daily_summary"
)

// Decision is the outcome of one agent evaluating one signal
type Decision string

const (
	DecisionExecute  Decision = "execute"
	DecisionHalfSize Decision = "half_size"
	DecisionSkip     Decision = "skip"
	DecisionReject   Decision = "reject"
)

// SkipReason explains a non-executed decision
type SkipReason string

const (
	SkipNoPrice        SkipReason = "no_price"
	SkipBelowThreshold SkipReason = "below_threshold"
	SkipZeroSize       SkipReason = "zero_size"
	SkipMaxPositions   SkipReason = "max_open_positions"
	SkipMaxPerTicker   SkipReason = "max_per_ticker"
	SkipSellNoPosition SkipReason = "sell_without_position"
)

// Event is one append-only entry in the run's chronological event log.
// Optional fields are populated per event type.
type Event struct {
	Seq  int       `json:"seq"`
	Date time.Time `json:"date"`
	Type EventType `json:"type"`

	AgentID string `json:"agent_id,omitempty"`
	Ticker  string `json:"ticker,omitempty"`

	// agent_decision
	Decision     Decision     `json:"decision,omitempty"`
	SkipReason   SkipReason   `json:"skip_reason,omitempty"`
	FilterReason FilterReason `json:"filter_reason,omitempty"`
	Score        *ScoreResult `json:"score,omitempty"`

	// trade_executed / position_exit / budget_top_up
	Amount     float64    `json:"amount,omitempty"`
	Shares     float64    `json:"shares,omitempty"`
	Price      float64    `json:"price,omitempty"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`
	SellPct    float64    `json:"sell_pct,omitempty"`
	Profit     float64    `json:"profit,omitempty"`

	// daily_summary
	Cash       float64 `json:"cash,omitempty"`
	TotalValue float64 `json:"total_value,omitempty"`
	OpenCount  int     `json:"open_count,omitempty"`
}
