package contracts

import "time"

// Position is an open holding owned by exactly one agent's portfolio.
// Created on execution, mutated on price updates and partial sells,
// removed on full close.
type Position struct {
	Ticker     string    `json:"ticker"`
	Shares     float64   `json:"shares"`
	EntryPrice float64   `json:"entry_price"`
	EntryDate  time.Time `json:"entry_date"`

	CurrentPrice float64 `json:"current_price"`

	// HighestPrice is the highest price ever observed for this position.
	// It only moves up; the trailing stop is referenced to it.
	HighestPrice float64 `json:"highest_price"`

	// PartialSold guards the first take-profit tier against firing twice
	PartialSold bool `json:"partial_sold"`
}

// CostBasis returns shares times entry price
func (p *Position) CostBasis() float64 {
	return p.Shares * p.EntryPrice
}

// MarketValue returns shares times current price
func (p *Position) MarketValue() float64 {
	return p.Shares * p.CurrentPrice
}

// UnrealizedPct returns the percent return from entry to current price
func (p *Position) UnrealizedPct() float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return (p.CurrentPrice - p.EntryPrice) / p.EntryPrice * 100
}

// DaysHeld counts calendar days since entry
func (p *Position) DaysHeld(asOf time.Time) int {
	return daysBetween(p.EntryDate, asOf)
}

// ExitReason tags why a position was (partially) liquidated
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitTimeLimit  ExitReason = "time_exit"
	ExitSoftStop   ExitReason = "soft_stop"
	ExitFollowSell ExitReason = "follow_sell" // the politician disclosed a sell
)

// ExitDecision is the exit state machine's verdict for one position on
// one day. SellPct is 100 for a full close or the configured partial
// percent for a tier-one take-profit.
type ExitDecision struct {
	Reason  ExitReason `json:"reason"`
	SellPct float64    `json:"sell_pct"`
}

// ClosedTrade is the immutable record produced when a position is fully
// or partially closed.
type ClosedTrade struct {
	Ticker      string     `json:"ticker"`
	Shares      float64    `json:"shares"`
	EntryPrice  float64    `json:"entry_price"`
	EntryDate   time.Time  `json:"entry_date"`
	ExitPrice   float64    `json:"exit_price"`
	ExitDate    time.Time  `json:"exit_date"`
	Profit      float64    `json:"profit"`
	ReturnPct   float64    `json:"return_pct"`
	HoldingDays int        `json:"holding_days"`
	Reason      ExitReason `json:"reason"`
}

// Snapshot is one end-of-day portfolio record for time-series analysis
type Snapshot struct {
	Date           time.Time `json:"date"`
	Cash           float64   `json:"cash"`
	PositionsValue float64   `json:"positions_value"`
	TotalValue     float64   `json:"total_value"`
}
