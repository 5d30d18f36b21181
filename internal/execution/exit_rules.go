// Package execution holds the exit-condition state machine and the
// trade-execution worker client. Exit evaluation is pure apart from the
// two position-local fields it owns: the monotonic highest-price mark and
// the partial-sold flag.
package execution

import (
	"time"

	"github.com/hadoku/trader/internal/contracts"
)

// fullSellPct marks a complete liquidation
const fullSellPct = 100.0

// EvaluateExit runs the daily exit checks for one open position against
// the current price, in fixed priority: stop-loss, take-profit, max-hold
// time exit, soft stop. The first match wins and evaluation stops for
// this position for the day. Returns nil when no rule fires.
//
// The highest-price mark is updated on every evaluation, whether or not
// anything triggers; the trailing stop depends on it.
//
// Callers must not invoke this without a price for the day - a position
// with no price is simply skipped and re-evaluated tomorrow.
func EvaluateExit(spec contracts.ExitSpec, pos *contracts.Position, price float64, asOf time.Time) *contracts.ExitDecision {
	pos.CurrentPrice = price
	if price > pos.HighestPrice {
		pos.HighestPrice = price
	}

	if stopLossTriggered(spec, pos, price) {
		return &contracts.ExitDecision{Reason: contracts.ExitStopLoss, SellPct: fullSellPct}
	}

	if decision := takeProfitDecision(spec.TakeProfit, pos, price); decision != nil {
		return decision
	}

	daysHeld := pos.DaysHeld(asOf)

	if spec.MaxHoldDays > 0 && daysHeld >= spec.MaxHoldDays {
		return &contracts.ExitDecision{Reason: contracts.ExitTimeLimit, SellPct: fullSellPct}
	}

	// Soft stop: the position has had its chance and gone nowhere
	if spec.SoftStopDays > 0 && daysHeld >= spec.SoftStopDays && pos.UnrealizedPct() <= 0 {
		return &contracts.ExitDecision{Reason: contracts.ExitSoftStop, SellPct: fullSellPct}
	}

	return nil
}

func stopLossTriggered(spec contracts.ExitSpec, pos *contracts.Position, price float64) bool {
	threshold := spec.StopLossPct / 100
	if threshold <= 0 {
		return false
	}

	switch spec.StopLossMode {
	case contracts.StopTrailing:
		if pos.HighestPrice <= 0 {
			return false
		}
		drawdown := (pos.HighestPrice - price) / pos.HighestPrice
		return drawdown >= threshold

	default: // fixed
		if pos.EntryPrice <= 0 {
			return false
		}
		ret := (price - pos.EntryPrice) / pos.EntryPrice
		return ret <= -threshold
	}
}

// takeProfitDecision checks the two-tier ladder. The second (higher)
// tier closes the whole position; the first tier sells the configured
// fraction exactly once, guarded by the partial-sold flag.
func takeProfitDecision(tp *contracts.TakeProfitSpec, pos *contracts.Position, price float64) *contracts.ExitDecision {
	if tp == nil || pos.EntryPrice <= 0 {
		return nil
	}

	retPct := (price - pos.EntryPrice) / pos.EntryPrice * 100

	if retPct >= tp.SecondPct {
		return &contracts.ExitDecision{Reason: contracts.ExitTakeProfit, SellPct: fullSellPct}
	}

	if retPct >= tp.FirstPct && !pos.PartialSold {
		pos.PartialSold = true
		return &contracts.ExitDecision{Reason: contracts.ExitTakeProfit, SellPct: tp.FirstSellPct}
	}

	return nil
}
