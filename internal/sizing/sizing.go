// Package sizing maps a confidence score and the agent's budget state to
// a bounded dollar allocation. Pure functions only: calling Calculate
// twice with identical arguments yields identical output.
package sizing

import (
	"errors"
	"fmt"
	"math"

	"github.com/hadoku/trader/internal/contracts"
)

// Usage errors: raised immediately, never retried, never defaulted.
var (
	ErrScoreRequired = errors.New("sizing mode requires a score")
	ErrUnknownMode   = errors.New("unknown sizing mode")
)

// Request carries the per-signal inputs to one sizing calculation
type Request struct {
	// Score is nil for pass/fail agents; score-driven modes reject nil
	Score *float64

	// Remaining is the agent's unspent budget. Negative means the budget
	// is exhausted and is treated as zero capacity, not an error.
	Remaining float64

	// AcceptedCount is how many signals share the budget (equal_split);
	// values below 1 are treated as 1
	AcceptedCount int

	// HalfSize halves the raw amount before constraints are applied
	HalfSize bool

	// CongressionalSize is the disclosed size estimate (smart_budget)
	CongressionalSize float64

	// CapitalOverride replaces the monthly budget as the sizing basis
	// when > 0 (used when sizing against realized account equity)
	CapitalOverride float64
}

// Calculate returns the dollar amount to allocate, always >= 0 and either
// 0 or >= the configured minimum. The constraint chain runs in fixed
// order for every mode: absolute max, percent of basis, remaining budget,
// minimum threshold. The result is rounded to cents.
func Calculate(cfg *contracts.AgentConfig, req Request) (float64, error) {
	spec := cfg.Sizing

	basis := cfg.MonthlyBudget
	if req.CapitalOverride > 0 {
		basis = req.CapitalOverride
	}

	raw, err := rawAmount(cfg, spec, basis, req)
	if err != nil {
		return 0, err
	}

	if req.HalfSize {
		raw /= 2
	}

	amount := applyConstraints(spec, basis, req.Remaining, raw)

	return round2(amount), nil
}

func rawAmount(cfg *contracts.AgentConfig, spec contracts.SizingSpec, basis float64, req Request) (float64, error) {
	switch spec.Mode {
	case contracts.SizeScoreSquared:
		if req.Score == nil {
			return 0, fmt.Errorf("%w: %s", ErrScoreRequired, spec.Mode)
		}
		score := *req.Score
		return score * score * spec.BaseMultiplier * basis, nil

	case contracts.SizeScoreLinear:
		if req.Score == nil {
			return 0, fmt.Errorf("%w: %s", ErrScoreRequired, spec.Mode)
		}
		amount := spec.BaseAmount * *req.Score
		// Scale with the override so a larger account sizes up
		if req.CapitalOverride > 0 && cfg.MonthlyBudget > 0 {
			amount *= req.CapitalOverride / cfg.MonthlyBudget
		}
		return amount, nil

	case contracts.SizeEqualSplit:
		count := req.AcceptedCount
		if count < 1 {
			count = 1
		}
		return basis / float64(count), nil

	case contracts.SizeSmartBudget:
		return smartBudgetAmount(spec.SmartBudget, basis, req.CongressionalSize), nil

	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}
}

// applyConstraints runs the universal constraint chain. Order matters:
// each cap applies to the output of the previous one, and the minimum
// threshold truncates to exactly zero, never rounds up.
func applyConstraints(spec contracts.SizingSpec, basis, remaining, amount float64) float64 {
	if spec.MaxPositionAmount > 0 && amount > spec.MaxPositionAmount {
		amount = spec.MaxPositionAmount
	}

	if spec.MaxPositionPct > 0 {
		pctCap := basis * spec.MaxPositionPct
		if amount > pctCap {
			amount = pctCap
		}
	}

	if remaining < 0 {
		remaining = 0
	}
	if amount > remaining {
		amount = remaining
	}

	if amount < spec.MinPositionAmount {
		return 0
	}

	return amount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
