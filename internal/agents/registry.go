// Package agents holds the enumerated agent strategy configurations: a
// built-in registry of named variants plus a strict YAML loader for
// external override files. Configs are constructed once per run and
// treated as read-only afterwards.
package agents

import (
	"sort"

	"github.com/hadoku/trader/internal/contracts"
)

// Registry returns the built-in agent set. Each call builds fresh
// structs so one run's mutations can never leak into another.
//
// The -sim variants carry the same strategies with lowered execute and
// half-size thresholds for paper-trading comparison; both sets are kept
// deliberately and never reconciled.
func Registry() []*contracts.AgentConfig {
	return []*contracts.AgentConfig{
		chatgpt(), claude(), gemini(), grok(),
		chatgptSim(), claudeSim(),
	}
}

// Get returns the built-in config with the given id.
func Get(id string) (*contracts.AgentConfig, bool) {
	for _, cfg := range Registry() {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return nil, false
}

// IDs lists the built-in agent ids in sorted order.
func IDs() []string {
	all := Registry()
	ids := make([]string, len(all))
	for i, cfg := range all {
		ids[i] = cfg.ID
	}
	sort.Strings(ids)
	return ids
}

// chatgpt runs the full scoring stack with conviction-squared sizing:
// high-score signals get disproportionately large allocations.
func chatgpt() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:               "chatgpt",
		Name:             "ChatGPT",
		MonthlyBudget:    1000,
		AssetTypes:       []contracts.AssetType{contracts.AssetStock, contracts.AssetETF},
		MaxSignalAgeDays: 45,
		MaxPriceMovePct:  20,
		Scoring: &contracts.ScoringSpec{
			TimeDecay: &contracts.TimeDecaySpec{
				Weight:                2,
				HalfLifeDays:          14,
				Basis:                 contracts.DecaySinceDisclosure,
				SecondaryHalfLifeDays: 21,
				SecondaryBasis:        contracts.DecaySinceTrade,
			},
			PriceMove: &contracts.PriceMoveSpec{
				Weight: 1.5,
				Scores: [4]float64{1.0, 0.8, 0.4, 0.1},
			},
			SizeBucket: &contracts.SizeBucketSpec{
				Weight:     1,
				Thresholds: []float64{15000, 50000, 100000, 250000},
				Scores:     []float64{0.4, 0.6, 0.8, 0.9, 1.0},
			},
			Skill: &contracts.SkillSpec{
				Weight:       1,
				MinTrades:    5,
				DefaultScore: 0.6,
				MinWinRate:   0.3,
				MaxWinRate:   0.9,
			},
			SourceQuality: &contracts.SourceQualitySpec{
				Weight:         1,
				Scores:         map[string]float64{"senate_efd": 1.0, "house_fd": 0.9, "quiver": 0.8},
				Default:        0.7,
				BonusPerSource: 0.05,
				MaxBonus:       0.15,
			},
		},
		ExecuteThreshold:  0.75,
		HalfSizeThreshold: 0.6,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreSquared,
			BaseMultiplier:    0.2,
			MaxPositionAmount: 250,
			MaxPositionPct:    0.25,
			MinPositionAmount: 50,
			MaxOpenPositions:  10,
			MaxPerTicker:      1,
		},
		Exit: contracts.ExitSpec{
			StopLossMode: contracts.StopTrailing,
			StopLossPct:  12,
			TakeProfit:   &contracts.TakeProfitSpec{FirstPct: 20, FirstSellPct: 50, SecondPct: 40},
			MaxHoldDays:  60,
			SoftStopDays: 30,
		},
	}
}

// claude sizes linearly in the score and leans on filing speed and
// multi-politician confirmation rather than the full component stack.
func claude() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:               "claude",
		Name:             "Claude",
		MonthlyBudget:    1000,
		AssetTypes:       []contracts.AssetType{contracts.AssetStock, contracts.AssetETF},
		MaxSignalAgeDays: 30,
		MaxPriceMovePct:  15,
		Scoring: &contracts.ScoringSpec{
			TimeDecay: &contracts.TimeDecaySpec{
				Weight:       1.5,
				HalfLifeDays: 10,
				Basis:        contracts.DecaySinceDisclosure,
			},
			PriceMove: &contracts.PriceMoveSpec{
				Weight: 1,
				Scores: [4]float64{1.0, 0.7, 0.4, 0.1},
			},
			FilingSpeed: &contracts.FilingSpeedSpec{
				Weight:    1,
				FastDays:  7,
				SlowDays:  30,
				FastScore: 1.1,
				SlowScore: 0.6,
			},
			CrossConfirm: &contracts.CrossConfirmSpec{
				Weight:         0.5,
				BonusPerSource: 0.25,
				MaxBonus:       0.75,
			},
		},
		ExecuteThreshold:  0.7,
		HalfSizeThreshold: 0.55,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreLinear,
			BaseAmount:        200,
			MaxPositionAmount: 250,
			MinPositionAmount: 50,
			MaxOpenPositions:  8,
			MaxPerTicker:      1,
		},
		Exit: contracts.ExitSpec{
			StopLossMode: contracts.StopFixed,
			StopLossPct:  8,
			TakeProfit:   &contracts.TakeProfitSpec{FirstPct: 15, FirstSellPct: 50, SecondPct: 30},
			MaxHoldDays:  45,
		},
	}
}

// gemini budgets by disclosed trade size: bigger congressional buys get
// a bigger slice of the monthly budget.
func gemini() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:               "gemini",
		Name:             "Gemini",
		MonthlyBudget:    1000,
		AssetTypes:       []contracts.AssetType{contracts.AssetStock},
		MaxSignalAgeDays: 30,
		MaxPriceMovePct:  25,
		Scoring: &contracts.ScoringSpec{
			TimeDecay: &contracts.TimeDecaySpec{
				Weight:       1,
				HalfLifeDays: 14,
				Basis:        contracts.DecaySinceDisclosure,
			},
			SizeBucket: &contracts.SizeBucketSpec{
				Weight:     1.5,
				Thresholds: []float64{15000, 50000, 250000},
				Scores:     []float64{0.3, 0.6, 0.8, 1.0},
			},
		},
		ExecuteThreshold:  0.6,
		HalfSizeThreshold: 0.45,
		Sizing: contracts.SizingSpec{
			Mode: contracts.SizeSmartBudget,
			SmartBudget: &contracts.SmartBudgetSpec{
				Buckets: []contracts.SizeRange{
					{Name: "small", MinSize: 1000, MaxSize: 15000, ExpectedMonthlyCount: 12},
					{Name: "medium", MinSize: 15000, MaxSize: 50000, ExpectedMonthlyCount: 6},
					{Name: "large", MinSize: 50000, MaxSize: 250000, ExpectedMonthlyCount: 3},
					{Name: "xl", MinSize: 250000, MaxSize: 1000000, ExpectedMonthlyCount: 1},
				},
			},
			MinPositionAmount: 25,
			MaxOpenPositions:  15,
			MaxPerTicker:      2,
		},
		Exit: contracts.ExitSpec{
			StopLossMode: contracts.StopTrailing,
			StopLossPct:  15,
			MaxHoldDays:  90,
			SoftStopDays: 45,
		},
	}
}

// grok is the control: no scoring, every filtered signal executes at an
// equal share of the budget.
func grok() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:               "grok",
		Name:             "Grok",
		MonthlyBudget:    1000,
		AssetTypes:       []contracts.AssetType{contracts.AssetStock, contracts.AssetETF},
		MaxSignalAgeDays: 60,
		MaxPriceMovePct:  30,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeEqualSplit,
			MinPositionAmount: 25,
			MaxOpenPositions:  20,
			MaxPerTicker:      2,
		},
		Exit: contracts.ExitSpec{
			StopLossMode: contracts.StopFixed,
			StopLossPct:  10,
			MaxHoldDays:  30,
		},
	}
}

func chatgptSim() *contracts.AgentConfig {
	cfg := chatgpt()
	cfg.ID = "chatgpt-sim"
	cfg.Name = "ChatGPT (sim)"
	cfg.ExecuteThreshold = 0.6
	cfg.HalfSizeThreshold = 0.45
	return cfg
}

func claudeSim() *contracts.AgentConfig {
	cfg := claude()
	cfg.ID = "claude-sim"
	cfg.Name = "Claude (sim)"
	cfg.ExecuteThreshold = 0.55
	cfg.HalfSizeThreshold = 0.4
	return cfg
}
