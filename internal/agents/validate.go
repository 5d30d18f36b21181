package agents

import (
	"fmt"

	"github.com/hadoku/trader/internal/contracts"
)

// ValidationError is a config constraint violation. Loading stops on the
// first one; a partially valid registry is never returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks one agent config against every structural constraint.
func Validate(cfg *contracts.AgentConfig) error {
	if cfg == nil {
		return ValidationError{"agent", "nil config"}
	}
	if cfg.ID == "" {
		return ValidationError{"id", "required"}
	}
	if cfg.MonthlyBudget <= 0 {
		return ValidationError{field(cfg, "monthly_budget"), "must be > 0"}
	}
	if len(cfg.AssetTypes) == 0 {
		return ValidationError{field(cfg, "asset_types"), "at least one required"}
	}
	for _, t := range cfg.AssetTypes {
		switch t {
		case contracts.AssetStock, contracts.AssetETF, contracts.AssetOption, contracts.AssetCrypto:
		default:
			return ValidationError{field(cfg, "asset_types"), fmt.Sprintf("unknown asset type %q", t)}
		}
	}
	if cfg.MaxSignalAgeDays <= 0 {
		return ValidationError{field(cfg, "max_signal_age_days"), "must be > 0"}
	}
	if cfg.MaxPriceMovePct <= 0 {
		return ValidationError{field(cfg, "max_price_move_pct"), "must be > 0"}
	}

	if cfg.Scoring != nil {
		if err := validateScoring(cfg); err != nil {
			return err
		}
		if cfg.ExecuteThreshold <= 0 || cfg.ExecuteThreshold > 1 {
			return ValidationError{field(cfg, "execute_threshold"), "must be in (0, 1]"}
		}
		if cfg.HalfSizeThreshold < 0 || cfg.HalfSizeThreshold > cfg.ExecuteThreshold {
			return ValidationError{field(cfg, "half_size_threshold"), "must be in [0, execute_threshold]"}
		}
	}

	if err := validateSizing(cfg); err != nil {
		return err
	}
	return validateExit(cfg)
}

func validateScoring(cfg *contracts.AgentConfig) error {
	s := cfg.Scoring

	enabled := 0
	if td := s.TimeDecay; td != nil {
		enabled++
		if td.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.time_decay.weight"), "must be > 0"}
		}
		if td.HalfLifeDays <= 0 {
			return ValidationError{field(cfg, "scoring.time_decay.half_life_days"), "must be > 0"}
		}
		if err := validateBasis(td.Basis); err != nil {
			return ValidationError{field(cfg, "scoring.time_decay.basis"), err.Error()}
		}
		if td.SecondaryHalfLifeDays > 0 {
			if err := validateBasis(td.SecondaryBasis); err != nil {
				return ValidationError{field(cfg, "scoring.time_decay.secondary_basis"), err.Error()}
			}
		}
	}
	if pm := s.PriceMove; pm != nil {
		enabled++
		if pm.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.price_move.weight"), "must be > 0"}
		}
	}
	if sb := s.SizeBucket; sb != nil {
		enabled++
		if sb.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.size_bucket.weight"), "must be > 0"}
		}
		if len(sb.Thresholds) == 0 || len(sb.Scores) != len(sb.Thresholds)+1 {
			return ValidationError{field(cfg, "scoring.size_bucket"), "scores must have one more entry than thresholds"}
		}
		for i := 1; i < len(sb.Thresholds); i++ {
			if sb.Thresholds[i] <= sb.Thresholds[i-1] {
				return ValidationError{field(cfg, "scoring.size_bucket.thresholds"), "must be strictly ascending"}
			}
		}
	}
	if sk := s.Skill; sk != nil {
		enabled++
		if sk.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.skill.weight"), "must be > 0"}
		}
		if sk.MinWinRate >= sk.MaxWinRate {
			return ValidationError{field(cfg, "scoring.skill"), "min_win_rate must be < max_win_rate"}
		}
	}
	if sq := s.SourceQuality; sq != nil {
		enabled++
		if sq.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.source_quality.weight"), "must be > 0"}
		}
		if sq.BonusPerSource < 0 || sq.MaxBonus < 0 {
			return ValidationError{field(cfg, "scoring.source_quality"), "bonus values must be >= 0"}
		}
	}
	if fs := s.FilingSpeed; fs != nil {
		enabled++
		if fs.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.filing_speed.weight"), "must be > 0"}
		}
		if fs.FastDays >= fs.SlowDays {
			return ValidationError{field(cfg, "scoring.filing_speed"), "fast_days must be < slow_days"}
		}
	}
	if cc := s.CrossConfirm; cc != nil {
		enabled++
		if cc.Weight <= 0 {
			return ValidationError{field(cfg, "scoring.cross_confirm.weight"), "must be > 0"}
		}
	}

	if enabled == 0 {
		return ValidationError{field(cfg, "scoring"), "present but no components enabled"}
	}
	return nil
}

func validateSizing(cfg *contracts.AgentConfig) error {
	s := cfg.Sizing

	switch s.Mode {
	case contracts.SizeScoreSquared:
		if cfg.PassFail() {
			return ValidationError{field(cfg, "sizing.mode"), "score_squared requires scoring"}
		}
		if s.BaseMultiplier <= 0 {
			return ValidationError{field(cfg, "sizing.base_multiplier"), "must be > 0"}
		}
	case contracts.SizeScoreLinear:
		if cfg.PassFail() {
			return ValidationError{field(cfg, "sizing.mode"), "score_linear requires scoring"}
		}
		if s.BaseAmount <= 0 {
			return ValidationError{field(cfg, "sizing.base_amount"), "must be > 0"}
		}
	case contracts.SizeEqualSplit:
	case contracts.SizeSmartBudget:
		if s.SmartBudget == nil || len(s.SmartBudget.Buckets) == 0 {
			return ValidationError{field(cfg, "sizing.smart_budget.buckets"), "at least one required"}
		}
		for i, b := range s.SmartBudget.Buckets {
			if b.MaxSize <= b.MinSize {
				return ValidationError{field(cfg, "sizing.smart_budget.buckets"), fmt.Sprintf("bucket %d: max_size must be > min_size", i)}
			}
			if b.ExpectedMonthlyCount <= 0 {
				return ValidationError{field(cfg, "sizing.smart_budget.buckets"), fmt.Sprintf("bucket %d: expected_monthly_count must be > 0", i)}
			}
		}
	default:
		return ValidationError{field(cfg, "sizing.mode"), fmt.Sprintf("unknown mode %q", s.Mode)}
	}

	if s.MaxPositionPct < 0 || s.MaxPositionPct > 1 {
		return ValidationError{field(cfg, "sizing.max_position_pct"), "must be in [0, 1]"}
	}
	if s.MaxPositionAmount < 0 || s.MinPositionAmount < 0 {
		return ValidationError{field(cfg, "sizing"), "position amounts must be >= 0"}
	}
	if s.MaxPositionAmount > 0 && s.MinPositionAmount > s.MaxPositionAmount {
		return ValidationError{field(cfg, "sizing.min_position_amount"), "must not exceed max_position_amount"}
	}
	if s.MaxOpenPositions < 0 || s.MaxPerTicker < 0 {
		return ValidationError{field(cfg, "sizing"), "position caps must be >= 0"}
	}
	return nil
}

func validateExit(cfg *contracts.AgentConfig) error {
	e := cfg.Exit

	if e.StopLossPct < 0 {
		return ValidationError{field(cfg, "exit.stop_loss_pct"), "must be >= 0"}
	}
	if e.StopLossPct > 0 {
		switch e.StopLossMode {
		case contracts.StopFixed, contracts.StopTrailing:
		default:
			return ValidationError{field(cfg, "exit.stop_loss_mode"), fmt.Sprintf("unknown mode %q", e.StopLossMode)}
		}
	}
	if tp := e.TakeProfit; tp != nil {
		if tp.FirstPct <= 0 || tp.SecondPct <= tp.FirstPct {
			return ValidationError{field(cfg, "exit.take_profit"), "second_pct must be > first_pct > 0"}
		}
		if tp.FirstSellPct <= 0 || tp.FirstSellPct >= 100 {
			return ValidationError{field(cfg, "exit.take_profit.first_sell_pct"), "must be in (0, 100)"}
		}
	}
	if e.MaxHoldDays < 0 || e.SoftStopDays < 0 {
		return ValidationError{field(cfg, "exit"), "hold-day limits must be >= 0"}
	}
	return nil
}

func validateBasis(b contracts.DecayBasis) error {
	switch b {
	case contracts.DecaySinceTrade, contracts.DecaySinceDisclosure:
		return nil
	default:
		return fmt.Errorf("unknown basis %q", b)
	}
}

func field(cfg *contracts.AgentConfig, name string) string {
	return fmt.Sprintf("agents[%s].%s", cfg.ID, name)
}
