package contracts

// AgentConfig is the complete per-agent strategy configuration.
// Constructed once at startup from the registry and treated as read-only
// for the life of a run.
type AgentConfig struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	MonthlyBudget float64 `yaml:"monthly_budget" json:"monthly_budget"`

	// Filtering
	// Politicians nil means every politician passes; matching is
	// case-insensitive substring per whitelisted name.
	Politicians      []string    `yaml:"politicians,omitempty" json:"politicians,omitempty"`
	AssetTypes       []AssetType `yaml:"asset_types" json:"asset_types"`
	MaxSignalAgeDays int         `yaml:"max_signal_age_days" json:"max_signal_age_days"`
	MaxPriceMovePct  float64     `yaml:"max_price_move_pct" json:"max_price_move_pct"`

	// Scoring. Nil means the agent is pass/fail only: any signal that
	// clears the filter is executed at full size.
	Scoring *ScoringSpec `yaml:"scoring,omitempty" json:"scoring,omitempty"`

	// Score thresholds (ignored for pass/fail agents)
	ExecuteThreshold  float64 `yaml:"execute_threshold" json:"execute_threshold"`
	HalfSizeThreshold float64 `yaml:"half_size_threshold" json:"half_size_threshold"`

	Sizing SizingSpec `yaml:"sizing" json:"sizing"`
	Exit   ExitSpec   `yaml:"exit" json:"exit"`
}

// PassFail reports whether the agent skips scoring entirely
func (c *AgentConfig) PassFail() bool {
	return c.Scoring == nil
}

// AllowsAsset reports whether the asset type is in the allowed set
func (c *AgentConfig) AllowsAsset(t AssetType) bool {
	for _, a := range c.AssetTypes {
		if a == t {
			return true
		}
	}
	return false
}

// DecayBasis selects which clock a time-decay component runs on
type DecayBasis string

const (
	DecaySinceTrade      DecayBasis = "since_trade"
	DecaySinceDisclosure DecayBasis = "since_disclosure"
)

// ScoringSpec is a set of independently toggleable scoring components.
// A nil component is absent for that agent and contributes no weight.
type ScoringSpec struct {
	TimeDecay     *TimeDecaySpec     `yaml:"time_decay,omitempty" json:"time_decay,omitempty"`
	PriceMove     *PriceMoveSpec     `yaml:"price_move,omitempty" json:"price_move,omitempty"`
	SizeBucket    *SizeBucketSpec    `yaml:"size_bucket,omitempty" json:"size_bucket,omitempty"`
	Skill         *SkillSpec         `yaml:"skill,omitempty" json:"skill,omitempty"`
	SourceQuality *SourceQualitySpec `yaml:"source_quality,omitempty" json:"source_quality,omitempty"`
	FilingSpeed   *FilingSpeedSpec   `yaml:"filing_speed,omitempty" json:"filing_speed,omitempty"`
	CrossConfirm  *CrossConfirmSpec  `yaml:"cross_confirm,omitempty" json:"cross_confirm,omitempty"`
}

// TimeDecaySpec configures exponential staleness decay.
// When a secondary half-life is set (> 0) both decays are computed and the
// minimum wins: staleness on either clock degrades the signal.
type TimeDecaySpec struct {
	Weight                float64    `yaml:"weight" json:"weight"`
	HalfLifeDays          float64    `yaml:"half_life_days" json:"half_life_days"`
	Basis                 DecayBasis `yaml:"basis" json:"basis"`
	SecondaryHalfLifeDays float64    `yaml:"secondary_half_life_days,omitempty" json:"secondary_half_life_days,omitempty"`
	SecondaryBasis        DecayBasis `yaml:"secondary_basis,omitempty" json:"secondary_basis,omitempty"`
}

// PriceMoveSpec configures the price-movement component. Scores holds the
// configured value at each absolute-move breakpoint (0%, 5%, 15%, 25%);
// between breakpoints the engine interpolates linearly, beyond 25% the
// component is zero.
type PriceMoveSpec struct {
	Weight float64    `yaml:"weight" json:"weight"`
	Scores [4]float64 `yaml:"scores" json:"scores"`
}

// SizeBucketSpec maps the estimated congressional position size onto a
// score ladder. Thresholds must be ascending; Scores has one more entry
// than Thresholds.
type SizeBucketSpec struct {
	Weight     float64   `yaml:"weight" json:"weight"`
	Thresholds []float64 `yaml:"thresholds" json:"thresholds"`
	Scores     []float64 `yaml:"scores" json:"scores"`
}

// SkillSpec configures the politician track-record component
type SkillSpec struct {
	Weight       float64 `yaml:"weight" json:"weight"`
	MinTrades    int     `yaml:"min_trades" json:"min_trades"`
	DefaultScore float64 `yaml:"default_score" json:"default_score"`
	MinWinRate   float64 `yaml:"min_win_rate" json:"min_win_rate"`
	MaxWinRate   float64 `yaml:"max_win_rate" json:"max_win_rate"`
}

// SourceQualitySpec configures the per-source reliability lookup plus the
// multi-source confirmation bonus.
type SourceQualitySpec struct {
	Weight         float64            `yaml:"weight" json:"weight"`
	Scores         map[string]float64 `yaml:"scores" json:"scores"`
	Default        float64            `yaml:"default" json:"default"`
	BonusPerSource float64            `yaml:"bonus_per_source" json:"bonus_per_source"`
	MaxBonus       float64            `yaml:"max_bonus" json:"max_bonus"`
}

// FilingSpeedSpec rewards prompt filings and penalizes slow ones.
// Filed within FastDays of the trade scores FastScore; filed at or beyond
// SlowDays scores SlowScore; in between is neutral (1.0).
type FilingSpeedSpec struct {
	Weight    float64 `yaml:"weight" json:"weight"`
	FastDays  int     `yaml:"fast_days" json:"fast_days"`
	SlowDays  int     `yaml:"slow_days" json:"slow_days"`
	FastScore float64 `yaml:"fast_score" json:"fast_score"`
	SlowScore float64 `yaml:"slow_score" json:"slow_score"`
}

// CrossConfirmSpec scores multi-politician confirmation as its own
// weighted component (same bonus formula as the source-quality bonus).
type CrossConfirmSpec struct {
	Weight         float64 `yaml:"weight" json:"weight"`
	BonusPerSource float64 `yaml:"bonus_per_source" json:"bonus_per_source"`
	MaxBonus       float64 `yaml:"max_bonus" json:"max_bonus"`
}

// SizingMode selects the position-sizing formula
type SizingMode string

const (
	SizeScoreSquared SizingMode = "score_squared"
	SizeScoreLinear  SizingMode = "score_linear"
	SizeEqualSplit   SizingMode = "equal_split"
	SizeSmartBudget  SizingMode = "smart_budget"
)

// SizingSpec is the per-agent position-sizing configuration: one mode plus
// universal constraints applied to every mode's raw output.
type SizingSpec struct {
	Mode SizingMode `yaml:"mode" json:"mode"`

	// score_squared
	BaseMultiplier float64 `yaml:"base_multiplier,omitempty" json:"base_multiplier,omitempty"`
	// score_linear
	BaseAmount float64 `yaml:"base_amount,omitempty" json:"base_amount,omitempty"`
	// smart_budget
	SmartBudget *SmartBudgetSpec `yaml:"smart_budget,omitempty" json:"smart_budget,omitempty"`

	// Universal constraints
	MaxPositionAmount float64 `yaml:"max_position_amount" json:"max_position_amount"`
	MaxPositionPct    float64 `yaml:"max_position_pct" json:"max_position_pct"` // fraction of basis, e.g. 0.25
	MinPositionAmount float64 `yaml:"min_position_amount" json:"min_position_amount"`
	MaxOpenPositions  int     `yaml:"max_open_positions" json:"max_open_positions"`
	MaxPerTicker      int     `yaml:"max_per_ticker" json:"max_per_ticker"`
}

// SmartBudgetSpec splits the budget across congressional size buckets in
// proportion to each bucket's expected monthly exposure.
type SmartBudgetSpec struct {
	Buckets []SizeRange `yaml:"buckets" json:"buckets"`
}

// SizeRange is one smart-budget bucket: a disclosed-size range and how
// many signals in that range a month typically brings.
type SizeRange struct {
	Name                 string  `yaml:"name" json:"name"`
	MinSize              float64 `yaml:"min_size" json:"min_size"`
	MaxSize              float64 `yaml:"max_size" json:"max_size"`
	ExpectedMonthlyCount float64 `yaml:"expected_monthly_count" json:"expected_monthly_count"`
}

// AvgSize returns the bucket's representative trade size
func (r SizeRange) AvgSize() float64 {
	return (r.MinSize + r.MaxSize) / 2
}

// StopLossMode selects how the stop-loss threshold is referenced
type StopLossMode string

const (
	StopFixed    StopLossMode = "fixed"    // referenced to entry price
	StopTrailing StopLossMode = "trailing" // referenced to highest observed price
)

// ExitSpec is the per-agent exit-rule configuration. All percent fields
// are whole percents (8 means 8%). Zero-valued optional fields disable
// the corresponding rule.
type ExitSpec struct {
	StopLossMode StopLossMode    `yaml:"stop_loss_mode" json:"stop_loss_mode"`
	StopLossPct  float64         `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfit   *TakeProfitSpec `yaml:"take_profit,omitempty" json:"take_profit,omitempty"`
	MaxHoldDays  int             `yaml:"max_hold_days,omitempty" json:"max_hold_days,omitempty"`

	// SoftStopDays closes a position that has gone nowhere: held at least
	// this many days with unrealized return still <= 0.
	SoftStopDays int `yaml:"soft_stop_days,omitempty" json:"soft_stop_days,omitempty"`
}

// TakeProfitSpec is the optional two-tier take-profit ladder. The first
// tier sells FirstSellPct percent of the position once; the second tier
// closes the remainder.
type TakeProfitSpec struct {
	FirstPct     float64 `yaml:"first_pct" json:"first_pct"`
	FirstSellPct float64 `yaml:"first_sell_pct" json:"first_sell_pct"`
	SecondPct    float64 `yaml:"second_pct" json:"second_pct"`
}
