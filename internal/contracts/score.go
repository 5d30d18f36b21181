package contracts

// ScoreResult is the output of one scoring evaluation: every computed
// sub-score plus the final clamped total. Created fresh per
// (agent, signal, evaluation date); never cached across dates since decay
// depends on elapsed time.
type ScoreResult struct {
	// Score is the weighted total clamped to [0, 1]
	Score float64 `json:"score"`

	// Components maps component name to its raw value (individual values
	// may exceed 1, e.g. the dip bonus; only the total is clamped)
	Components map[string]float64 `json:"components"`
}

// Component names used as Components keys
const (
	ComponentTimeDecay     = "time_decay"
	ComponentPriceMove     = "price_move"
	ComponentSizeBucket    = "size_bucket"
	ComponentSkill         = "skill"
	ComponentSourceQuality = "source_quality"
	ComponentFilingSpeed   = "filing_speed"
	ComponentCrossConfirm  = "cross_confirm"
)

// Component returns a sub-score and whether it was computed
func (r *ScoreResult) Component(name string) (float64, bool) {
	v, ok := r.Components[name]
	return v, ok
}
