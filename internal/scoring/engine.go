// Package scoring converts an eligible, enriched signal into a normalized
// confidence score with a per-component breakdown. Every component is a
// pure function; identical inputs always produce identical output.
package scoring

import (
	"github.com/hadoku/trader/internal/contracts"
)

// Inputs carries the externally supplied lookups a scoring evaluation
// needs: the politician track record (nil when the provider has none)
// and how many independent sources have confirmed the signal.
type Inputs struct {
	Stats             *contracts.PoliticianStats
	ConfirmationCount int
}

// Score evaluates every enabled component of the spec and combines them:
// weighted_sum / total_weight, clamped to [0, 1]. Individual component
// values may exceed 1 (the dip bonus); only the total is clamped. Every
// computed sub-score is retained for audit.
//
// Pass/fail agents have a nil spec and must not call Score; the caller
// guards that.
func Score(spec *contracts.ScoringSpec, sig contracts.EnrichedSignal, in Inputs) contracts.ScoreResult {
	result := contracts.ScoreResult{
		Components: make(map[string]float64),
	}

	var weightedSum, totalWeight float64

	add := func(name string, value, weight float64) {
		result.Components[name] = value
		weightedSum += value * weight
		totalWeight += weight
	}

	if c := spec.TimeDecay; c != nil {
		add(contracts.ComponentTimeDecay, timeDecay(c, sig), c.Weight)
	}

	if c := spec.PriceMove; c != nil {
		add(contracts.ComponentPriceMove, priceMove(c, sig), c.Weight)
	}

	if c := spec.SizeBucket; c != nil {
		add(contracts.ComponentSizeBucket, sizeBucket(c, sig.SizeEstimate), c.Weight)
	}

	if c := spec.Skill; c != nil {
		add(contracts.ComponentSkill, skill(c, in.Stats), c.Weight)
	}

	if c := spec.SourceQuality; c != nil {
		add(contracts.ComponentSourceQuality, sourceQuality(c, sig.Source, in.ConfirmationCount), c.Weight)
	}

	if c := spec.FilingSpeed; c != nil {
		add(contracts.ComponentFilingSpeed, filingSpeed(c, sig), c.Weight)
	}

	if c := spec.CrossConfirm; c != nil {
		add(contracts.ComponentCrossConfirm, crossConfirm(c, in.ConfirmationCount), c.Weight)
	}

	if totalWeight > 0 {
		result.Score = clamp01(weightedSum / totalWeight)
	}

	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
