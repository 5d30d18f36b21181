package scoring

import "github.com/hadoku/trader/internal/contracts"

// sourceQuality looks up the source's reliability score (with a fallback
// for unknown sources) and adds the multi-source confirmation bonus.
func sourceQuality(spec *contracts.SourceQualitySpec, source string, confirmations int) float64 {
	value, ok := spec.Scores[source]
	if !ok {
		value = spec.Default
	}

	return value + confirmationBonus(confirmations, spec.BonusPerSource, spec.MaxBonus)
}

// crossConfirm scores multi-politician confirmation as its own component,
// using the same bonus formula as the source-quality bonus.
func crossConfirm(spec *contracts.CrossConfirmSpec, confirmations int) float64 {
	return confirmationBonus(confirmations, spec.BonusPerSource, spec.MaxBonus)
}

// confirmationBonus is min((count-1) * perSource, max); a single source
// earns nothing.
func confirmationBonus(count int, perSource, max float64) float64 {
	extra := float64(count - 1)
	if extra < 0 {
		extra = 0
	}

	bonus := extra * perSource
	if bonus > max {
		bonus = max
	}
	return bonus
}
