package scoring

import "github.com/hadoku/trader/internal/contracts"

// filingSpeed scores how quickly the trade was disclosed: a bonus when
// filed within FastDays of the trade, a penalty at or beyond SlowDays,
// neutral (1.0) in between. The filing lag is the gap between the trade
// and disclosure clocks on the enriched signal.
func filingSpeed(spec *contracts.FilingSpeedSpec, sig contracts.EnrichedSignal) float64 {
	lagDays := sig.DaysSinceTrade - sig.DaysSinceDisclosure
	if lagDays < 0 {
		lagDays = 0
	}

	switch {
	case lagDays <= spec.FastDays:
		return spec.FastScore
	case lagDays >= spec.SlowDays:
		return spec.SlowScore
	default:
		return 1.0
	}
}
