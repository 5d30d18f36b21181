package scoring

import (
	"math"

	"github.com/hadoku/trader/internal/contracts"
)

// timeDecay computes exponential staleness decay: 0.5^(elapsed/halfLife).
// At elapsed == halfLife the value is exactly 0.5; at twice the half-life
// exactly 0.25. When a secondary half-life is configured both decays are
// computed and the minimum wins - staleness on either clock degrades the
// signal.
func timeDecay(spec *contracts.TimeDecaySpec, sig contracts.EnrichedSignal) float64 {
	value := decayFor(spec.Basis, spec.HalfLifeDays, sig)

	if spec.SecondaryHalfLifeDays > 0 {
		secondary := decayFor(spec.SecondaryBasis, spec.SecondaryHalfLifeDays, sig)
		value = math.Min(value, secondary)
	}

	return value
}

func decayFor(basis contracts.DecayBasis, halfLife float64, sig contracts.EnrichedSignal) float64 {
	if halfLife <= 0 {
		return 1.0
	}

	elapsed := float64(sig.DaysSinceDisclosure)
	if basis == contracts.DecaySinceTrade {
		elapsed = float64(sig.DaysSinceTrade)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	return math.Pow(0.5, elapsed/halfLife)
}
