package scoring

import (
	"math"

	"github.com/hadoku/trader/internal/contracts"
)

// Absolute-move breakpoints in percent. Each maps to the corresponding
// entry of PriceMoveSpec.Scores; beyond the last one the component is 0.
var priceMoveBreakpoints = [4]float64{0, 5, 15, 25}

// dipBonusMultiplier rewards buying a dip: a buy signal whose price has
// fallen since the disclosed trade gets a 1.2x boost, capped at an
// absolute ceiling of 1.2. Never applied to sells.
const (
	dipBonusMultiplier = 1.2
	dipBonusCeiling    = 1.2
)

// priceMove scores how far the price has drifted since the disclosed
// trade: piecewise-linear interpolation over the breakpoint table on the
// absolute move.
func priceMove(spec *contracts.PriceMoveSpec, sig contracts.EnrichedSignal) float64 {
	absMove := math.Abs(sig.PriceChangePct)

	value := interpolate(absMove, spec.Scores)

	if sig.Action == contracts.ActionBuy && sig.PriceChangePct < 0 {
		value = math.Min(value*dipBonusMultiplier, dipBonusCeiling)
	}

	return value
}

func interpolate(absMove float64, scores [4]float64) float64 {
	last := priceMoveBreakpoints[len(priceMoveBreakpoints)-1]
	if absMove > last {
		return 0
	}

	for i := 1; i < len(priceMoveBreakpoints); i++ {
		hi := priceMoveBreakpoints[i]
		if absMove > hi {
			continue
		}
		lo := priceMoveBreakpoints[i-1]
		frac := (absMove - lo) / (hi - lo)
		return scores[i-1] + frac*(scores[i]-scores[i-1])
	}

	return scores[len(scores)-1]
}
