// Package filter implements the binary eligibility gate that every signal
// must clear before scoring. Checks run in fixed order and short-circuit
// on the first failure; the whole engine is pure and deterministic.
package filter

import (
	"math"
	"strings"

	"github.com/hadoku/trader/internal/contracts"
)

// Evaluate runs the eligibility checks for one agent against one enriched
// signal. Order is fixed: politician whitelist, asset type, signal age,
// price move.
func Evaluate(cfg *contracts.AgentConfig, sig contracts.EnrichedSignal) contracts.FilterResult {
	if !politicianAllowed(cfg.Politicians, sig.Politician) {
		return contracts.Failed(contracts.FilterPolitician)
	}

	if !cfg.AllowsAsset(sig.AssetType) {
		return contracts.Failed(contracts.FilterAssetType)
	}

	if sig.DaysSinceTrade > cfg.MaxSignalAgeDays {
		return contracts.Failed(contracts.FilterSignalAge)
	}

	if math.Abs(sig.PriceChangePct) > cfg.MaxPriceMovePct {
		return contracts.Failed(contracts.FilterPriceMove)
	}

	return contracts.Passed()
}

// politicianAllowed matches case-insensitively against each whitelisted
// name as a substring; disclosure feeds are inconsistent about middle
// names and honorifics, so exact matching would drop real signals.
// A nil whitelist allows everyone.
func politicianAllowed(whitelist []string, politician string) bool {
	if whitelist == nil {
		return true
	}

	lower := strings.ToLower(politician)
	for _, name := range whitelist {
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
