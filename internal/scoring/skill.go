package scoring

import "github.com/hadoku/trader/internal/contracts"

// skill scores the politician's historical win rate. A thin sample (no
// stats, or fewer trades than the configured minimum) falls back to the
// default; otherwise the observed win rate is clamped to the configured
// band to avoid overconfidence from noisy samples.
func skill(spec *contracts.SkillSpec, stats *contracts.PoliticianStats) float64 {
	if stats == nil || stats.Trades < spec.MinTrades {
		return spec.DefaultScore
	}

	winRate := stats.WinRate
	if winRate < spec.MinWinRate {
		winRate = spec.MinWinRate
	}
	if winRate > spec.MaxWinRate {
		winRate = spec.MaxWinRate
	}

	return winRate
}
