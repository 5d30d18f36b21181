package scoring

import "github.com/hadoku/trader/internal/contracts"

// sizeBucket maps the estimated congressional position size onto the
// configured score ladder. The index is the count of thresholds not
// exceeding the input; when the input exceeds every threshold the last
// score applies.
func sizeBucket(spec *contracts.SizeBucketSpec, size float64) float64 {
	if len(spec.Scores) == 0 {
		return 0
	}

	idx := 0
	for _, threshold := range spec.Thresholds {
		if threshold <= size {
			idx++
		}
	}

	if idx >= len(spec.Scores) {
		idx = len(spec.Scores) - 1
	}

	return spec.Scores[idx]
}
