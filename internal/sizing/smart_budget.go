package sizing

import "github.com/hadoku/trader/internal/contracts"

// smartBudgetAmount sizes a trade by congressional conviction: the budget
// is split across size buckets in proportion to each bucket's expected
// monthly exposure (avg bucket size x expected count), then divided
// evenly over the bucket's expected trades.
func smartBudgetAmount(spec *contracts.SmartBudgetSpec, basis, congressionalSize float64) float64 {
	if spec == nil || len(spec.Buckets) == 0 {
		return 0
	}

	totalExposure := 0.0
	for _, b := range spec.Buckets {
		totalExposure += b.AvgSize() * b.ExpectedMonthlyCount
	}
	if totalExposure <= 0 {
		return 0
	}

	bucket := classify(spec.Buckets, congressionalSize)
	if bucket.ExpectedMonthlyCount <= 0 {
		return 0
	}

	bucketBudget := basis * (bucket.AvgSize() * bucket.ExpectedMonthlyCount / totalExposure)
	return bucketBudget / bucket.ExpectedMonthlyCount
}

// classify picks the bucket whose range contains the size; anything
// beyond the last range falls into the last bucket.
func classify(buckets []contracts.SizeRange, size float64) contracts.SizeRange {
	for _, b := range buckets {
		if size < b.MaxSize {
			return b
		}
	}
	return buckets[len(buckets)-1]
}
