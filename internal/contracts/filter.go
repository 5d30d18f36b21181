package contracts

// FilterReason identifies which eligibility gate rejected a signal
type FilterReason string

const (
	FilterPolitician FilterReason = "politician"
	FilterAssetType  FilterReason = "asset_type"
	FilterSignalAge  FilterReason = "signal_age"
	FilterPriceMove  FilterReason = "price_move"
)

// FilterResult is the filtering engine's verdict: pass, or fail with the
// first gate that rejected (checks short-circuit in fixed order).
type FilterResult struct {
	Pass   bool         `json:"pass"`
	Reason FilterReason `json:"reason,omitempty"`
}

// Passed returns a passing result
func Passed() FilterResult {
	return FilterResult{Pass: true}
}

// Failed returns a failing result with the rejecting gate
func Failed(reason FilterReason) FilterResult {
	return FilterResult{Pass: false, Reason: reason}
}
