package contracts

import "time"

// TradeAction is the disclosed direction of a congressional trade
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// AssetType classifies the disclosed instrument
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetETF    AssetType = "etf"
	AssetOption AssetType = "option"
	AssetCrypto AssetType = "crypto"
)

// Signal is an immutable record of a single disclosed trade.
// One Signal is created per ingested disclosure and never mutated;
// upstream deduplication has already happened by the time one exists.
type Signal struct {
	Ticker          string      `json:"ticker"`
	Action          TradeAction `json:"action"`
	AssetType       AssetType   `json:"asset_type"`
	TradePrice      float64     `json:"trade_price"`
	TradeDate       time.Time   `json:"trade_date"`
	DisclosureDate  time.Time   `json:"disclosure_date"`
	DisclosurePrice *float64    `json:"disclosure_price,omitempty"`

	// SizeEstimate is the midpoint of the disclosed size range in dollars
	// (disclosures report ranges like $15K-$50K, never exact amounts).
	SizeEstimate float64 `json:"size_estimate"`

	Source     string `json:"source"`
	Politician string `json:"politician"`
}

// EnrichedSignal is a Signal plus fields derived at evaluation time.
// Derived, never persisted; recomputed for every evaluation date because
// the age fields move with the clock.
type EnrichedSignal struct {
	Signal

	DaysSinceTrade      int     `json:"days_since_trade"`
	DaysSinceDisclosure int     `json:"days_since_disclosure"`
	PriceChangePct      float64 `json:"price_change_pct"` // percent since trade
	CurrentPrice        float64 `json:"current_price"`
}

// Enrich derives the evaluation-time view of a signal.
// currentPrice is the price used for sizing; priceChangePct is measured
// from the disclosed trade price. A zero trade price yields a 0% change
// (fail-closed, the filter's price-move gate then passes through).
func Enrich(sig Signal, asOf time.Time, currentPrice float64) EnrichedSignal {
	changePct := 0.0
	if sig.TradePrice > 0 {
		changePct = (currentPrice - sig.TradePrice) / sig.TradePrice * 100
	}

	return EnrichedSignal{
		Signal:              sig,
		DaysSinceTrade:      daysBetween(sig.TradeDate, asOf),
		DaysSinceDisclosure: daysBetween(sig.DisclosureDate, asOf),
		PriceChangePct:      changePct,
		CurrentPrice:        currentPrice,
	}
}

// daysBetween counts whole calendar days from a to b (negative if b < a)
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bt.Sub(at).Hours() / 24)
}
