package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/hadoku/trader/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

func squaredConfig() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:            "chatgpt",
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreSquared,
			BaseMultiplier:    0.2,
			MaxPositionAmount: 500,
			MaxPositionPct:    0.5,
			MinPositionAmount: 50,
		},
	}
}

func TestScoreSquared(t *testing.T) {
	// score 0.8, multiplier 0.2, budget $1000 => 0.64 * 0.2 * 1000 = $128
	cfg := squaredConfig()

	amount, err := Calculate(cfg, Request{Score: ptr(0.8), Remaining: 1000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != 128 {
		t.Errorf("amount = %v, want 128", amount)
	}
}

func TestScoreSquaredRequiresScore(t *testing.T) {
	cfg := squaredConfig()

	_, err := Calculate(cfg, Request{Score: nil, Remaining: 1000})
	if !errors.Is(err, ErrScoreRequired) {
		t.Errorf("err = %v, want ErrScoreRequired", err)
	}
}

func TestScoreLinearCappedAtMax(t *testing.T) {
	// base $200, score 1.5 (hypothetical overshoot) => raw $300, capped
	// at max_position_amount $250
	cfg := &contracts.AgentConfig{
		ID:            "claude",
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreLinear,
			BaseAmount:        200,
			MaxPositionAmount: 250,
			MinPositionAmount: 50,
		},
	}

	amount, err := Calculate(cfg, Request{Score: ptr(1.5), Remaining: 1000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != 250 {
		t.Errorf("amount = %v, want 250 (capped)", amount)
	}
}

func TestScoreLinearCapitalOverrideScaling(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:       contracts.SizeScoreLinear,
			BaseAmount: 200,
		},
	}

	// Override doubles the basis: $200 * 0.5 * (2000/1000) = $200
	amount, err := Calculate(cfg, Request{Score: ptr(0.5), Remaining: 5000, CapitalOverride: 2000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != 200 {
		t.Errorf("amount = %v, want 200", amount)
	}
}

func TestEqualSplit(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeEqualSplit,
			MinPositionAmount: 50,
		},
	}

	tests := []struct {
		accepted int
		want     float64
	}{
		{4, 250},
		{1, 1000},
		{0, 1000}, // treated as 1
	}

	for _, tt := range tests {
		amount, err := Calculate(cfg, Request{Remaining: 1000, AcceptedCount: tt.accepted})
		if err != nil {
			t.Fatalf("Calculate failed: %v", err)
		}
		if amount != tt.want {
			t.Errorf("equal_split(%d) = %v, want %v", tt.accepted, amount, tt.want)
		}
	}
}

func TestEqualSplitNoScoreNeeded(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing:        contracts.SizingSpec{Mode: contracts.SizeEqualSplit},
	}

	if _, err := Calculate(cfg, Request{Score: nil, Remaining: 1000, AcceptedCount: 2}); err != nil {
		t.Errorf("equal_split should not require a score: %v", err)
	}
}

func smartConfig() *contracts.AgentConfig {
	return &contracts.AgentConfig{
		ID:            "gemini",
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode: contracts.SizeSmartBudget,
			SmartBudget: &contracts.SmartBudgetSpec{
				Buckets: []contracts.SizeRange{
					{Name: "small", MinSize: 0, MaxSize: 50000, ExpectedMonthlyCount: 10},
					{Name: "medium", MinSize: 50000, MaxSize: 250000, ExpectedMonthlyCount: 4},
					{Name: "large", MinSize: 250000, MaxSize: 1000000, ExpectedMonthlyCount: 1},
				},
			},
		},
	}
}

func TestSmartBudget(t *testing.T) {
	cfg := smartConfig()

	// Exposures: small 25000*10=250000, medium 150000*4=600000,
	// large 625000*1=625000, total 1475000.
	// Medium trade: budget share 1000*600000/1475000, / 4 expected.
	amount, err := Calculate(cfg, Request{Remaining: 10000, CongressionalSize: 100000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	want := math.Round(1000*(600000.0/1475000.0)/4*100) / 100
	if amount != want {
		t.Errorf("smart_budget medium = %v, want %v", amount, want)
	}

	// A large trade gets a bigger per-trade allocation than a small one
	large, _ := Calculate(cfg, Request{Remaining: 10000, CongressionalSize: 500000})
	small, _ := Calculate(cfg, Request{Remaining: 10000, CongressionalSize: 1000})
	if large <= small {
		t.Errorf("large bucket %v should out-size small bucket %v", large, small)
	}
}

func TestSmartBudgetBeyondLastRange(t *testing.T) {
	cfg := smartConfig()

	beyond, err := Calculate(cfg, Request{Remaining: 10000, CongressionalSize: 50000000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	large, _ := Calculate(cfg, Request{Remaining: 10000, CongressionalSize: 500000})
	if beyond != large {
		t.Errorf("beyond-range size = %v, want last bucket's %v", beyond, large)
	}
}

func TestHalfSizeHalvesBeforeConstraints(t *testing.T) {
	cfg := squaredConfig()

	full, _ := Calculate(cfg, Request{Score: ptr(0.8), Remaining: 1000})
	half, _ := Calculate(cfg, Request{Score: ptr(0.8), Remaining: 1000, HalfSize: true})

	if full != 128 || half != 64 {
		t.Errorf("full = %v half = %v, want 128 / 64", full, half)
	}
}

func TestHalfSizeTruncatesBelowMinimum(t *testing.T) {
	// full $60.50 => half $30.25, below the $50 minimum => exactly 0
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreLinear,
			BaseAmount:        60.50,
			MinPositionAmount: 50,
		},
	}

	full, _ := Calculate(cfg, Request{Score: ptr(1.0), Remaining: 1000})
	if full != 60.50 {
		t.Errorf("full = %v, want 60.50", full)
	}

	half, _ := Calculate(cfg, Request{Score: ptr(1.0), Remaining: 1000, HalfSize: true})
	if half != 0 {
		t.Errorf("half = %v, want exactly 0 (below minimum, never rounded up)", half)
	}
}

func TestConstraintChainOrder(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:              contracts.SizeScoreLinear,
			BaseAmount:        800,
			MaxPositionAmount: 600,
			MaxPositionPct:    0.25, // $250 of the $1000 basis
			MinPositionAmount: 50,
		},
	}

	// raw 800 -> abs cap 600 -> pct cap 250 -> remaining 120 -> 120
	amount, err := Calculate(cfg, Request{Score: ptr(1.0), Remaining: 120})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != 120 {
		t.Errorf("amount = %v, want 120", amount)
	}
}

func TestNegativeRemainingYieldsZero(t *testing.T) {
	cfg := squaredConfig()

	amount, err := Calculate(cfg, Request{Score: ptr(0.9), Remaining: -35})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != 0 {
		t.Errorf("amount = %v, want 0 for exhausted budget", amount)
	}
}

func TestUnknownModeErrors(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing:        contracts.SizingSpec{Mode: "martingale"},
	}

	_, err := Calculate(cfg, Request{Remaining: 1000})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	cfg := squaredConfig()
	req := Request{Score: ptr(0.73), Remaining: 811.27}

	first, err1 := Calculate(cfg, req)
	second, err2 := Calculate(cfg, req)
	if err1 != nil || err2 != nil {
		t.Fatalf("Calculate failed: %v %v", err1, err2)
	}
	if first != second {
		t.Errorf("not idempotent: %v vs %v", first, second)
	}
}

func TestResultRoundedToCents(t *testing.T) {
	cfg := &contracts.AgentConfig{
		MonthlyBudget: 1000,
		Sizing: contracts.SizingSpec{
			Mode:           contracts.SizeScoreSquared,
			BaseMultiplier: 0.333,
		},
	}

	amount, err := Calculate(cfg, Request{Score: ptr(0.7), Remaining: 1000})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if amount != math.Round(amount*100)/100 {
		t.Errorf("amount %v not rounded to cents", amount)
	}
}
