package agents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hadoku/trader/internal/contracts"
)

func TestRegistryIsValid(t *testing.T) {
	all := Registry()
	if len(all) != 6 {
		t.Fatalf("registry size = %d, want 6", len(all))
	}
	for _, cfg := range all {
		if err := Validate(cfg); err != nil {
			t.Errorf("built-in %s invalid: %v", cfg.ID, err)
		}
	}
}

func TestRegistryReturnsFreshCopies(t *testing.T) {
	a, _ := Get("chatgpt")
	a.MonthlyBudget = 999999

	b, _ := Get("chatgpt")
	if b.MonthlyBudget == 999999 {
		t.Error("mutation leaked between Registry calls")
	}
}

func TestSimVariantsOnlyLowerThresholds(t *testing.T) {
	prod, _ := Get("chatgpt")
	sim, ok := Get("chatgpt-sim")
	if !ok {
		t.Fatal("chatgpt-sim missing")
	}
	if sim.ExecuteThreshold >= prod.ExecuteThreshold {
		t.Errorf("sim execute threshold %.2f not below production %.2f",
			sim.ExecuteThreshold, prod.ExecuteThreshold)
	}
	if sim.Sizing.Mode != prod.Sizing.Mode || sim.MonthlyBudget != prod.MonthlyBudget {
		t.Error("sim variant diverged beyond thresholds")
	}
}

func TestGetUnknown(t *testing.T) {
	if _, ok := Get("nope"); ok {
		t.Error("unknown id found")
	}
}

func TestIDsSorted(t *testing.T) {
	ids := IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}

const validYAML = `
agents:
  - id: test
    name: Test
    monthly_budget: 500
    asset_types: [stock]
    max_signal_age_days: 30
    max_price_move_pct: 20
    sizing:
      mode: equal_split
      max_position_amount: 0
      max_position_pct: 0
      min_position_amount: 0
      max_open_positions: 0
      max_per_ticker: 0
    exit:
      stop_loss_mode: fixed
      stop_loss_pct: 10
      max_hold_days: 30
      soft_stop_days: 0
`

func TestParseValid(t *testing.T) {
	configs, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(configs) != 1 || configs[0].ID != "test" {
		t.Fatalf("unexpected configs: %+v", configs)
	}
	if !configs[0].PassFail() {
		t.Error("agent without scoring should be pass/fail")
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	bad := strings.Replace(validYAML, "monthly_budget", "monthly_budgget", 1)
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("typo field accepted")
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	doc := validYAML + strings.TrimPrefix(strings.Replace(validYAML, "name: Test", "name: Test2", 1), "\nagents:")
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("duplicate ids accepted")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	configs, raw, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(configs) != 1 || len(raw) == 0 {
		t.Error("load returned incomplete result")
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(Registry())
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}

	h2, _ := Hash(Registry())
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	changed := Registry()
	changed[0].MonthlyBudget += 1
	h3, _ := Hash(changed)
	if h3 == h1 {
		t.Error("hash did not change with config")
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *contracts.AgentConfig {
		cfg, _ := Get("chatgpt")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*contracts.AgentConfig)
	}{
		{"empty id", func(c *contracts.AgentConfig) { c.ID = "" }},
		{"zero budget", func(c *contracts.AgentConfig) { c.MonthlyBudget = 0 }},
		{"no asset types", func(c *contracts.AgentConfig) { c.AssetTypes = nil }},
		{"unknown asset type", func(c *contracts.AgentConfig) { c.AssetTypes = []contracts.AssetType{"bond"} }},
		{"zero age limit", func(c *contracts.AgentConfig) { c.MaxSignalAgeDays = 0 }},
		{"threshold above one", func(c *contracts.AgentConfig) { c.ExecuteThreshold = 1.3 }},
		{"half above execute", func(c *contracts.AgentConfig) { c.HalfSizeThreshold = 0.9 }},
		{"negative half-life", func(c *contracts.AgentConfig) { c.Scoring.TimeDecay.HalfLifeDays = -1 }},
		{"bad decay basis", func(c *contracts.AgentConfig) { c.Scoring.TimeDecay.Basis = "since_lunch" }},
		{"score ladder mismatch", func(c *contracts.AgentConfig) { c.Scoring.SizeBucket.Scores = []float64{0.5} }},
		{"descending thresholds", func(c *contracts.AgentConfig) {
			c.Scoring.SizeBucket.Thresholds = []float64{50000, 15000, 100000, 250000}
		}},
		{"skill band inverted", func(c *contracts.AgentConfig) { c.Scoring.Skill.MinWinRate = 0.95 }},
		{"zero base multiplier", func(c *contracts.AgentConfig) { c.Sizing.BaseMultiplier = 0 }},
		{"unknown sizing mode", func(c *contracts.AgentConfig) { c.Sizing.Mode = "yolo" }},
		{"pct above one", func(c *contracts.AgentConfig) { c.Sizing.MaxPositionPct = 1.5 }},
		{"min above max", func(c *contracts.AgentConfig) { c.Sizing.MinPositionAmount = 9999 }},
		{"unknown stop mode", func(c *contracts.AgentConfig) { c.Exit.StopLossMode = "hope" }},
		{"inverted take profit", func(c *contracts.AgentConfig) { c.Exit.TakeProfit.SecondPct = 5 }},
		{"full first sell", func(c *contracts.AgentConfig) { c.Exit.TakeProfit.FirstSellPct = 100 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("%s: expected validation error", tc.name)
			}
		})
	}
}

func TestValidateScoredModesRequireScoring(t *testing.T) {
	cfg, _ := Get("chatgpt")
	cfg.Scoring = nil
	if err := Validate(cfg); err == nil {
		t.Error("score_squared without scoring accepted")
	}
}
