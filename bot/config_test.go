package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FirstTurnBudgetMs != 2900 || cfg.TurnBudgetMs != 950 {
		t.Fatalf("unexpected budgets %d/%d", cfg.FirstTurnBudgetMs, cfg.TurnBudgetMs)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"ordering":  func(c *Config) { c.MoveOrdering = "random" },
		"budget":    func(c *Config) { c.TurnBudgetMs = 0 },
		"margin":    func(c *Config) { c.SafetyMarginMs = -1 },
		"max depth": func(c *Config) { c.MaxDepth = -2 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadConfigFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.json")
	if err := os.WriteFile(path, []byte(`{"max_depth": 7, "move_ordering": "shift"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfigFile(path, DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxDepth != 7 || cfg.MoveOrdering != orderingShift {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.TurnBudgetMs != DefaultConfig().TurnBudgetMs {
		t.Fatalf("fields missing from the file must keep defaults")
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRON_TURN_BUDGET_MS", "400")
	t.Setenv("TRON_SINGULAR_EXTENSION", "false")
	t.Setenv("TRON_QUIESCENCE_PLIES", "not-a-number")
	cfg := applyEnvOverrides(DefaultConfig())
	if cfg.TurnBudgetMs != 400 {
		t.Fatalf("turn budget = %d, want 400", cfg.TurnBudgetMs)
	}
	if cfg.SingularExtension {
		t.Fatalf("singular extension should be off")
	}
	if cfg.QuiescencePlies != DefaultConfig().QuiescencePlies {
		t.Fatalf("unparsable values must fall back")
	}
}

func TestConfigStoreUpdate(t *testing.T) {
	store := &ConfigStore{config: DefaultConfig()}
	cfg := store.Get()
	cfg.MaxDepth = 3
	store.Update(cfg)
	if store.Get().MaxDepth != 3 {
		t.Fatalf("update not visible")
	}
}

func TestTimeGovernorBudgets(t *testing.T) {
	cfg := DefaultConfig()
	g := NewTimeGovernor()
	if got := g.Budget(cfg); got != 2850*time.Millisecond {
		t.Fatalf("first turn budget = %v", got)
	}
	base := time.Unix(1000, 0)
	g.now = func() time.Time { return base }
	ctx, cancel := g.StartTurn(context.Background(), cfg)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || !deadline.Equal(base.Add(2850*time.Millisecond)) {
		t.Fatalf("unexpected deadline %v", deadline)
	}
	if got := g.Budget(cfg); got != 900*time.Millisecond {
		t.Fatalf("later turn budget = %v", got)
	}
	if got := searchBudget(10, 50); got != minTurnBudget {
		t.Fatalf("margin larger than budget should clamp, got %v", got)
	}
}
