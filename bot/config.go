package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	FirstTurnBudgetMs  int    `json:"first_turn_budget_ms"`
	TurnBudgetMs       int    `json:"turn_budget_ms"`
	SafetyMarginMs     int    `json:"safety_margin_ms"`
	MaxDepth           int    `json:"max_depth"`
	SingularExtension  bool   `json:"singular_extension"`
	MoveOrdering       string `json:"move_ordering"`
	QuiescencePlies    int    `json:"quiescence_plies"`
	QuiescenceMargin   int    `json:"quiescence_margin"`
	IsolatedSolver     bool   `json:"isolated_solver"`
	SpaceWeight        int    `json:"space_weight"`
	EnableEvalCache    bool   `json:"enable_eval_cache"`
	EvalCacheSize      int    `json:"eval_cache_size"`
	EvalCacheBuckets   int    `json:"eval_cache_buckets"`
	LogDepthScores     bool   `json:"log_depth_scores"`
	LogSearchStats     bool   `json:"log_search_stats"`
	AnalyticsQueueSize int    `json:"analytics_queue_size"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		// The first turn gets the long startup allowance.
		FirstTurnBudgetMs: 2900,
		TurnBudgetMs:      950,
		SafetyMarginMs:    50,
		MaxDepth:          0, // unbounded, the deadline decides

		SingularExtension: true,
		MoveOrdering:      orderingSwap,

		// Quiescence off unless tuned; 0 plies disables it.
		QuiescencePlies:  0,
		QuiescenceMargin: 4,

		IsolatedSolver: true,
		SpaceWeight:    8,

		EnableEvalCache:  true,
		EvalCacheSize:    1 << 16,
		EvalCacheBuckets: 2,

		LogDepthScores:     false,
		LogSearchStats:     false,
		AnalyticsQueueSize: 64,
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

func (c Config) Validate() error {
	if c.TurnBudgetMs <= 0 || c.FirstTurnBudgetMs <= 0 {
		return fmt.Errorf("turn budgets must be positive")
	}
	if c.SafetyMarginMs < 0 {
		return fmt.Errorf("safety_margin_ms must not be negative")
	}
	if c.MaxDepth < 0 || c.QuiescencePlies < 0 || c.QuiescenceMargin < 0 {
		return fmt.Errorf("depth limits must not be negative")
	}
	if _, err := newMoveOrderer(c.MoveOrdering); err != nil {
		return err
	}
	return nil
}

// LoadConfigFile overlays the JSON document at path onto base. Fields absent
// from the file keep their base values.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides reads TRON_* variables on top of cfg.
func applyEnvOverrides(cfg Config) Config {
	cfg.FirstTurnBudgetMs = getenvInt("TRON_FIRST_TURN_BUDGET_MS", cfg.FirstTurnBudgetMs)
	cfg.TurnBudgetMs = getenvInt("TRON_TURN_BUDGET_MS", cfg.TurnBudgetMs)
	cfg.SafetyMarginMs = getenvInt("TRON_SAFETY_MARGIN_MS", cfg.SafetyMarginMs)
	cfg.MaxDepth = getenvInt("TRON_MAX_DEPTH", cfg.MaxDepth)
	cfg.SingularExtension = getenvBool("TRON_SINGULAR_EXTENSION", cfg.SingularExtension)
	cfg.MoveOrdering = getenv("TRON_MOVE_ORDERING", cfg.MoveOrdering)
	cfg.QuiescencePlies = getenvInt("TRON_QUIESCENCE_PLIES", cfg.QuiescencePlies)
	cfg.QuiescenceMargin = getenvInt("TRON_QUIESCENCE_MARGIN", cfg.QuiescenceMargin)
	cfg.IsolatedSolver = getenvBool("TRON_ISOLATED_SOLVER", cfg.IsolatedSolver)
	cfg.SpaceWeight = getenvInt("TRON_SPACE_WEIGHT", cfg.SpaceWeight)
	cfg.EnableEvalCache = getenvBool("TRON_EVAL_CACHE", cfg.EnableEvalCache)
	cfg.EvalCacheSize = getenvInt("TRON_EVAL_CACHE_SIZE", cfg.EvalCacheSize)
	cfg.LogDepthScores = getenvBool("TRON_LOG_DEPTH_SCORES", cfg.LogDepthScores)
	cfg.LogSearchStats = getenvBool("TRON_LOG_SEARCH_STATS", cfg.LogSearchStats)
	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
