package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Decision is the outcome of one turn.
type Decision struct {
	Move     Direction
	Depth    int
	Score    int
	Isolated bool
	Fallback bool
	Stats    SearchStats
	Elapsed  time.Duration
}

// AIPlayer chooses Self's move each turn. It keeps one engine so the node
// arena's capacity carries over between turns.
type AIPlayer struct {
	logger    zerolog.Logger
	onDepth   func(DepthReport)
	engine    *Engine
	engineCfg Config
}

func NewAIPlayer(logger zerolog.Logger, onDepth func(DepthReport)) *AIPlayer {
	return &AIPlayer{logger: logger, onDepth: onDepth}
}

func (a *AIPlayer) engineFor(cfg Config) *Engine {
	if a.engine != nil && a.engineCfg == cfg {
		return a.engine
	}
	orderer, err := newMoveOrderer(cfg.MoveOrdering)
	if err != nil {
		a.logger.Warn().Err(err).Msg("falling back to swap ordering")
		orderer = swapPromoter{}
	}
	var eval Evaluator = newDefaultEvaluator(cfg)
	if cache := ensureEvalCache(cfg); cache != nil {
		eval = cachedEvaluator{inner: eval, cache: cache}
	}
	a.engine = NewEngine(EngineOptions{
		Evaluator:         eval,
		Orderer:           orderer,
		Quiescence:        newQuiescencePolicy(cfg),
		SingularExtension: cfg.SingularExtension,
		MaxDepth:          cfg.MaxDepth,
		OnDepth:           a.onDepth,
		Logger:            a.logger,
	})
	a.engineCfg = cfg
	return a.engine
}

// ChooseMove always returns a direction; ctx carries the turn deadline.
func (a *AIPlayer) ChooseMove(ctx context.Context, b *Board, cfg Config) Decision {
	start := time.Now()
	if !b.AnyLegalMove(Self) {
		return Decision{Move: fallbackDirection(b), Fallback: true, Elapsed: time.Since(start)}
	}
	if cfg.IsolatedSolver && IsOpponentIsolated(b) {
		return Decision{
			Move:     decideIsolated(b),
			Score:    CountReachableSquares(b, Self),
			Isolated: true,
			Elapsed:  time.Since(start),
		}
	}

	engine := a.engineFor(cfg)
	if cached, ok := engine.eval.(cachedEvaluator); ok {
		cached.cache.NextGeneration()
	}
	result := engine.Search(ctx, b)
	decision := Decision{
		Move:     result.Move,
		Depth:    result.Depth,
		Score:    result.Score,
		Fallback: !result.Found,
		Stats:    result.Stats,
		Elapsed:  time.Since(start),
	}
	if decision.Fallback {
		a.logger.Debug().Msg("no depth completed, using fallback direction")
	}
	if cfg.LogSearchStats {
		logSearchStats(a.logger, "choose", &decision.Stats)
	}
	return decision
}

func logSearchStats(logger zerolog.Logger, tag string, stats *SearchStats) {
	if stats == nil {
		return
	}
	elapsed := time.Duration(0)
	if !stats.Start.IsZero() {
		elapsed = time.Since(stats.Start)
	} else {
		for _, d := range stats.DepthDurations {
			elapsed += d
		}
	}
	parts := make([]string, 0, len(stats.DepthDurations))
	for _, d := range stats.DepthDurations {
		parts = append(parts, fmt.Sprintf("%dms", d.Milliseconds()))
	}
	nps := 0.0
	if elapsed > 0 {
		nps = float64(stats.Nodes) / elapsed.Seconds()
	}
	evalHitRate := 0.0
	if stats.EvalCacheProbes > 0 {
		evalHitRate = float64(stats.EvalCacheHits) * 100.0 / float64(stats.EvalCacheProbes)
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	logger.Info().
		Str("tag", tag).
		Int64("t_ms", elapsed.Milliseconds()).
		Int("completed", stats.CompletedDepths).
		Int64("nodes", stats.Nodes).
		Float64("nps", nps).
		Int64("cutoffs", stats.Cutoffs).
		Int64("q_probes", stats.QuiescenceProbes).
		Int("arena", stats.ArenaNodes).
		Int64("eval_probe", stats.EvalCacheProbes).
		Int64("eval_hit", stats.EvalCacheHits).
		Str("eval_hit_rate", fmt.Sprintf("%.1f%%", evalHitRate)).
		Str("mem_heap", formatBytes(mem.HeapAlloc)).
		Str("depth_times", "["+strings.Join(parts, ",")+"]").
		Msg("search-stats")
}

func formatBytes(n uint64) string {
	const (
		kb = 1 << (10 * 1)
		mb = 1 << (10 * 2)
		gb = 1 << (10 * 3)
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.2f kB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
