package main

// Evaluator scores a non-terminal position from Self's point of view.
type Evaluator interface {
	Evaluate(b *Board) int
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(b *Board) int

func (f EvaluatorFunc) Evaluate(b *Board) int {
	return f(b)
}

// TerritoryEvaluator is the contested-phase heuristic.
type TerritoryEvaluator struct{}

func (TerritoryEvaluator) Evaluate(b *Board) int {
	return VoronoiTerritory(b)
}

// SpaceEvaluator compares how much room each side has left once the agents
// can no longer meet.
type SpaceEvaluator struct {
	Weight int
}

func (e SpaceEvaluator) Evaluate(b *Board) int {
	weight := e.Weight
	if weight <= 0 {
		weight = 1
	}
	return weight * (CountReachableSquares(b, Self) - CountReachableSquares(b, Opponent))
}

// PhaseEvaluator picks the isolated or contested heuristic per position.
type PhaseEvaluator struct {
	Contested Evaluator
	Isolated  Evaluator
}

func (e PhaseEvaluator) Evaluate(b *Board) int {
	if IsOpponentIsolated(b) {
		return e.Isolated.Evaluate(b)
	}
	return e.Contested.Evaluate(b)
}

func newDefaultEvaluator(cfg Config) Evaluator {
	return PhaseEvaluator{
		Contested: TerritoryEvaluator{},
		Isolated:  SpaceEvaluator{Weight: cfg.SpaceWeight},
	}
}

// cachedEvaluator memoises inner by board hash.
type cachedEvaluator struct {
	inner Evaluator
	cache *EvalCache
	stats *SearchStats
}

func (e cachedEvaluator) Evaluate(b *Board) int {
	key := b.Hash()
	value, ok := e.cache.Get(key)
	if e.stats != nil {
		e.stats.EvalCacheProbes++
		if ok {
			e.stats.EvalCacheHits++
		}
	}
	if ok {
		return value
	}
	value = e.inner.Evaluate(b)
	e.cache.Put(key, value)
	return value
}
