package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	winScore = 1_000_000
	infScore = winScore + 1
	// Scores this close to winScore are proven results.
	provenMargin = 100_000
)

var errSearchTimeout = errors.New("search timeout")

type SearchStats struct {
	Nodes            int64
	Cutoffs          int64
	EvalCacheProbes  int64
	EvalCacheHits    int64
	QuiescenceProbes int64
	ArenaNodes       int
	Start            time.Time
	DepthDurations   []time.Duration
	CompletedDepths  int
}

// DepthReport describes one completed iterative-deepening pass.
type DepthReport struct {
	Depth   int           `json:"depth"`
	Move    string        `json:"move"`
	Score   int           `json:"score"`
	Nodes   int64         `json:"nodes"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type SearchResult struct {
	Move  Direction
	Score int
	Depth int
	// Found is false when not even depth 1 completed.
	Found bool
	Stats SearchStats
}

type EngineOptions struct {
	Evaluator         Evaluator
	Orderer           MoveOrderer
	Quiescence        QuiescencePolicy
	SingularExtension bool
	MaxDepth          int
	OnDepth           func(DepthReport)
	Logger            zerolog.Logger
}

// Engine runs negamax with alpha-beta over a node arena. An Engine is not
// safe for concurrent use; it owns its arena.
type Engine struct {
	eval       Evaluator
	orderer    MoveOrderer
	quiescence QuiescencePolicy
	singular   bool
	maxDepth   int
	onDepth    func(DepthReport)
	logger     zerolog.Logger

	arena      *nodeArena
	stats      SearchStats
	horizonHit bool
	rootBest   Direction
}

func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		eval:       opts.Evaluator,
		orderer:    opts.Orderer,
		quiescence: opts.Quiescence,
		singular:   opts.SingularExtension,
		maxDepth:   opts.MaxDepth,
		onDepth:    opts.OnDepth,
		logger:     opts.Logger,
		arena:      newNodeArena(1 << 12),
	}
	if e.orderer == nil {
		e.orderer = swapPromoter{}
	}
	if e.quiescence == nil {
		e.quiescence = noQuiescence{}
	}
	return e
}

// Search deepens until ctx is done, MaxDepth is reached, the root is proven
// or a pass never reached the horizon. The answer always comes from the
// last pass that completed.
func (e *Engine) Search(ctx context.Context, b *Board) SearchResult {
	e.arena.reset()
	e.stats = SearchStats{Start: time.Now()}
	eval := e.eval
	if cached, ok := eval.(cachedEvaluator); ok {
		cached.stats = &e.stats
		eval = cached
	}
	saved := e.eval
	e.eval = eval
	defer func() { e.eval = saved }()

	result := SearchResult{Move: fallbackDirection(b)}
	root := e.arena.alloc(North)
	for depth := 1; e.maxDepth == 0 || depth <= e.maxDepth; depth++ {
		e.horizonHit = false
		passStart := time.Now()
		score, err := e.negamax(ctx, b, root, 0, depth, 0, -infScore, infScore, Self.sign())
		if err != nil {
			if errors.Is(err, errSearchTimeout) {
				e.logger.Debug().Int("depth", depth).Msg("search-timeout")
			}
			break
		}
		if len(e.arena.children(root)) == 0 {
			// Terminal root: nothing to choose.
			break
		}
		result.Move = e.rootBest
		result.Score = score
		result.Depth = depth
		result.Found = true
		elapsed := time.Since(passStart)
		e.stats.DepthDurations = append(e.stats.DepthDurations, elapsed)
		e.stats.CompletedDepths = depth
		e.logger.Debug().
			Int("depth", depth).
			Str("move", result.Move.String()).
			Int("score", score).
			Int64("nodes", e.stats.Nodes).
			Dur("elapsed", elapsed).
			Msg("best-val")
		if e.onDepth != nil {
			e.onDepth(DepthReport{
				Depth:   depth,
				Move:    result.Move.String(),
				Score:   score,
				Nodes:   e.stats.Nodes,
				Elapsed: elapsed,
			})
		}
		if absInt(score) >= winScore-provenMargin || !e.horizonHit {
			break
		}
	}
	e.stats.ArenaNodes = e.arena.len()
	result.Stats = e.stats
	return result
}

// terminalValue scores a finished game from Self's view. Rounds are Self
// then Opponent, so even plies are round boundaries.
func terminalValue(b *Board, ply int) (int, bool) {
	if ply%2 == 1 {
		if !b.AnyLegalMove(Opponent) {
			return winScore - ply, true
		}
		return 0, false
	}
	if b.PositionsCoincide() {
		return 0, true
	}
	selfMoves := b.AnyLegalMove(Self)
	oppMoves := b.AnyLegalMove(Opponent)
	switch {
	case !selfMoves && !oppMoves:
		return 0, true
	case !selfMoves:
		return -(winScore - ply), true
	case !oppMoves:
		return winScore - ply, true
	}
	return 0, false
}

func moverAt(ply int) Player {
	if ply%2 == 0 {
		return Self
	}
	return Opponent
}

func (e *Engine) negamax(ctx context.Context, b *Board, id nodeID, ply, depth, qdepth, alpha, beta, color int) (int, error) {
	select {
	case <-ctx.Done():
		return 0, errSearchTimeout
	default:
	}
	e.stats.Nodes++

	if value, ok := terminalValue(b, ply); ok {
		return color * value, nil
	}
	mover := moverAt(ply)
	if depth <= 0 {
		return e.horizon(ctx, b, id, ply, qdepth, color)
	}

	if !e.arena.nodes[id].expanded {
		e.arena.expand(id, b, mover)
	}
	count := int(e.arena.nodes[id].count)
	childDepth := depth - 1
	if count == 1 && e.singular {
		childDepth = depth
	}
	for i := 0; i < count; i++ {
		child := e.arena.nodes[id].children[i]
		dir := e.arena.nodes[child].dir
		b.Move(dir, mover)
		value, err := e.negamax(ctx, b, child, ply+1, childDepth, qdepth, -beta, -alpha, -color)
		b.Undo(dir, mover)
		if err != nil {
			return 0, err
		}
		value = -value
		if value > alpha {
			alpha = value
			if ply == 0 {
				e.rootBest = dir
			}
			node := &e.arena.nodes[id]
			e.orderer.Promote(node.children[:node.count], i)
		}
		if alpha >= beta {
			e.stats.Cutoffs++
			break
		}
	}
	return alpha, nil
}

// horizon values a depth-0 node, probing one more ply when the quiescence
// policy finds it unstable.
func (e *Engine) horizon(ctx context.Context, b *Board, id nodeID, ply, qdepth, color int) (int, error) {
	e.horizonHit = true
	static := color * e.eval.Evaluate(b)
	if !e.quiescence.Probe(b, qdepth) {
		return static, nil
	}
	e.stats.QuiescenceProbes++
	mover := moverAt(ply)
	if !e.arena.nodes[id].expanded {
		e.arena.expand(id, b, mover)
	}
	probed := -infScore
	count := int(e.arena.nodes[id].count)
	for i := 0; i < count; i++ {
		child := e.arena.nodes[id].children[i]
		dir := e.arena.nodes[child].dir
		b.Move(dir, mover)
		value, err := e.negamax(ctx, b, child, ply+1, 0, qdepth+1, -infScore, infScore, -color)
		b.Undo(dir, mover)
		if err != nil {
			return 0, err
		}
		probed = max(probed, -value)
	}
	return e.quiescence.Settle(static, probed), nil
}

// fallbackDirection is the first passable direction for Self, or North when
// Self is boxed in.
func fallbackDirection(b *Board) Direction {
	for _, dir := range allDirections {
		if b.IsPassable(dir, Self) {
			return dir
		}
	}
	return North
}
