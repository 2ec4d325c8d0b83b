package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type decideRequest struct {
	Board    string `json:"board"`
	Player   int    `json:"player"`
	BudgetMs int    `json:"budget_ms"`
}

type decisionDTO struct {
	Move         string  `json:"move"`
	Code         int     `json:"code"`
	Depth        int     `json:"depth"`
	Score        int     `json:"score"`
	Isolated     bool    `json:"isolated"`
	Fallback     bool    `json:"fallback"`
	Nodes        int64   `json:"nodes"`
	Cutoffs      int64   `json:"cutoffs"`
	ArenaNodes   int     `json:"arena_nodes"`
	ElapsedMs    float64 `json:"elapsed_ms"`
	DepthTimesMs []int64 `json:"depth_times_ms"`
}

type evaluateRequest struct {
	Board  string `json:"board"`
	Player int    `json:"player"`
}

type evaluationDTO struct {
	Isolated          bool   `json:"isolated"`
	ReachableSelf     int    `json:"reachable_self"`
	ReachableOpponent int    `json:"reachable_opponent"`
	Territory         int    `json:"territory"`
	FreeCells         int    `json:"free_cells"`
	Hash              string `json:"hash"`
}

func decisionToDTO(d Decision) decisionDTO {
	times := make([]int64, 0, len(d.Stats.DepthDurations))
	for _, dur := range d.Stats.DepthDurations {
		times = append(times, dur.Milliseconds())
	}
	return decisionDTO{
		Move:         d.Move.String(),
		Code:         d.Move.ProtocolCode(),
		Depth:        d.Depth,
		Score:        d.Score,
		Isolated:     d.Isolated,
		Fallback:     d.Fallback,
		Nodes:        d.Stats.Nodes,
		Cutoffs:      d.Stats.Cutoffs,
		ArenaNodes:   d.Stats.ArenaNodes,
		ElapsedMs:    float64(d.Elapsed.Microseconds()) / 1000.0,
		DepthTimesMs: times,
	}
}

// Server is the optional analysis API next to the protocol loop. Every
// request builds its own board and engine.
type Server struct {
	logger    zerolog.Logger
	store     *ConfigStore
	hub       *Hub
	analytics *AnalyticsPublisher
}

func NewServer(logger zerolog.Logger, store *ConfigStore, hub *Hub) *Server {
	return &Server{
		logger:    logger,
		store:     store,
		hub:       hub,
		analytics: NewAnalyticsPublisher(hub),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.Get())
	})
	r.Post("/api/config", s.handleUpdateConfig)
	r.Post("/api/decide", s.handleDecide)
	r.Post("/api/evaluate", s.handleEvaluate)
	r.Get("/api/cache/eval", func(w http.ResponseWriter, r *http.Request) {
		cache := ensureEvalCache(s.store.Get())
		if cache == nil {
			writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "status": cache.Status()})
	})
	r.Delete("/api/cache/eval", func(w http.ResponseWriter, r *http.Request) {
		if cache := ensureEvalCache(s.store.Get()); cache != nil {
			cache.Flush()
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})
	r.Get("/ws/analytics", func(w http.ResponseWriter, r *http.Request) {
		serveAnalyticsWS(s.hub, s.logger, w, r)
	})
	return r
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Get()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.store.Update(cfg)
	// Cached leaf values depend on the evaluator weights.
	if cache := ensureEvalCache(cfg); cache != nil {
		cache.Flush()
	}
	s.logger.Info().Interface("config", cfg).Msg("config updated")
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board, ok := s.boardFor(w, req.Board, req.Player)
	if !ok {
		return
	}
	cfg := s.store.Get()
	budgetMs := req.BudgetMs
	if budgetMs <= 0 {
		budgetMs = cfg.TurnBudgetMs
	}
	ctx, cancel := context.WithTimeout(r.Context(), searchBudget(budgetMs, cfg.SafetyMarginMs))
	defer cancel()

	requestID := middleware.GetReqID(r.Context())
	ai := NewAIPlayer(s.logger.With().Str("req_id", requestID).Logger(),
		s.analytics.DepthHook("api", func() int { return 0 }))
	decision := ai.ChooseMove(ctx, board, cfg)
	s.analytics.Decision("api", 0, decision)
	writeJSON(w, http.StatusOK, decisionToDTO(decision))
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board, ok := s.boardFor(w, req.Board, req.Player)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, evaluationDTO{
		Isolated:          IsOpponentIsolated(board),
		ReachableSelf:     CountReachableSquares(board, Self),
		ReachableOpponent: CountReachableSquares(board, Opponent),
		Territory:         VoronoiTerritory(board),
		FreeCells:         board.FreeCells(),
		Hash:              "0x" + strconv.FormatUint(board.Hash(), 16),
	})
}

// boardFor parses a snapshot and swaps roles when deciding for player 2.
func (s *Server) boardFor(w http.ResponseWriter, text string, player int) (*Board, bool) {
	board, err := ParseSnapshot(text)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	switch player {
	case 0, 1:
		return board, true
	case 2:
		return board.Swapped(), true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "player must be 1 or 2"})
		return nil, false
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug().
					Str("req_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Msg("http")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
