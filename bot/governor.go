package main

import (
	"context"
	"time"
)

const minTurnBudget = time.Millisecond

// TimeGovernor hands out the per-turn deadline. The first turn gets the
// longer startup allowance.
type TimeGovernor struct {
	turn int
	now  func() time.Time
}

func NewTimeGovernor() *TimeGovernor {
	return &TimeGovernor{now: time.Now}
}

// Budget is the search time for the next turn with the safety margin
// already taken off.
func (g *TimeGovernor) Budget(cfg Config) time.Duration {
	ms := cfg.TurnBudgetMs
	if g.turn == 0 {
		ms = cfg.FirstTurnBudgetMs
	}
	return searchBudget(ms, cfg.SafetyMarginMs)
}

// StartTurn derives the turn context from parent and advances the turn
// counter. Cancelling parent also ends the turn.
func (g *TimeGovernor) StartTurn(parent context.Context, cfg Config) (context.Context, context.CancelFunc) {
	budget := g.Budget(cfg)
	g.turn++
	return context.WithDeadline(parent, g.now().Add(budget))
}

func (g *TimeGovernor) Turn() int {
	return g.turn
}

func searchBudget(budgetMs, marginMs int) time.Duration {
	budget := time.Duration(budgetMs-marginMs) * time.Millisecond
	return clamp(budget, minTurnBudget, max(time.Duration(budgetMs)*time.Millisecond, minTurnBudget))
}
