package main

import "golang.org/x/exp/constraints"

// QuiescencePolicy decides whether a horizon leaf gets a one-ply probe and
// how the probe is reconciled with the static value.
type QuiescencePolicy interface {
	Probe(b *Board, qdepth int) bool
	Settle(static, probed int) int
}

type noQuiescence struct{}

func (noQuiescence) Probe(*Board, int) bool { return false }

func (noQuiescence) Settle(static, _ int) int { return static }

// instabilityQuiescence probes up to Plies extra plies while the agents can
// still meet. A probe within Margin of the static value is treated as quiet.
type instabilityQuiescence struct {
	Plies  int
	Margin int
}

func (q instabilityQuiescence) Probe(b *Board, qdepth int) bool {
	if qdepth >= q.Plies {
		return false
	}
	return !IsOpponentIsolated(b)
}

func (q instabilityQuiescence) Settle(static, probed int) int {
	if absInt(probed-static) <= q.Margin {
		return static
	}
	return probed
}

func newQuiescencePolicy(cfg Config) QuiescencePolicy {
	if cfg.QuiescencePlies <= 0 {
		return noQuiescence{}
	}
	return instabilityQuiescence{Plies: cfg.QuiescencePlies, Margin: cfg.QuiescenceMargin}
}

func absInt[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
