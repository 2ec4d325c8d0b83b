package main

import "fmt"

const (
	orderingSwap  = "swap"
	orderingShift = "shift"
	orderingNone  = "none"
)

// MoveOrderer decides how a child that raised alpha is moved up so later
// passes try it first.
type MoveOrderer interface {
	Promote(children []nodeID, i int)
}

type swapPromoter struct{}

func (swapPromoter) Promote(children []nodeID, i int) {
	children[0], children[i] = children[i], children[0]
}

// shiftPromoter moves the child to the front and keeps the rest in order.
type shiftPromoter struct{}

func (shiftPromoter) Promote(children []nodeID, i int) {
	if i == 0 {
		return
	}
	best := children[i]
	copy(children[1:i+1], children[:i])
	children[0] = best
}

type noPromoter struct{}

func (noPromoter) Promote([]nodeID, int) {}

func newMoveOrderer(name string) (MoveOrderer, error) {
	switch name {
	case orderingSwap, "":
		return swapPromoter{}, nil
	case orderingShift:
		return shiftPromoter{}, nil
	case orderingNone:
		return noPromoter{}, nil
	default:
		return nil, fmt.Errorf("unknown move ordering %q", name)
	}
}
