package main

import "sync"

// reachScratch is the working grid for one reachability evaluation. It is
// pooled because the isolated phase evaluates at every leaf.
type reachScratch struct {
	width       int
	height      int
	open        []bool
	bonus       []int
	notCorridor []bool
	seen        []uint32
	stamp       uint32
	queue       []int
	component   []int
}

var reachScratchPool = sync.Pool{New: func() any { return &reachScratch{} }}

func acquireScratch(b *Board) *reachScratch {
	s := reachScratchPool.Get().(*reachScratch)
	n := len(b.walls)
	if cap(s.open) < n {
		s.open = make([]bool, n)
		s.bonus = make([]int, n)
		s.notCorridor = make([]bool, n)
		s.seen = make([]uint32, n)
		s.stamp = 0
	}
	s.width, s.height = b.width, b.height
	s.open = s.open[:n]
	s.bonus = s.bonus[:n]
	s.notCorridor = s.notCorridor[:n]
	s.seen = s.seen[:n]
	for i, occupied := range b.walls {
		s.open[i] = !occupied
		s.bonus[i] = 0
		s.notCorridor[i] = false
	}
	return s
}

func releaseScratch(s *reachScratch) {
	reachScratchPool.Put(s)
}

// neighbor returns the index one step from idx, or false off the board.
func (s *reachScratch) neighbor(idx int, dir Direction) (int, bool) {
	x, y := idx%s.width, idx/s.width
	switch dir {
	case North:
		y--
	case South:
		y++
	case West:
		x--
	default:
		x++
	}
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, false
	}
	return y*s.width + x, true
}

func (s *reachScratch) openDegree(idx int) int {
	deg := 0
	for _, dir := range allDirections {
		if n, ok := s.neighbor(idx, dir); ok && s.open[n] {
			deg++
		}
	}
	return deg
}

func (s *reachScratch) nextStamp() uint32 {
	s.stamp++
	if s.stamp == 0 {
		for i := range s.seen {
			s.seen[i] = 0
		}
		s.stamp = 1
	}
	return s.stamp
}

// fill runs a BFS over open cells from start and leaves the visited cells in
// s.component. Visited cells carry the returned stamp.
func (s *reachScratch) fill(start int) uint32 {
	stamp := s.nextStamp()
	s.component = s.component[:0]
	s.seen[start] = stamp
	s.component = append(s.component, start)
	for head := 0; head < len(s.component); head++ {
		cur := s.component[head]
		for _, dir := range allDirections {
			n, ok := s.neighbor(cur, dir)
			if !ok || !s.open[n] || s.seen[n] == stamp {
				continue
			}
			s.seen[n] = stamp
			s.component = append(s.component, n)
		}
	}
	return stamp
}

// IsOpponentIsolated reports whether Self can never reach the Opponent's
// current cell through free cells.
func IsOpponentIsolated(b *Board) bool {
	s := acquireScratch(b)
	defer releaseScratch(s)
	start := b.index(b.pos[Self])
	target := b.index(b.pos[Opponent])
	s.open[start] = true
	s.fill(start)
	for _, cur := range s.component {
		for _, dir := range allDirections {
			if n, ok := s.neighbor(cur, dir); ok && n == target {
				return false
			}
		}
	}
	return true
}

// CountReachableSquares estimates how many cells player can still fill.
// Dead ends and one-wide corridors are folded into bonuses on the cell that
// leads into them; only the best single bonus counts since a player can take
// one branch only.
func CountReachableSquares(b *Board, player Player) int {
	s := acquireScratch(b)
	defer releaseScratch(s)
	start := b.index(b.pos[player])
	s.open[start] = true

	stamp := s.fill(start)
	for i := range s.open {
		if s.open[i] && s.seen[i] != stamp {
			s.open[i] = false
		}
	}

	for {
		changed := s.collapseDeadEnds(start)
		if s.resolveCorridors(start) {
			changed = true
		}
		if !changed {
			break
		}
	}

	s.fill(start)
	best := 0
	for _, idx := range s.component {
		best = max(best, s.bonus[idx])
	}
	return len(s.component) - 1 + best
}

// collapseDeadEnds removes every open cell with a single open neighbour,
// chaining outward, and records the chain length on the neighbour.
func (s *reachScratch) collapseDeadEnds(start int) bool {
	s.queue = s.queue[:0]
	for i, open := range s.open {
		if open && i != start && s.openDegree(i) == 1 {
			s.queue = append(s.queue, i)
		}
	}
	changed := false
	for len(s.queue) > 0 {
		d := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]
		if !s.open[d] || s.openDegree(d) != 1 {
			continue
		}
		entrance := -1
		for _, dir := range allDirections {
			if n, ok := s.neighbor(d, dir); ok && s.open[n] {
				entrance = n
				break
			}
		}
		s.bonus[entrance] = max(s.bonus[entrance], 1+s.bonus[d])
		s.open[d] = false
		changed = true
		if entrance != start && s.openDegree(entrance) == 1 {
			s.queue = append(s.queue, entrance)
		}
	}
	return changed
}

// resolveCorridors tests each two-neighbour cell. If sealing it disconnects
// the board, the side away from start is folded into a bonus on the near
// entrance and closed.
func (s *reachScratch) resolveCorridors(start int) bool {
	changed := false
	for c := range s.open {
		if !s.open[c] || c == start || s.notCorridor[c] || s.openDegree(c) != 2 {
			continue
		}
		var sides [2]int
		k := 0
		for _, dir := range allDirections {
			if n, ok := s.neighbor(c, dir); ok && s.open[n] {
				sides[k] = n
				k++
			}
		}

		s.open[c] = false
		stamp := s.fill(sides[0])
		if s.seen[sides[1]] == stamp {
			s.open[c] = true
			s.notCorridor[c] = true
			continue
		}

		near, far := sides[0], sides[1]
		if s.seen[start] == stamp {
			s.fill(far)
		} else {
			near, far = far, near
		}
		// s.component now holds the far side.
		farBest := 0
		for _, idx := range s.component {
			farBest = max(farBest, s.bonus[idx])
		}
		through := len(s.component) + farBest
		s.bonus[near] = max(s.bonus[near], 1+max(s.bonus[c], through))
		for _, idx := range s.component {
			s.open[idx] = false
		}
		changed = true
	}
	return changed
}
