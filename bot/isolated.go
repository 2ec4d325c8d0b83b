package main

// decideIsolated picks Self's move once the agents can no longer meet: take
// the move that leaves the most room, preferring moves along walls so open
// space is filled without being split.
func decideIsolated(b *Board) Direction {
	best := fallbackDirection(b)
	bestScore := -1
	bestHug := false
	for _, dir := range allDirections {
		if !b.IsPassable(dir, Self) {
			continue
		}
		next := b.pos[Self].step(dir)
		b.Move(dir, Self)
		score := CountReachableSquares(b, Self)
		// Self's own previous cell is now occupied, so it counts as a wall.
		hug := 4-b.openNeighbors(next) >= 2
		b.Undo(dir, Self)
		if score > bestScore || (score == bestScore && hug && !bestHug) {
			best, bestScore, bestHug = dir, score, hug
		}
	}
	return best
}
