package main

const unreached = -1

type territoryScratch struct {
	dist  [2][]int
	queue []int
}

func (t *territoryScratch) reset(n int) {
	for p := range t.dist {
		if cap(t.dist[p]) < n {
			t.dist[p] = make([]int, n)
		}
		t.dist[p] = t.dist[p][:n]
		for i := range t.dist[p] {
			t.dist[p][i] = unreached
		}
	}
}

// VoronoiTerritory counts the free cells Self reaches strictly first minus
// those the Opponent reaches strictly first.
func VoronoiTerritory(b *Board) int {
	var t territoryScratch
	return t.score(b)
}

func (t *territoryScratch) score(b *Board) int {
	t.reset(len(b.walls))
	t.distances(b, Self)
	t.distances(b, Opponent)
	score := 0
	for i, occupied := range b.walls {
		if occupied {
			continue
		}
		ds, do := t.dist[Self][i], t.dist[Opponent][i]
		switch {
		case ds == unreached && do == unreached:
		case do == unreached || (ds != unreached && ds < do):
			score++
		case ds == unreached || do < ds:
			score--
		}
	}
	return score
}

func (t *territoryScratch) distances(b *Board, player Player) {
	dist := t.dist[player]
	start := b.pos[player]
	t.queue = append(t.queue[:0], b.index(start))
	dist[b.index(start)] = 0
	for head := 0; head < len(t.queue); head++ {
		cur := t.queue[head]
		p := Position{X: cur % b.width, Y: cur / b.width}
		for _, dir := range allDirections {
			next := p.step(dir)
			if b.IsWall(next) {
				continue
			}
			idx := b.index(next)
			if dist[idx] != unreached {
				continue
			}
			dist[idx] = dist[cur] + 1
			t.queue = append(t.queue, idx)
		}
	}
}
