package main

// Board is the per-turn game state: occupied cells plus both agents' heads.
// The search mutates it in place through paired Move/Undo calls.
type Board struct {
	width   int
	height  int
	walls   []bool
	pos     [2]Position
	hash    uint64
	zobrist *ZobristTable

	// changed holds the cells each move newly occupied; frames[i] is where
	// move i starts in it. Undo pops the last frame.
	changed []int
	frames  []int
}

func NewBoard(width, height int) *Board {
	b := &Board{
		width:   width,
		height:  height,
		walls:   make([]bool, width*height),
		zobrist: GetZobrist(width, height),
	}
	b.hash = ComputeHash(b)
	return b
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }
func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Position(p Player) Position {
	return b.pos[p]
}

func (b *Board) index(p Position) int {
	return p.Y*b.width + p.X
}

func (b *Board) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// IsWall reports whether p is occupied. Anything off the board is a wall.
func (b *Board) IsWall(p Position) bool {
	if !b.InBounds(p) {
		return true
	}
	return b.walls[b.index(p)]
}

// SetWall is for board construction only; it is not undoable.
func (b *Board) SetWall(p Position, occupied bool) {
	idx := b.index(p)
	if b.walls[idx] == occupied {
		return
	}
	b.walls[idx] = occupied
	b.hash ^= b.zobrist.wall(idx)
}

// PlaceAgent puts an agent on p and occupies the cell. Construction only.
func (b *Board) PlaceAgent(player Player, p Position) {
	b.hash ^= b.zobrist.agent(player, b.index(b.pos[player]))
	b.pos[player] = p
	b.hash ^= b.zobrist.agent(player, b.index(p))
	b.SetWall(p, true)
}

func (b *Board) IsPassable(dir Direction, player Player) bool {
	return !b.IsWall(b.pos[player].step(dir))
}

// Move advances player one step. The caller must have checked IsPassable.
// A round is Self then Opponent; the Opponent's move closes the round by
// occupying both heads, so until then the Opponent may still step onto
// Self's fresh head (a head-on draw).
func (b *Board) Move(dir Direction, player Player) {
	b.frames = append(b.frames, len(b.changed))
	from := b.pos[player]
	b.occupy(from)
	to := from.step(dir)
	b.relocate(player, from, to)
	if player == Opponent {
		b.occupy(b.pos[Self])
		b.occupy(to)
	}
}

// Undo reverts the most recent Move, which must have been (dir, player).
func (b *Board) Undo(dir Direction, player Player) {
	last := len(b.frames) - 1
	start := b.frames[last]
	for _, idx := range b.changed[start:] {
		b.walls[idx] = false
		b.hash ^= b.zobrist.wall(idx)
	}
	b.changed = b.changed[:start]
	b.frames = b.frames[:last]
	from := b.pos[player]
	b.relocate(player, from, from.step(dir.opposite()))
}

func (b *Board) occupy(p Position) {
	idx := b.index(p)
	if b.walls[idx] {
		return
	}
	b.walls[idx] = true
	b.hash ^= b.zobrist.wall(idx)
	b.changed = append(b.changed, idx)
}

func (b *Board) relocate(player Player, from, to Position) {
	b.hash ^= b.zobrist.agent(player, b.index(from))
	b.hash ^= b.zobrist.agent(player, b.index(to))
	b.pos[player] = to
}

func (b *Board) LegalMoveCount(player Player) int {
	count := 0
	for _, dir := range allDirections {
		if b.IsPassable(dir, player) {
			count++
		}
	}
	return count
}

func (b *Board) AnyLegalMove(player Player) bool {
	for _, dir := range allDirections {
		if b.IsPassable(dir, player) {
			return true
		}
	}
	return false
}

func (b *Board) PositionsCoincide() bool {
	return b.pos[Self] == b.pos[Opponent]
}

// openNeighbors counts the free cells around p.
func (b *Board) openNeighbors(p Position) int {
	count := 0
	for _, dir := range allDirections {
		if !b.IsWall(p.step(dir)) {
			count++
		}
	}
	return count
}

func (b *Board) FreeCells() int {
	count := 0
	for _, occupied := range b.walls {
		if !occupied {
			count++
		}
	}
	return count
}

// Clone copies the board without its undo history.
func (b *Board) Clone() *Board {
	clone := &Board{
		width:   b.width,
		height:  b.height,
		walls:   make([]bool, len(b.walls)),
		pos:     b.pos,
		hash:    b.hash,
		zobrist: b.zobrist,
	}
	copy(clone.walls, b.walls)
	return clone
}

// Swapped returns a copy with the two agents' roles exchanged.
func (b *Board) Swapped() *Board {
	clone := b.Clone()
	clone.pos[Self], clone.pos[Opponent] = b.pos[Opponent], b.pos[Self]
	clone.hash = ComputeHash(clone)
	return clone
}

func (b *Board) Equal(other *Board) bool {
	if b.width != other.width || b.height != other.height || b.pos != other.pos || b.hash != other.hash {
		return false
	}
	for i := range b.walls {
		if b.walls[i] != other.walls[i] {
			return false
		}
	}
	return true
}
