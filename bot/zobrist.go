package main

import (
	"sync"

	"lukechampine.com/frand"
)

// ZobristTable holds one random key per (cell, occupied) and per (cell, agent).
type ZobristTable struct {
	width  int
	height int
	walls  []uint64
	agents [2][]uint64
}

type zobristKey struct {
	width  int
	height int
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[zobristKey]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[zobristKey]*ZobristTable)}

func GetZobrist(width, height int) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	key := zobristKey{width: width, height: height}
	if table, ok := zobristTables.tables[key]; ok {
		return table
	}
	cells := width * height
	table := &ZobristTable{
		width:  width,
		height: height,
		walls:  randomKeys(cells),
	}
	table.agents[Self] = randomKeys(cells)
	table.agents[Opponent] = randomKeys(cells)
	zobristTables.tables[key] = table
	return table
}

func randomKeys(n int) []uint64 {
	keys := make([]uint64, n)
	for i := range keys {
		// zero would make the key a no-op under XOR
		for keys[i] == 0 {
			keys[i] = frand.Uint64n(^uint64(0))
		}
	}
	return keys
}

func (z *ZobristTable) wall(idx int) uint64 {
	return z.walls[idx]
}

func (z *ZobristTable) agent(p Player, idx int) uint64 {
	return z.agents[p][idx]
}

// ComputeHash rebuilds the hash of b from scratch.
func ComputeHash(b *Board) uint64 {
	z := b.zobrist
	var hash uint64
	for idx, occupied := range b.walls {
		if occupied {
			hash ^= z.wall(idx)
		}
	}
	hash ^= z.agent(Self, b.index(b.pos[Self]))
	hash ^= z.agent(Opponent, b.index(b.pos[Opponent]))
	return hash
}
