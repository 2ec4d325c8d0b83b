package main

import (
	"fmt"
	"strings"
	"testing"
)

// mustBoard builds a board from snapshot rows.
func mustBoard(t *testing.T, rows ...string) *Board {
	t.Helper()
	text := fmt.Sprintf("%d %d\n%s\n", len(rows[0]), len(rows), strings.Join(rows, "\n"))
	board, err := ParseSnapshot(text)
	if err != nil {
		t.Fatalf("parse board: %v", err)
	}
	return board
}

func TestMoveUndoRestoresBoard(t *testing.T) {
	board := mustBoard(t,
		"#     ",
		" 1  # ",
		"   #  ",
		"     2",
	)
	for _, player := range []Player{Self, Opponent} {
		for _, dir := range allDirections {
			if !board.IsPassable(dir, player) {
				continue
			}
			before := board.Clone()
			board.Move(dir, player)
			if board.Equal(before) {
				t.Fatalf("%s %s did not change the board", player, dir)
			}
			board.Undo(dir, player)
			if !board.Equal(before) {
				t.Fatalf("%s %s: undo did not restore the board", player, dir)
			}
		}
	}
}

func TestMoveUndoRestoresFullRounds(t *testing.T) {
	board := mustBoard(t,
		"1    ",
		"     ",
		"    2",
	)
	start := board.Clone()
	type step struct {
		dir    Direction
		player Player
	}
	steps := []step{{East, Self}, {West, Opponent}, {South, Self}, {North, Opponent}}
	for _, s := range steps {
		if !board.IsPassable(s.dir, s.player) {
			t.Fatalf("%s %s should be passable", s.player, s.dir)
		}
		board.Move(s.dir, s.player)
		if board.Hash() != ComputeHash(board) {
			t.Fatalf("incremental hash drifted after %s %s", s.player, s.dir)
		}
	}
	for i := len(steps) - 1; i >= 0; i-- {
		board.Undo(steps[i].dir, steps[i].player)
	}
	if !board.Equal(start) {
		t.Fatalf("undoing two rounds did not restore the board")
	}
}

func TestRoundMarksBothHeads(t *testing.T) {
	board := mustBoard(t,
		"1   2",
	)
	board.Move(East, Self)
	if board.IsWall(Position{X: 1, Y: 0}) {
		t.Fatalf("Self's new head must stay open until the round closes")
	}
	board.Move(West, Opponent)
	for _, p := range []Position{{X: 1, Y: 0}, {X: 3, Y: 0}} {
		if !board.IsWall(p) {
			t.Fatalf("expected %v occupied after the round", p)
		}
	}
}

func TestHeadOnCollisionIsDraw(t *testing.T) {
	board := mustBoard(t,
		"1 2",
	)
	board.Move(East, Self)
	if !board.IsPassable(West, Opponent) {
		t.Fatalf("Opponent should be able to step onto Self's fresh head")
	}
	board.Move(West, Opponent)
	if !board.PositionsCoincide() {
		t.Fatalf("expected heads to coincide")
	}
	value, ok := terminalValue(board, 2)
	if !ok || value != 0 {
		t.Fatalf("expected draw, got value=%d terminal=%v", value, ok)
	}
}

func TestLegalMoveCount(t *testing.T) {
	board := mustBoard(t,
		"#1#",
		"  2",
	)
	if got := board.LegalMoveCount(Self); got != 1 {
		t.Fatalf("Self legal moves = %d, want 1", got)
	}
	if got := board.LegalMoveCount(Opponent); got != 1 {
		t.Fatalf("Opponent legal moves = %d, want 1", got)
	}
	if !board.AnyLegalMove(Self) {
		t.Fatalf("Self should have a move")
	}
	if board.IsPassable(North, Self) {
		t.Fatalf("off-board must not be passable")
	}
}

func TestSwappedExchangesAgents(t *testing.T) {
	board := mustBoard(t,
		"1  ",
		" # ",
		"  2",
	)
	swapped := board.Swapped()
	if swapped.Position(Self) != board.Position(Opponent) || swapped.Position(Opponent) != board.Position(Self) {
		t.Fatalf("positions not exchanged")
	}
	if swapped.Hash() == board.Hash() {
		t.Fatalf("swapped board should hash differently")
	}
	if swapped.Hash() != ComputeHash(swapped) {
		t.Fatalf("swapped hash not recomputed")
	}
	if swapped.FreeCells() != board.FreeCells() {
		t.Fatalf("walls should be unchanged")
	}
}
