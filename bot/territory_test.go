package main

import "testing"

func TestVoronoiTerritoryAntisymmetric(t *testing.T) {
	boards := [][]string{
		{
			"1  ",
			"   ",
			"  2",
		},
		{
			"1  #2",
		},
		{
			"#     ",
			" 1  # ",
			"   #  ",
			"     2",
		},
		{
			"##########",
			"#1   #   #",
			"# ## # # #",
			"#  #   # #",
			"## ##### #",
			"#       2#",
			"##########",
		},
	}
	for i, rows := range boards {
		board := mustBoard(t, rows...)
		forward := VoronoiTerritory(board)
		backward := VoronoiTerritory(board.Swapped())
		if forward != -backward {
			t.Fatalf("board %d: territory %d vs swapped %d", i, forward, backward)
		}
	}
}

func TestVoronoiTerritoryValues(t *testing.T) {
	symmetric := mustBoard(t,
		"1  ",
		"   ",
		"  2",
	)
	if got := VoronoiTerritory(symmetric); got != 0 {
		t.Fatalf("symmetric arena: got %d, want 0", got)
	}
	walledOff := mustBoard(t,
		"1  #2",
	)
	if got := VoronoiTerritory(walledOff); got != 2 {
		t.Fatalf("walled-off opponent: got %d, want 2", got)
	}
}

func TestVoronoiTerritoryAfterFirstMoveIsFinite(t *testing.T) {
	for _, player := range []Player{Self, Opponent} {
		board := mustBoard(t,
			"1  ",
			"   ",
			"  2",
		)
		for _, dir := range allDirections {
			if !board.IsPassable(dir, player) {
				continue
			}
			board.Move(dir, player)
			got := VoronoiTerritory(board)
			if got < -9 || got > 9 {
				t.Fatalf("%s %s: territory %d out of range", player, dir, got)
			}
			board.Undo(dir, player)
		}
	}
}
