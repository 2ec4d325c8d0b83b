package main

import "testing"

func TestDecideIsolatedPrefersLargerRegion(t *testing.T) {
	board := mustBoard(t,
		"2#######",
		"########",
		"   1    ",
		"########",
	)
	if got := decideIsolated(board); got != East {
		t.Fatalf("expected East toward four free cells, got %s", got)
	}
}

func TestDecideIsolatedHugsWallsOnTies(t *testing.T) {
	// North, West and East all leave seven cells; North lands in the middle
	// of the room while West runs along the wall.
	board := mustBoard(t,
		"2####",
		"#   #",
		"#   #",
		"# 1 #",
		"#####",
	)
	if got := decideIsolated(board); got != West {
		t.Fatalf("expected West along the wall, got %s", got)
	}
}
