package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestSession(t *testing.T, forced string) *protocolSession {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FirstTurnBudgetMs = 150
	cfg.TurnBudgetMs = 100
	cfg.SafetyMarginMs = 20
	cfg.EnableEvalCache = false
	moves, err := parseForcedMoves(forced)
	if err != nil {
		t.Fatalf("forced moves: %v", err)
	}
	return &protocolSession{
		ai:       NewAIPlayer(zerolog.Nop(), nil),
		governor: NewTimeGovernor(),
		store:    &ConfigStore{config: cfg},
		logger:   zerolog.Nop(),
		forced:   moves,
	}
}

func TestProtocolAnswersEverySnapshot(t *testing.T) {
	input := "6 3\n#### 2\n#1    \n# ####\n" +
		"6 3\n#### 2\n###1  \n# ####\n"
	var out bytes.Buffer
	session := newTestSession(t, "")
	if err := session.run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Fields(out.String())
	if len(lines) != 2 {
		t.Fatalf("expected two moves, got %q", out.String())
	}
	if lines[0] != "2" {
		t.Fatalf("first move should be East (2), got %s", lines[0])
	}
	if session.governor.Turn() != 2 {
		t.Fatalf("governor saw %d turns", session.governor.Turn())
	}
}

func TestProtocolForcedMoves(t *testing.T) {
	input := "3 1\n1 2\n3 1\n1 2\n"
	var out bytes.Buffer
	session := newTestSession(t, "w")
	if err := session.run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Fields(out.String())
	if len(lines) != 2 || lines[0] != "4" {
		t.Fatalf("expected forced West (4) first, got %q", out.String())
	}
}

func TestProtocolMalformedInputIsFatal(t *testing.T) {
	input := "3 1\n1?2\n"
	var out bytes.Buffer
	err := newTestSession(t, "").run(context.Background(), strings.NewReader(input), &out)
	if !errors.Is(err, errMalformedSnapshot) {
		t.Fatalf("expected malformed snapshot error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no move should be written for a bad snapshot")
	}
}

func TestParseForcedMoves(t *testing.T) {
	moves, err := parseForcedMoves("NeSw")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Direction{North, East, South, West}
	for i := range want {
		if moves[i] != want[i] {
			t.Fatalf("move %d = %s, want %s", i, moves[i], want[i])
		}
	}
	if _, err := parseForcedMoves("nx"); err == nil {
		t.Fatalf("expected error for unknown letter")
	}
}
