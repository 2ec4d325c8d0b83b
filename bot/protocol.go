package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// protocolSession is the state of one game on the stdin/stdout channel.
type protocolSession struct {
	ai        *AIPlayer
	governor  *TimeGovernor
	store     *ConfigStore
	analytics *AnalyticsPublisher
	logger    zerolog.Logger
	// forced moves are played instead of searching, one per turn, as a
	// replay aid.
	forced []Direction
}

// parseForcedMoves reads a move list such as "nnesw".
func parseForcedMoves(moves string) ([]Direction, error) {
	out := make([]Direction, 0, len(moves))
	for i := 0; i < len(moves); i++ {
		dir, err := DirectionFromLetter(moves[i])
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		out = append(out, dir)
	}
	return out, nil
}

// run answers one move per snapshot read from in until in ends.
func (s *protocolSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		board, err := ReadSnapshot(reader)
		if errors.Is(err, io.EOF) {
			s.logger.Info().Int("turns", s.governor.Turn()).Msg("input closed, game over")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				// stdin was closed under us during shutdown
				return nil
			}
			return fmt.Errorf("turn %d: %w", s.governor.Turn()+1, err)
		}

		cfg := s.store.Get()
		turnCtx, cancel := s.governor.StartTurn(ctx, cfg)
		turn := s.governor.Turn()
		var decision Decision
		if len(s.forced) > 0 {
			decision = Decision{Move: s.forced[0]}
			s.forced = s.forced[1:]
		} else {
			decision = s.ai.ChooseMove(turnCtx, board, cfg)
		}
		cancel()

		if _, err := fmt.Fprintf(writer, "%d\n", decision.Move.ProtocolCode()); err != nil {
			return fmt.Errorf("write move: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush move: %w", err)
		}
		s.analytics.Decision("protocol", turn, decision)
		s.logger.Info().
			Int("turn", turn).
			Str("move", decision.Move.String()).
			Int("depth", decision.Depth).
			Int("score", decision.Score).
			Int64("nodes", decision.Stats.Nodes).
			Bool("isolated", decision.Isolated).
			Bool("fallback", decision.Fallback).
			Dur("elapsed", decision.Elapsed).
			Msg("turn")
	}
}
