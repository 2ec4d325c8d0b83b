package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type replayer struct {
	client   *http.Client
	baseURL  string
	logger   zerolog.Logger
	player   int
	budgetMs int
	forced   string
}

type decideRequest struct {
	Board    string `json:"board"`
	Player   int    `json:"player"`
	BudgetMs int    `json:"budget_ms"`
}

type decisionResponse struct {
	Move      string  `json:"move"`
	Code      int     `json:"code"`
	Depth     int     `json:"depth"`
	Score     int     `json:"score"`
	Isolated  bool    `json:"isolated"`
	Fallback  bool    `json:"fallback"`
	Nodes     int64   `json:"nodes"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

type snapshot struct {
	turn int
	text string
}

func main() {
	var (
		addr     = flag.String("addr", getenv("BOT_URL", "http://localhost:8080"), "bot analysis API base URL")
		file     = flag.String("file", "", "file with consecutive board snapshots")
		moves    = flag.String("moves", "", "moves forced for the first turns, one letter each (n, e, s, w)")
		player   = flag.Int("player", getenvInt("REPLAY_PLAYER", 1), "which agent to decide for (1 or 2)")
		budgetMs = flag.Int("budget-ms", getenvInt("REPLAY_BUDGET_MS", 950), "per-turn search budget")
		level    = flag.String("log-level", getenv("REPLAY_LOG_LEVEL", "info"), "zerolog level")
	)
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replayer: %v\n", err)
		os.Exit(2)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()

	if *file == "" {
		logger.Fatal().Msg("-file is required")
	}
	if err := validateMoves(*moves); err != nil {
		logger.Fatal().Err(err).Msg("bad -moves")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &replayer{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  strings.TrimRight(*addr, "/"),
		logger:   logger,
		player:   *player,
		budgetMs: *budgetMs,
		forced:   strings.ToLower(*moves),
	}
	if err := r.run(ctx, *file); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("replay failed")
	}
}

func (r *replayer) run(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	if err := r.waitBotReady(ctx); err != nil {
		return fmt.Errorf("bot not ready: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	snapshots := make(chan snapshot, 8)
	g.Go(func() error {
		defer close(snapshots)
		return readSnapshots(gctx, bufio.NewReader(f), snapshots)
	})
	g.Go(func() error {
		played := 0
		for snap := range snapshots {
			if err := r.replayTurn(gctx, snap); err != nil {
				return fmt.Errorf("turn %d: %w", snap.turn, err)
			}
			played++
		}
		r.logger.Info().Int("turns", played).Msg("replay finished")
		return nil
	})
	return g.Wait()
}

func (r *replayer) replayTurn(ctx context.Context, snap snapshot) error {
	if snap.turn <= len(r.forced) {
		r.logger.Info().
			Int("turn", snap.turn).
			Str("move", string(r.forced[snap.turn-1])).
			Bool("forced", true).
			Msg("turn")
		return nil
	}
	var out decisionResponse
	req := decideRequest{Board: snap.text, Player: r.player, BudgetMs: r.budgetMs}
	if err := r.postJSON(ctx, "/api/decide", req, &out); err != nil {
		return err
	}
	r.logger.Info().
		Int("turn", snap.turn).
		Str("move", out.Move).
		Int("code", out.Code).
		Int("depth", out.Depth).
		Int("score", out.Score).
		Int64("nodes", out.Nodes).
		Bool("isolated", out.Isolated).
		Bool("fallback", out.Fallback).
		Float64("elapsed_ms", out.ElapsedMs).
		Msg("turn")
	return nil
}

// readSnapshots splits the replay file into snapshot texts. Each one is a
// "width height" header followed by height rows.
func readSnapshots(ctx context.Context, reader *bufio.Reader, out chan<- snapshot) error {
	turn := 0
	for {
		header, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && strings.TrimSpace(header) == "" {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		header = strings.TrimRight(header, "\r\n")
		if strings.TrimSpace(header) == "" {
			continue
		}
		fields := strings.Fields(header)
		if len(fields) != 2 {
			return fmt.Errorf("snapshot %d: bad header %q", turn+1, header)
		}
		height, err := strconv.Atoi(fields[1])
		if err != nil || height <= 0 {
			return fmt.Errorf("snapshot %d: bad height %q", turn+1, fields[1])
		}
		var sb strings.Builder
		sb.WriteString(header)
		sb.WriteByte('\n')
		for y := 0; y < height; y++ {
			row, err := reader.ReadString('\n')
			if err != nil && (!errors.Is(err, io.EOF) || row == "") {
				return fmt.Errorf("snapshot %d row %d: %w", turn+1, y, err)
			}
			sb.WriteString(strings.TrimRight(row, "\r\n"))
			sb.WriteByte('\n')
		}
		turn++
		select {
		case out <- snapshot{turn: turn, text: sb.String()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func validateMoves(moves string) error {
	for i, c := range strings.ToLower(moves) {
		switch c {
		case 'n', 'e', 's', 'w':
		default:
			return fmt.Errorf("move %d: unknown direction %q", i, c)
		}
	}
	return nil
}

func (r *replayer) waitBotReady(ctx context.Context) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if err := r.ping(ctx); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, 500*time.Millisecond) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("timeout after 30s")
}

func (r *replayer) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (r *replayer) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
