package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr       = flag.String("addr", "", "analysis API listen address, e.g. :8080 (disabled when empty)")
		configPath = flag.String("config", "", "JSON config file overlaid on the defaults")
		logLevel   = flag.String("log-level", getenv("TRON_LOG_LEVEL", "info"), "zerolog level")
		moves      = flag.String("moves", "", "force the first moves, one letter per turn (n, e, s, w)")
		serveOnly  = flag.Bool("serve-only", false, "run the analysis API without the stdin game loop")
	)
	flag.Parse()

	logger, err := newLogger(os.Stderr, *logLevel)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		if cfg, err = LoadConfigFile(*configPath, cfg); err != nil {
			return err
		}
	}
	cfg = applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configStore.Update(cfg)

	forced, err := parseForcedMoves(*moves)
	if err != nil {
		return fmt.Errorf("-moves: %w", err)
	}
	if *serveOnly && *addr == "" {
		return errors.New("-serve-only needs -addr")
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	hub := NewHub(cfg.AnalyticsQueueSize)
	var analytics *AnalyticsPublisher
	g, gctx := errgroup.WithContext(ctx)

	if *addr != "" {
		analytics = NewAnalyticsPublisher(hub)
		srv := NewServer(logger, configStore, hub)
		server := &http.Server{
			Addr:              *addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			hub.Run(gctx.Done())
			return nil
		})
		g.Go(func() error {
			logger.Info().Str("addr", *addr).Msg("analysis API listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn().Err(err).Msg("graceful shutdown failed")
				_ = server.Close()
			}
			return nil
		})
	}

	if !*serveOnly {
		governor := NewTimeGovernor()
		session := &protocolSession{
			ai:        NewAIPlayer(logger, analytics.DepthHook("protocol", func() int { return governor.Turn() })),
			governor:  governor,
			store:     configStore,
			analytics: analytics,
			logger:    logger,
			forced:    forced,
		}
		g.Go(func() error {
			// The game ends with stdin; take the API down with it.
			defer cancel()
			return session.run(gctx, os.Stdin, os.Stdout)
		})
		go func() {
			// Unblock a pending stdin read on shutdown.
			<-gctx.Done()
			_ = os.Stdin.Close()
		}()
	}

	err = g.Wait()
	if sigCtx.Err() != nil {
		logger.Info().Msg("shutdown signal received")
	}
	return err
}
