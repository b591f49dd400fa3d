package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devkichauhan/reliaquest/internal/employee/upstream/fake"
	"github.com/devkichauhan/reliaquest/internal/platform/config"
	"github.com/devkichauhan/reliaquest/internal/platform/logger"
)

// main runs an in-memory employee service for local development.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New(config.DefaultLogLevel).Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.MockFromEnv()
	log := logger.New(config.DefaultLogLevel).With("component", "mock-employee-api")

	server := fake.New(
		fake.WithLogger(log),
		fake.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	server.Seed(cfg.SeedCount)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(cfg.PathPrefix),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mock employee api",
			"addr", cfg.Addr,
			"prefix", cfg.PathPrefix,
			"employees", server.Len(),
			"rate_limit_rps", cfg.RateLimitRPS,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("mock employee api stopped with error", "error", err)
		os.Exit(1)
	}
}
