package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/server"
	"github.com/pageza/recipe-catalog/backend/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	zl, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zl.Warn("failed to close database", zap.Error(err))
		}
	}()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(db.DB, migrations.FS, zl); err != nil {
			return err
		}
	}

	var opts []server.Option
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, zl)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		opts = append(opts, server.WithLimiter(middleware.NewRedisLimiter(rdb, middleware.RateLimitConfig{
			Window:    cfg.RateLimitWindow,
			Limit:     cfg.RateLimitRequests,
			KeyPrefix: "rate_limit:recipe_mutation",
		})))
	} else {
		zl.Info("REDIS_URL not set, rate limiting per process")
	}

	srv := server.New(cfg, db, zl, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	zl.Info("server stopped")
	return nil
}
