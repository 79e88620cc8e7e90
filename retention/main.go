package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/logger"
	"github.com/techpolitics/newsfeed/internal/views"
)

func main() {
	log := logger.New("retention")
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Retry the Redis connection with backoff; the trim loop is not urgent.
	var rdb *redis.Client
	maxRetries := 10
	retryDelay := 2 * time.Second
	for i := 0; i < maxRetries; i++ {
		rdb, err = views.Connect(cfg.Redis)
		if err == nil {
			break
		}
		log.Warn("redis unavailable, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", maxRetries),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}
		retryDelay *= 2 // Exponential backoff
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	if rdb == nil {
		log.Error("failed to connect to redis after retries")
		os.Exit(1)
	}
	defer rdb.Close()

	store := views.NewStore(rdb)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("view-counter retention running",
		slog.Duration("interval", cfg.Interval),
		slog.Int64("keep_top", cfg.KeepTop),
	)

	// Run immediately on start, then on every tick.
	runOnce(ctx, log, store, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, store, cfg)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, store *views.Store, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	removed, err := store.Trim(subCtx, cfg.KeepTop)
	if err != nil {
		log.Warn("retention run failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	if removed > 0 {
		log.Info("retention run completed", slog.Int64("removed", removed))
	} else {
		log.Debug("retention run completed, nothing to prune")
	}
}
