package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/techpolitics/newsfeed/internal/cms"
	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/feed"
	"github.com/techpolitics/newsfeed/internal/logger"
	"github.com/techpolitics/newsfeed/internal/rates"
	"github.com/techpolitics/newsfeed/internal/views"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store, err := cms.New(cfg.Store, log)
	if err != nil {
		log.Error("init content store client", slog.Any("err", err))
		os.Exit(1)
	}

	// Ranked trending and per-post view counts need Redis; without it the
	// feed silently stays on the recency strategy.
	var (
		ranker    feed.Ranker
		viewStore *views.Store
	)
	if cfg.Redis.Addr != "" {
		rdb, err := views.Connect(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, ranked trending disabled", slog.Any("err", err))
		} else {
			defer rdb.Close()
			viewStore = views.NewStore(rdb)
			ranker = viewStore
		}
	}

	composer := feed.NewComposer(store, ranker, feed.Options{
		DaysCutoff:       cfg.DaysCutoff,
		TrendingStrategy: cfg.TrendingStrategy,
	}, log)

	var viewsWriter *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		viewsWriter = kafka.NewWriter(kafka.WriterConfig{
			Brokers:     cfg.KafkaBrokers,
			Topic:       cfg.ViewsTopic,
			MaxAttempts: 3,
		})
		defer viewsWriter.Close()
	}

	srv := &server{
		log:         log,
		cfg:         cfg,
		store:       store,
		images:      cms.NewImageURLBuilder(cfg.ProjectID, cfg.Dataset),
		composer:    composer,
		viewStore:   viewStore,
		rates:       rates.New(cfg.RatesURL, cfg.RatesTTL, cfg.RatesFallback, log),
		viewsWriter: viewsWriter,
		now:         time.Now,
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
