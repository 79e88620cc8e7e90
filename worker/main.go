package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/logger"
	"github.com/techpolitics/newsfeed/internal/views"
)

type viewRecorder interface {
	Record(ctx context.Context, slug string) error
}

func main() {
	log := logger.New("views-worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	rdb := connectRedis(ctx, log, cfg.Redis)
	if rdb == nil {
		os.Exit(1)
	}
	defer rdb.Close()

	store := views.NewStore(rdb)
	deduper := views.NewDeduper(cfg.DedupeCapacity, cfg.DedupeTTL)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.ViewsTopic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.ViewsTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("views worker started",
		slog.String("topic", cfg.ViewsTopic),
		slog.String("group", cfg.ConsumerGroup),
		slog.String("dlq_topic", cfg.ViewsTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, store, deduper, msg); err != nil {
			log.Warn("process view event failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				// Skip the commit; the message is redelivered on restart.
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// connectRedis retries the connection with a fixed delay so the worker
// survives Redis coming up after it. Returns nil when retries or the
// context run out.
func connectRedis(ctx context.Context, log *slog.Logger, cfg config.Redis) *redis.Client {
	const maxRetries = 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		rdb, err := views.Connect(cfg)
		if err == nil {
			return rdb
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
			return nil
		}
	}

	log.Error("redis unreachable after retries", slog.String("addr", cfg.Addr))
	return nil
}

// processMessage validates one view event and counts it. Redelivered events
// are recognized by ID and dropped without touching the counters.
func processMessage(ctx context.Context, log *slog.Logger, recorder viewRecorder, deduper *views.Deduper, msg kafka.Message) error {
	var event views.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	slug := strings.TrimSpace(event.Slug)
	if slug == "" {
		return errors.New("event missing slug")
	}

	if event.ID != "" && deduper.Seen(event.ID) {
		log.Debug("duplicate view event", slog.String("id", event.ID), slog.String("slug", slug))
		return nil
	}

	if err := recorder.Record(ctx, slug); err != nil {
		return err
	}

	if event.ID != "" {
		deduper.Remember(event.ID)
	}
	return nil
}

// sendToDLQ writes a poison message to the DLQ with bounded exponential
// backoff. Reports whether the write eventually succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, writer *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := writer.WriteMessages(ctx, dlqMsg); err == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("DLQ write failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				log.Info("context canceled during DLQ retry")
				return false
			}
		}
	}

	log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}
