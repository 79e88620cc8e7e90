package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techpolitics/newsfeed/internal/config"
)

const (
	rankedKey     = "views:ranked"
	counterPrefix = "views:count:"

	connectTimeout = 2 * time.Second
)

// Connect opens a Redis connection and verifies it answers.
func Connect(cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

// Store keeps per-post view counters plus a ranked set for trending.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps an established Redis connection.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Record counts one view of the given post.
func (s *Store) Record(ctx context.Context, slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}

	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, counterPrefix+slug)
	pipe.ZIncrBy(ctx, rankedKey, 1, slug)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record view for %s: %w", slug, err)
	}
	return nil
}

// Count returns the total views for one post; zero when never viewed.
func (s *Store) Count(ctx context.Context, slug string) (int64, error) {
	n, err := s.rdb.Get(ctx, counterPrefix+slug).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count views for %s: %w", slug, err)
	}
	return n, nil
}

// TopSlugs returns up to n post slugs ordered by view count descending.
func (s *Store) TopSlugs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = 10
	}
	slugs, err := s.rdb.ZRevRange(ctx, rankedKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("top slugs: %w", err)
	}
	return slugs, nil
}

// Trim drops everything outside the top keep entries of the ranked set,
// counters included. Returns how many posts were pruned.
func (s *Store) Trim(ctx context.Context, keep int64) (int64, error) {
	if keep <= 0 {
		return 0, errors.New("keep must be positive")
	}

	total, err := s.rdb.ZCard(ctx, rankedKey).Result()
	if err != nil {
		return 0, fmt.Errorf("ranked set size: %w", err)
	}
	if total <= keep {
		return 0, nil
	}

	stale, err := s.rdb.ZRange(ctx, rankedKey, 0, total-keep-1).Result()
	if err != nil {
		return 0, fmt.Errorf("stale slugs: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.ZRemRangeByRank(ctx, rankedKey, 0, total-keep-1)
	for _, slug := range stale {
		pipe.Del(ctx, counterPrefix+slug)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("prune counters: %w", err)
	}
	return int64(len(stale)), nil
}
