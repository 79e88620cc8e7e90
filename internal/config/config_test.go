package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/techpolitics/newsfeed/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("CMS_PROJECT_ID", "cxbzjc9x")
	t.Setenv("CMS_DATASET", "")
	t.Setenv("CMS_API_VERSION", "")
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("FEED_DEFAULT_LIMIT", "")
	t.Setenv("FEED_MAX_LIMIT", "")
	t.Setenv("FEED_DAYS_CUTOFF", "")
	t.Setenv("FEED_TRENDING_STRATEGY", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "cxbzjc9x", cfg.ProjectID)
	require.Equal(t, "production", cfg.Dataset)
	require.Equal(t, "2023-07-01", cfg.APIVersion)
	require.True(t, cfg.UseCDN)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, 12, cfg.DefaultLimit)
	require.Equal(t, 50, cfg.MaxLimit)
	require.Equal(t, 30, cfg.DaysCutoff)
	require.Equal(t, config.TrendingRecent, cfg.TrendingStrategy)
	require.Equal(t, 5*time.Minute, cfg.RatesTTL)
	require.Equal(t, 1.0, cfg.RatesFallback)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("CMS_PROJECT_ID", "abc123")
	t.Setenv("CMS_DATASET", "staging")
	t.Setenv("CMS_USE_CDN", "false")
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("FEED_DEFAULT_LIMIT", "6")
	t.Setenv("FEED_MAX_LIMIT", "24")
	t.Setenv("FEED_DAYS_CUTOFF", "7")
	t.Setenv("FEED_TRENDING_STRATEGY", "ranked")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("RATES_URL", "https://rates.example.com/usd")
	t.Setenv("RATES_TTL", "90s")
	t.Setenv("RATES_FALLBACK", "41.5")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "abc123", cfg.ProjectID)
	require.Equal(t, "staging", cfg.Dataset)
	require.False(t, cfg.UseCDN)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 6, cfg.DefaultLimit)
	require.Equal(t, 24, cfg.MaxLimit)
	require.Equal(t, 7, cfg.DaysCutoff)
	require.Equal(t, config.TrendingRanked, cfg.TrendingStrategy)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "broker-a:29092", cfg.KafkaBrokers[0])
	require.Equal(t, 90*time.Second, cfg.RatesTTL)
	require.Equal(t, 41.5, cfg.RatesFallback)
}

func TestLoadAPIRejectsMissingStore(t *testing.T) {
	t.Setenv("CMS_PROJECT_ID", "")
	t.Setenv("CMS_BASE_URL", "")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadAPIRankedRequiresRedis(t *testing.T) {
	t.Setenv("CMS_PROJECT_ID", "abc123")
	t.Setenv("FEED_TRENDING_STRATEGY", "ranked")
	t.Setenv("REDIS_ADDR", "")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("KAFKA_VIEWS_TOPIC", "views_custom")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "views_custom", cfg.ViewsTopic)
	require.Equal(t, "custom-group", cfg.ConsumerGroup)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
}

func TestLoadWorkerRequiresRedis(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("REDIS_ADDR", "")

	_, err := config.LoadWorker()
	require.Error(t, err)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RETENTION_INTERVAL", "12h")
	t.Setenv("RETENTION_KEEP_TOP", "100")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)
	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, int64(100), cfg.KeepTop)
}
