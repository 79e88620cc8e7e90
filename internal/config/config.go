package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Trending strategies understood by the feed composer.
const (
	TrendingRecent = "recent"
	TrendingRanked = "ranked"
)

// Store holds the coordinates of the external content store.
type Store struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	BaseURL    string // overrides the derived URL; used by tests and proxies
	UseCDN     bool
}

// Redis describes the view-counter store shared by the api, worker and
// retention services.
type Redis struct {
	Addr     string
	Password string
}

// API describes HTTP-layer configuration.
type API struct {
	Store
	Redis
	BindAddr         string
	SiteBaseURL      string
	DefaultLimit     int
	MaxLimit         int
	DaysCutoff       int
	TrendingStrategy string
	KafkaBrokers     []string
	ViewsTopic       string
	RatesURL         string
	RatesTTL         time.Duration
	RatesFallback    float64
}

// Worker holds configuration for the Kafka -> Redis view-counter worker.
type Worker struct {
	Redis
	KafkaBrokers   []string
	ViewsTopic     string
	ConsumerGroup  string
	DedupeCapacity int
	DedupeTTL      time.Duration
}

// Retention configures the view-counter pruning loop.
type Retention struct {
	Redis
	Interval time.Duration
	KeepTop  int64
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Store:            loadStore(),
		Redis:            loadRedis(),
		BindAddr:         getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		SiteBaseURL:      strings.TrimRight(getEnv("SITE_BASE_URL", "https://thetechpolitics.com"), "/"),
		DefaultLimit:     getInt("FEED_DEFAULT_LIMIT", 12),
		MaxLimit:         getInt("FEED_MAX_LIMIT", 50),
		DaysCutoff:       getInt("FEED_DAYS_CUTOFF", 30),
		TrendingStrategy: getEnv("FEED_TRENDING_STRATEGY", TrendingRecent),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		ViewsTopic:       getEnv("KAFKA_VIEWS_TOPIC", "page_views"),
		RatesURL:         getEnv("RATES_URL", ""),
		RatesTTL:         getDuration("RATES_TTL", "5m"),
		RatesFallback:    getFloat("RATES_FALLBACK", 1.0),
	}

	if c.ProjectID == "" && c.BaseURL == "" {
		return nil, fmt.Errorf("CMS_PROJECT_ID or CMS_BASE_URL must be set")
	}
	if c.DefaultLimit <= 0 {
		return nil, fmt.Errorf("FEED_DEFAULT_LIMIT must be positive")
	}
	if c.MaxLimit <= 0 {
		return nil, fmt.Errorf("FEED_MAX_LIMIT must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return nil, fmt.Errorf("FEED_DEFAULT_LIMIT cannot exceed FEED_MAX_LIMIT")
	}
	if c.DaysCutoff <= 0 {
		return nil, fmt.Errorf("FEED_DAYS_CUTOFF must be positive")
	}
	switch c.TrendingStrategy {
	case TrendingRecent:
	case TrendingRanked:
		if c.Redis.Addr == "" {
			return nil, fmt.Errorf("FEED_TRENDING_STRATEGY=ranked requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("FEED_TRENDING_STRATEGY must be %q or %q", TrendingRecent, TrendingRanked)
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Redis:          loadRedis(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		ViewsTopic:     getEnv("KAFKA_VIEWS_TOPIC", "page_views"),
		ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "views-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Redis.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR must be set")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Redis:    loadRedis(),
		Interval: getDuration("RETENTION_INTERVAL", "24h"),
		KeepTop:  int64(getInt("RETENTION_KEEP_TOP", 500)),
	}

	if c.Redis.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR must be set")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.KeepTop <= 0 {
		return nil, fmt.Errorf("RETENTION_KEEP_TOP must be positive")
	}

	return c, nil
}

func loadStore() Store {
	return Store{
		ProjectID:  getEnv("CMS_PROJECT_ID", ""),
		Dataset:    getEnv("CMS_DATASET", "production"),
		APIVersion: getEnv("CMS_API_VERSION", "2023-07-01"),
		BaseURL:    getEnv("CMS_BASE_URL", ""),
		UseCDN:     getBool("CMS_USE_CDN", true),
	}
}

func loadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
