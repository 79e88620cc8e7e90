package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Service fetches one exchange rate for the site chrome and caches it for a
// staleness window. Decorative only: refresh failures silently fall back to
// the last known value, or to the configured default before any fetch has
// succeeded.
type Service struct {
	httpClient *http.Client
	url        string
	ttl        time.Duration
	fallback   float64
	log        *slog.Logger

	mu        sync.Mutex
	value     float64
	fetchedAt time.Time
	known     bool
}

// New builds the rate service. An empty url disables fetching entirely; the
// default value is then always served.
func New(url string, ttl time.Duration, fallback float64, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		url:        url,
		ttl:        ttl,
		fallback:   fallback,
		log:        logger,
	}
}

// Rate returns the cached value, refreshing it when the staleness window
// has elapsed. now is explicit to keep the window testable. Never fails.
func (s *Service) Rate(ctx context.Context, now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.url == "" {
		return s.fallback
	}
	if s.known && now.Sub(s.fetchedAt) < s.ttl {
		return s.value
	}

	value, err := s.refresh(ctx)
	if err != nil {
		s.log.Warn("rate refresh failed", slog.Any("err", err))
		if s.known {
			return s.value
		}
		return s.fallback
	}

	s.value = value
	s.fetchedAt = now
	s.known = true
	return value
}

func (s *Service) refresh(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var payload struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode rate: %w", err)
	}
	return payload.Rate, nil
}
