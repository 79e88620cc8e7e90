package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"

	"github.com/techpolitics/newsfeed/internal/cms"
	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/feed"
	"github.com/techpolitics/newsfeed/internal/models"
	"github.com/techpolitics/newsfeed/internal/rates"
	"github.com/techpolitics/newsfeed/internal/views"
)

// fallbackHeadlines keeps the ticker populated when the store is down.
var fallbackHeadlines = []string{"Breaking tech news", "Latest technology updates"}

type server struct {
	log         *slog.Logger
	cfg         *config.API
	store       *cms.Client
	images      *cms.ImageURLBuilder
	composer    *feed.Composer
	viewStore   *views.Store  // nil without Redis
	rates       *rates.Service
	viewsWriter *kafka.Writer // nil without Kafka
	now         func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleHome)
	r.Get("/blog", s.handleBlog)
	r.Get("/category/{slug}", s.handleCategory)
	r.Get("/post/{slug}", s.handlePost)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/about", s.staticPage(aboutPage))
	r.Get("/contact", s.staticPage(contactPage))
	r.Get("/privacy-policy", s.staticPage(privacyPage))
	return r
}

type homeResponse struct {
	Sections   []feed.Section    `json:"sections"`
	Fallback   bool              `json:"fallback,omitempty"`
	Categories []models.Category `json:"categories"`
	Headlines  []string          `json:"headlines"`
	Rate       float64           `json:"rate"`
}

type listingResponse struct {
	Sections []feed.Section `json:"sections"`
	Fallback bool           `json:"fallback,omitempty"`
}

type categoryResponse struct {
	Category models.Category `json:"category"`
	Sections []feed.Section  `json:"sections"`
	Fallback bool            `json:"fallback,omitempty"`
	Message  string          `json:"message,omitempty"`
}

type postResponse struct {
	feed.Item
	ImageURL string `json:"imageUrl,omitempty"`
	Views    int64  `json:"views,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// homeSpecs cuts the master list into the homepage regions: one hero, three
// secondary headlines, trending beside them, everything else under latest.
func homeSpecs(latest int) []feed.SectionSpec {
	return []feed.SectionSpec{
		{Name: feed.SectionHero, Start: 0, Count: 1},
		{Name: feed.SectionSecondary, Start: 1, Count: 3},
		{Name: feed.SectionTrending, Start: 1, Count: 3},
		{Name: feed.SectionLatest, Start: 4, Count: latest},
	}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	now := s.now().UTC()

	// The page's independent needs fan out together; composition waits for
	// all of them to settle. Each degrades on its own, none fails the page.
	var (
		wg         sync.WaitGroup
		composed   feed.Feed
		categories []models.Category
		headlines  []string
		rate       float64
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		composed = s.composer.Compose(ctx, feed.Request{
			Query: cms.PostsQuery{Limit: s.cfg.MaxLimit},
			Specs: homeSpecs(s.cfg.DefaultLimit),
			Now:   now,
		})
	}()
	go func() {
		defer wg.Done()
		categories = s.fetchCategories(ctx)
	}()
	go func() {
		defer wg.Done()
		headlines = s.fetchHeadlines(ctx)
	}()
	go func() {
		defer wg.Done()
		rate = s.rates.Rate(ctx, now)
	}()
	wg.Wait()

	writeJSON(w, http.StatusOK, homeResponse{
		Sections:   composed.Sections,
		Fallback:   composed.Fallback,
		Categories: categories,
		Headlines:  headlines,
		Rate:       rate,
	})
}

func (s *server) handleBlog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := clampInt(r.URL.Query().Get("limit"), s.cfg.DefaultLimit, s.cfg.MaxLimit)

	composed := s.composer.Compose(ctx, feed.Request{
		Query: cms.PostsQuery{Limit: limit},
		Specs: []feed.SectionSpec{{Name: feed.SectionPosts, Start: 0, Count: limit}},
		Now:   s.now().UTC(),
	})

	writeJSON(w, http.StatusOK, listingResponse{
		Sections: composed.Sections,
		Fallback: composed.Fallback,
	})
}

func (s *server) handleCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	slug := chi.URLParam(r, "slug")

	category, err := s.store.Category(ctx, slug)
	if errors.Is(err, cms.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "category not found"})
		return
	}
	if err != nil {
		// Lookup failed, not "missing": render the page anyway with what we
		// know and let the feed degrade on its own.
		s.log.Warn("category lookup failed", slog.String("slug", slug), slog.Any("err", err))
		category = models.Category{Title: slug, Slug: slug}
	}

	limit := clampInt(r.URL.Query().Get("limit"), 20, s.cfg.MaxLimit)
	composed := s.composer.Compose(ctx, feed.Request{
		Query: cms.PostsQuery{CategorySlug: slug, Limit: limit},
		Specs: []feed.SectionSpec{{Name: feed.SectionPosts, Start: 0, Count: limit}},
		Now:   s.now().UTC(),
	})

	resp := categoryResponse{
		Category: category,
		Sections: composed.Sections,
		Fallback: composed.Fallback,
	}
	if section := composed.Section(feed.SectionPosts); section != nil && section.Empty {
		resp.Message = "No posts found in this category."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	slug := chi.URLParam(r, "slug")
	now := s.now().UTC()

	item, err := s.store.Post(ctx, slug)
	if errors.Is(err, cms.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "post not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "content store unavailable"})
		return
	}

	normalized := feed.Normalize([]models.ContentItem{item}, now, s.cfg.DaysCutoff, s.log)

	resp := postResponse{Item: normalized[0]}
	if item.Image.Valid() {
		if url, err := s.images.URL(item.Image.AssetRef, 1200, 630); err == nil {
			resp.ImageURL = url
		} else {
			s.log.Warn("unresolvable image reference",
				slog.String("slug", slug), slog.Any("err", err))
		}
	}
	if s.viewStore != nil {
		if count, err := s.viewStore.Count(ctx, slug); err == nil {
			resp.Views = count
		}
	}

	s.publishView(slug, now)
	writeJSON(w, http.StatusOK, resp)
}

// publishView emits a page-view event for the worker to count. Best effort:
// the response never waits on Kafka and never fails because of it.
func (s *server) publishView(slug string, now time.Time) {
	if s.viewsWriter == nil {
		return
	}

	payload, err := json.Marshal(views.NewEvent(slug, now))
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.viewsWriter.WriteMessages(ctx, kafka.Message{
			Key:   []byte(slug),
			Value: payload,
		}); err != nil {
			s.log.Warn("publish view event", slog.String("slug", slug), slog.Any("err", err))
		}
	}()
}

func (s *server) fetchCategories(ctx context.Context) []models.Category {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		s.log.Warn("fetch categories", slog.Any("err", err))
		return []models.Category{}
	}
	return categories
}

func (s *server) fetchHeadlines(ctx context.Context) []string {
	headlines, err := s.store.Headlines(ctx, 5)
	if err != nil || len(headlines) == 0 {
		if err != nil {
			s.log.Warn("fetch headlines", slog.Any("err", err))
		}
		return fallbackHeadlines
	}
	return headlines
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
