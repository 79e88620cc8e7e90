package cms_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/techpolitics/newsfeed/internal/cms"
	"github.com/techpolitics/newsfeed/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *cms.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := cms.New(config.Store{BaseURL: srv.URL}, log)
	require.NoError(t, err)
	return client
}

func resultResponse(t *testing.T, result any) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"result": result})
	require.NoError(t, err)
	return payload
}

func TestPostsDropsItemsWithoutSlug(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("query"), `defined(slug.current)`)
		w.Write(resultResponse(t, []map[string]any{
			{"id": "p1", "title": "First", "slug": "a", "createdAt": "2024-01-03T00:00:00Z"},
			{"id": "p2", "title": "No slug", "slug": "", "createdAt": "2024-01-02T00:00:00Z"},
			{"id": "p3", "title": "Third", "slug": "c", "createdAt": "2024-01-01T00:00:00Z"},
		}))
	})

	items, err := client.Posts(context.Background(), cms.PostsQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].Slug)
	require.Equal(t, "c", items[1].Slug)
}

func TestPostsOrdersByEffectiveSortDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("query"),
			`order(coalesce(publishedAt, _createdAt) desc)`)
		w.Write(resultResponse(t, []map[string]any{}))
	})

	_, err := client.Posts(context.Background(), cms.PostsQuery{Limit: 10})
	require.NoError(t, err)
}

func TestPostsCategoryFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("query"), `$category in categories[]->slug.current`)
		require.Equal(t, `"politics"`, r.URL.Query().Get("$category"))
		w.Write(resultResponse(t, []map[string]any{}))
	})

	_, err := client.Posts(context.Background(), cms.PostsQuery{CategorySlug: "politics"})
	require.NoError(t, err)
}

func TestPostsToleratesMalformedDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultResponse(t, []map[string]any{
			{"id": "p1", "title": "Bad dates", "slug": "bad",
				"publishedAt": "not-a-date", "createdAt": "also-not-a-date"},
		}))
	})

	items, err := client.Posts(context.Background(), cms.PostsQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Nil(t, items[0].PublishedAt)
	require.True(t, items[0].CreatedAt.IsZero())
}

func TestPostsFetchFailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Posts(context.Background(), cms.PostsQuery{})
	require.ErrorIs(t, err, cms.ErrFetchFailed)
}

func TestPostsUnparseableResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.Posts(context.Background(), cms.PostsQuery{})
	require.ErrorIs(t, err, cms.ErrFetchFailed)
}

func TestPostNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultResponse(t, nil))
	})

	_, err := client.Post(context.Background(), "missing")
	require.ErrorIs(t, err, cms.ErrNotFound)
}

func TestPostDecodesImageAndCategory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, `"ai-rules"`, r.URL.Query().Get("$slug"))
		w.Write(resultResponse(t, map[string]any{
			"id":          "p9",
			"title":       "AI rules land",
			"slug":        "ai-rules",
			"imageRef":    "image-deadbeef-800x600-jpg",
			"publishedAt": "2024-05-01T10:00:00Z",
			"createdAt":   "2024-04-30T09:00:00Z",
			"category":    map[string]any{"id": "c1", "title": "Politics", "slug": "politics"},
		}))
	})

	item, err := client.Post(context.Background(), "ai-rules")
	require.NoError(t, err)
	require.True(t, item.Image.Valid())
	require.NotNil(t, item.PublishedAt)
	require.Equal(t, "politics", item.Category.Slug)
}

func TestCategoryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultResponse(t, nil))
	})

	_, err := client.Category(context.Background(), "ghost")
	require.ErrorIs(t, err, cms.ErrNotFound)
}

func TestHeadlines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(resultResponse(t, []string{"One", "Two"}))
	})

	titles, err := client.Headlines(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, []string{"One", "Two"}, titles)
}

func TestFetchFailedOnUnreachableStore(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := cms.New(config.Store{BaseURL: "http://127.0.0.1:1"}, log)
	require.NoError(t, err)

	_, err = client.Posts(context.Background(), cms.PostsQuery{})
	require.ErrorIs(t, err, cms.ErrFetchFailed)
	require.False(t, errors.Is(err, cms.ErrNotFound))
}

func TestNewRequiresProjectOrBaseURL(t *testing.T) {
	_, err := cms.New(config.Store{}, nil)
	require.Error(t, err)
}
