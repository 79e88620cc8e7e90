package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/models"
)

// Errors surfaced to callers. ErrFetchFailed covers every transport and
// decode failure; callers substitute fallback content instead of failing
// the render.
var (
	ErrFetchFailed = errors.New("content store fetch failed")
	ErrNotFound    = errors.New("not found")
)

// orderClause ranks by the effective sort date: publishedAt when the author
// set one, else the store-assigned creation time. Keeps never-published
// items interleaved by age instead of collapsing to one end of the list.
const orderClause = `order(coalesce(publishedAt, _createdAt) desc)`

const postProjection = `{
  "id": _id,
  title,
  "slug": slug.current,
  excerpt,
  "imageRef": mainImage.asset._ref,
  publishedAt,
  "createdAt": _createdAt,
  "category": categories[0]->{"id": _id, title, "slug": slug.current},
  body
}`

const categoryProjection = `{"id": _id, title, "slug": slug.current}`

// Client queries the headless content store over its HTTP query API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *slog.Logger
}

// PostsQuery narrows a post listing request.
type PostsQuery struct {
	CategorySlug string
	Limit        int
}

// New instantiates the content store client.
func New(cfg config.Store, logger *slog.Logger) (*Client, error) {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("content store project ID is required")
		}
		host := "api.sanity.io"
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		endpoint = fmt.Sprintf("https://%s.%s/v%s/data/query/%s",
			cfg.ProjectID, host, cfg.APIVersion, url.PathEscape(cfg.Dataset))
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		log:        logger,
	}, nil
}

// Posts returns listed posts ordered newest-first. Items without a slug are
// excluded at query time; they cannot be linked to.
func (c *Client) Posts(ctx context.Context, q PostsQuery) ([]models.ContentItem, error) {
	filter := `_type == "post" && defined(slug.current)`
	params := map[string]any{}
	if q.CategorySlug != "" {
		filter += ` && $category in categories[]->slug.current`
		params["category"] = q.CategorySlug
	}

	query := fmt.Sprintf(`*[%s] | %s`, filter, orderClause)
	if q.Limit > 0 {
		query += fmt.Sprintf(` [0...%d]`, q.Limit)
	}
	query += " " + postProjection

	var raws []rawPost
	if err := c.fetch(ctx, query, params, &raws); err != nil {
		return nil, err
	}
	return c.decodePosts(raws), nil
}

// Post returns a single post by slug.
func (c *Client) Post(ctx context.Context, slug string) (models.ContentItem, error) {
	query := `*[_type == "post" && slug.current == $slug][0] ` + postProjection

	var raw *rawPost
	if err := c.fetch(ctx, query, map[string]any{"slug": slug}, &raw); err != nil {
		return models.ContentItem{}, err
	}
	if raw == nil {
		return models.ContentItem{}, ErrNotFound
	}

	item, ok := c.decodePost(*raw)
	if !ok {
		return models.ContentItem{}, ErrNotFound
	}
	return item, nil
}

// Categories returns every category that has a slug.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	query := `*[_type == "category" && defined(slug.current)] ` + categoryProjection

	var cats []models.Category
	if err := c.fetch(ctx, query, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Category returns one category by slug.
func (c *Client) Category(ctx context.Context, slug string) (models.Category, error) {
	query := `*[_type == "category" && slug.current == $slug][0] ` + categoryProjection

	var cat *models.Category
	if err := c.fetch(ctx, query, map[string]any{"slug": slug}, &cat); err != nil {
		return models.Category{}, err
	}
	if cat == nil || cat.Slug == "" {
		return models.Category{}, ErrNotFound
	}
	return *cat, nil
}

// Headlines returns the titles of the most recent posts, for the ticker.
func (c *Client) Headlines(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(
		`*[_type == "post" && defined(slug.current)] | %s [0...%d] .title`,
		orderClause, limit)

	var titles []string
	if err := c.fetch(ctx, query, nil, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// Ping verifies the store answers queries at all.
func (c *Client) Ping(ctx context.Context) error {
	var count int
	return c.fetch(ctx, `count(*[_type == "post"])`, nil, &count)
}

// fetch runs one query against the store and decodes the result envelope.
func (c *Client) fetch(ctx context.Context, query string, params map[string]any, out any) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: parse endpoint: %v", ErrFetchFailed, err)
	}

	values := u.Query()
	values.Set("query", query)
	for name, val := range params {
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("%w: encode param %s: %v", ErrFetchFailed, name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, body)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", ErrFetchFailed, err)
	}
	if envelope.Result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("%w: decode result: %v", ErrFetchFailed, err)
	}
	return nil
}
