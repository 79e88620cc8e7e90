package cms

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/techpolitics/newsfeed/internal/models"
)

// rawPost is the wire shape of a post before validation. The store is
// duck-typed; nothing here is trusted until decodePost has checked it.
type rawPost struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Excerpt     string           `json:"excerpt"`
	ImageRef    string           `json:"imageRef"`
	PublishedAt string           `json:"publishedAt"`
	CreatedAt   string           `json:"createdAt"`
	Category    *models.Category `json:"category"`
	Body        json.RawMessage  `json:"body"`
}

func (c *Client) decodePosts(raws []rawPost) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(raws))
	for _, raw := range raws {
		if item, ok := c.decodePost(raw); ok {
			items = append(items, item)
		}
	}
	return items
}

// decodePost validates one wire payload into a ContentItem. Items missing
// an identity field are dropped; malformed dates are tolerated and logged
// as a data-quality signal, the normalizer picks a safe default later.
func (c *Client) decodePost(raw rawPost) (models.ContentItem, bool) {
	if raw.ID == "" || raw.Title == "" || raw.Slug == "" {
		c.log.Warn("dropping post with missing required field",
			slog.String("id", raw.ID),
			slog.String("slug", raw.Slug),
		)
		return models.ContentItem{}, false
	}

	item := models.ContentItem{
		ID:       raw.ID,
		Title:    raw.Title,
		Slug:     raw.Slug,
		Excerpt:  raw.Excerpt,
		Category: raw.Category,
		Body:     raw.Body,
	}

	if raw.ImageRef != "" {
		item.Image = &models.ImageRef{AssetRef: raw.ImageRef}
	}

	if raw.PublishedAt != "" {
		if ts, err := parseTimestamp(raw.PublishedAt); err == nil {
			item.PublishedAt = &ts
		} else {
			c.log.Warn("malformed publishedAt",
				slog.String("slug", raw.Slug),
				slog.String("value", raw.PublishedAt),
			)
		}
	}

	if raw.CreatedAt != "" {
		if ts, err := parseTimestamp(raw.CreatedAt); err == nil {
			item.CreatedAt = ts
		} else {
			c.log.Warn("malformed createdAt",
				slog.String("slug", raw.Slug),
				slog.String("value", raw.CreatedAt),
			)
		}
	}

	return item, true
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
