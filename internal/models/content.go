package models

import (
	"encoding/json"
	"time"
)

// ImageRef points at an image asset inside the content store. The reference
// is opaque; expanding it to a URL is the image builder's job.
type ImageRef struct {
	AssetRef string `json:"assetRef"`
}

// Valid reports whether the reference can be resolved to an asset at all.
func (r *ImageRef) Valid() bool {
	return r != nil && r.AssetRef != ""
}

// Category groups posts. Categories are created and edited in the content
// store; this service only reads them.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ContentItem is one publishable article as returned by the content store.
// PublishedAt is author-set and may be absent; CreatedAt is assigned by the
// store and is always present for well-formed items.
type ContentItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Image       *ImageRef       `json:"image,omitempty"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Category    *Category       `json:"category,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}
