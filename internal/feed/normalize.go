package feed

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/techpolitics/newsfeed/internal/models"
)

// maxExcerptWords caps card excerpts for display.
const maxExcerptWords = 40

// Item is a display-ready article: the source item plus derived fields.
// The source item's identity is never mutated.
type Item struct {
	models.ContentItem
	DisplayDate time.Time `json:"displayDate"`
	TimeLabel   string    `json:"timeLabel"`
	HasImage    bool      `json:"hasImage"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// ResolveDisplayDate returns the item's effective timestamp: publishedAt
// when the author set one, else the store-assigned creation time. When
// neither is usable it fails closed to now; the false return flags that as
// a data-quality defect so callers can log it.
func ResolveDisplayDate(item models.ContentItem, now time.Time) (time.Time, bool) {
	if item.PublishedAt != nil && !item.PublishedAt.IsZero() {
		return *item.PublishedAt, true
	}
	if !item.CreatedAt.IsZero() {
		return item.CreatedAt, true
	}
	return now, false
}

// RelativeTime renders a bucketed human label for ts relative to now.
// Beyond dayCutoff days it falls back to a short calendar date, with the
// year added for items from a prior year. Pure: now is always explicit.
func RelativeTime(ts, now time.Time, dayCutoff int) string {
	if dayCutoff <= 0 {
		dayCutoff = 30
	}
	if ts.IsZero() {
		return "just now"
	}

	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		// Covers future timestamps too; never a negative label.
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}

	days := int(d.Hours() / 24)
	if days < dayCutoff {
		return fmt.Sprintf("%dd ago", days)
	}
	if ts.Year() == now.Year() {
		return ts.Format("Jan 2")
	}
	return ts.Format("Jan 2, 2006")
}

// HasMedia reports whether the item carries a structurally valid primary
// image reference.
func HasMedia(item models.ContentItem) bool {
	return item.Image.Valid()
}

// Normalize derives display fields for every item and stably re-sorts the
// list by effective date, newest first. The store already orders results;
// the client-side pass keeps the invariant even for stores that cannot
// express the two-field fallback sort natively.
func Normalize(items []models.ContentItem, now time.Time, dayCutoff int, log *slog.Logger) []Item {
	out := make([]Item, 0, len(items))
	for _, src := range items {
		ts, ok := ResolveDisplayDate(src, now)
		if !ok && log != nil {
			log.Warn("item has no usable date", slog.String("slug", src.Slug))
		}
		src.Excerpt = Excerpt(src.Excerpt, maxExcerptWords)
		out = append(out, Item{
			ContentItem: src,
			DisplayDate: ts,
			TimeLabel:   RelativeTime(ts, now, dayCutoff),
			HasImage:    HasMedia(src),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayDate.After(out[j].DisplayDate)
	})
	return out
}
