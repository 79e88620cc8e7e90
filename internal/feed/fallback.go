package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/techpolitics/newsfeed/internal/models"
)

const fallbackExcerpt = "We could not reach the newsroom. Fresh stories are on the way."

var fallbackStories = []struct {
	title string
	slug  string
}{
	{"Breaking tech news", "breaking-tech-news"},
	{"Latest technology updates", "latest-technology-updates"},
	{"AI governance in focus", "ai-governance-in-focus"},
	{"Tech regulation tracker", "tech-regulation-tracker"},
	{"Digital privacy briefing", "digital-privacy-briefing"},
}

// FallbackItems is the static stand-in feed served when the content store
// is unreachable. Items are stamped with now so their labels read as fresh.
func FallbackItems(now time.Time) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(fallbackStories))
	for _, story := range fallbackStories {
		items = append(items, models.ContentItem{
			ID:        uuid.NewString(),
			Title:     story.title,
			Slug:      story.slug,
			Excerpt:   fallbackExcerpt,
			CreatedAt: now,
		})
	}
	return items
}

// placeholderHero is rendered when a page has no hero at all, so the page
// shows a generic block instead of a broken link. The ID is fixed: composing
// the same (possibly empty) item list twice must produce identical output.
func placeholderHero(now time.Time) Item {
	return Item{
		ContentItem: models.ContentItem{
			ID:        "placeholder-hero",
			Title:     "No posts found",
			CreatedAt: now,
		},
		DisplayDate: now,
		TimeLabel:   "just now",
		Placeholder: true,
	}
}
