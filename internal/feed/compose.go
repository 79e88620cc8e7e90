package feed

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/techpolitics/newsfeed/internal/cms"
	"github.com/techpolitics/newsfeed/internal/config"
	"github.com/techpolitics/newsfeed/internal/models"
)

// Fetcher retrieves ordered posts from the content store.
type Fetcher interface {
	Posts(ctx context.Context, q cms.PostsQuery) ([]models.ContentItem, error)
}

// Ranker supplies a view-count ordering for the ranked trending strategy.
type Ranker interface {
	TopSlugs(ctx context.Context, n int) ([]string, error)
}

// Options tune the composer. Zero values fall back to sensible defaults.
type Options struct {
	DaysCutoff       int
	TrendingStrategy string
}

// Section is one named UI region of a composed feed.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
	Empty bool   `json:"empty,omitempty"`
}

// Feed is the composed, ordered set of sections for one page render.
// Sections keep the order of the requested specs, so identical input always
// serializes identically.
type Feed struct {
	Sections []Section `json:"sections"`
	Fallback bool      `json:"fallback,omitempty"`
}

// Section returns the named section, or nil when the page did not request it.
func (f *Feed) Section(name string) *Section {
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i]
		}
	}
	return nil
}

// Request describes one page's feed: the store query to issue and the
// sections to cut from the result.
type Request struct {
	Query cms.PostsQuery
	Specs []SectionSpec
	Now   time.Time
}

// Composer runs the fetch -> normalize -> section pipeline once per page
// render. It holds no per-render state; every invocation is independent.
type Composer struct {
	fetcher Fetcher
	ranker  Ranker
	opts    Options
	log     *slog.Logger
}

// NewComposer builds a composer. ranker may be nil; the ranked trending
// strategy then degrades to the positional one.
func NewComposer(fetcher Fetcher, ranker Ranker, opts Options, log *slog.Logger) *Composer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Composer{fetcher: fetcher, ranker: ranker, opts: opts, log: log}
}

// Compose produces the page's sections. Fetch failures never escape: the
// static fallback feed is substituted so the page is never blank, and the
// returned feed is marked Fallback for the UI to label accordingly.
func (c *Composer) Compose(ctx context.Context, req Request) Feed {
	items, err := c.fetcher.Posts(ctx, req.Query)
	fallback := false
	if err != nil {
		c.log.Error("content fetch failed, serving fallback feed", slog.Any("err", err))
		items = FallbackItems(req.Now)
		fallback = true
	}

	normalized := Normalize(items, req.Now, c.opts.DaysCutoff, c.log)
	cut := Sections(normalized, req.Specs)

	out := Feed{Fallback: fallback, Sections: make([]Section, 0, len(req.Specs))}
	for _, spec := range req.Specs {
		section := Section{Name: spec.Name, Items: cut[spec.Name]}

		if spec.Name == SectionTrending && !fallback {
			section.Items = c.trendingItems(ctx, normalized, spec, section.Items)
		}

		if len(section.Items) == 0 {
			// Explicit empty state; sections are never silently omitted.
			section.Empty = true
			if spec.Name == SectionHero {
				section.Items = []Item{placeholderHero(req.Now)}
			}
		}
		out.Sections = append(out.Sections, section)
	}
	return out
}

// trendingItems applies the configured trending strategy. The positional
// slice is the default; the ranked strategy reorders the fetched items by
// view count and degrades back to positional when the ranker is missing or
// failing.
func (c *Composer) trendingItems(ctx context.Context, all []Item, spec SectionSpec, positional []Item) []Item {
	if c.opts.TrendingStrategy != config.TrendingRanked || c.ranker == nil {
		return positional
	}

	n := spec.Count
	if n <= 0 {
		n = len(all)
	}
	slugs, err := c.ranker.TopSlugs(ctx, n)
	if err != nil {
		c.log.Warn("view ranking unavailable, using recency", slog.Any("err", err))
		return positional
	}

	bySlug := make(map[string]Item, len(all))
	for _, item := range all {
		bySlug[item.Slug] = item
	}

	ranked := make([]Item, 0, n)
	for _, slug := range slugs {
		if item, ok := bySlug[slug]; ok {
			ranked = append(ranked, item)
		}
	}
	if len(ranked) == 0 {
		return positional
	}
	return ranked
}
