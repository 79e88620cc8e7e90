package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/techpolitics/newsfeed/internal/cms"
	"github.com/techpolitics/newsfeed/internal/feed"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

var staticSitemapEntries = []struct {
	path       string
	changeFreq string
	priority   string
}{
	{"", "daily", "1.0"},
	{"/blog", "daily", "0.9"},
	{"/about", "monthly", "0.8"},
	{"/contact", "monthly", "0.7"},
	{"/privacy-policy", "yearly", "0.5"},
}

func (s *server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	now := s.now().UTC()
	base := s.cfg.SiteBaseURL

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, entry := range staticSitemapEntries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + entry.path,
			LastMod:    now.Format("2006-01-02"),
			ChangeFreq: entry.changeFreq,
			Priority:   entry.priority,
		})
	}

	// A degraded sitemap with only the static routes beats a 500.
	posts, err := s.store.Posts(ctx, cms.PostsQuery{})
	if err != nil {
		s.log.Warn("sitemap post fetch failed", slog.Any("err", err))
	}
	for _, post := range posts {
		ts, _ := feed.ResolveDisplayDate(post, now)
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/post/%s", base, post.Slug),
			LastMod:    ts.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		s.log.Warn("sitemap category fetch failed", slog.Any("err", err))
	}
	for _, category := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/category/%s", base, category.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, xml.Header)
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		s.log.Warn("encode sitemap", slog.Any("err", err))
	}
}
