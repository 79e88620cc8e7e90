package main

import "net/http"

// pageContent is the payload for the fixed editorial pages. The copy lives
// here because the content store only manages posts and categories.
type pageContent struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

var aboutPage = pageContent{
	Slug:  "about",
	Title: "About Us",
	Paragraphs: []string{
		"TechPolitics covers the collision of technology and public policy: AI governance, tech regulation, digital privacy, and global innovation trends.",
		"We publish reported stories and analysis for readers who want to understand how technology decisions are made and who makes them.",
	},
}

var contactPage = pageContent{
	Slug:  "contact",
	Title: "Contact",
	Paragraphs: []string{
		"Questions, tips, or corrections? Reach the newsroom at contact@thetechpolitics.com.",
		"For partnership and advertising inquiries, mention your organization in the subject line.",
	},
}

var privacyPage = pageContent{
	Slug:  "privacy-policy",
	Title: "Privacy Policy",
	Paragraphs: []string{
		"We collect only the data needed to serve and improve the site: aggregate page-view counts and standard server logs.",
		"We do not sell personal information. Third-party embeds are governed by their own policies.",
	},
}

func (s *server) staticPage(page pageContent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, page)
	}
}
