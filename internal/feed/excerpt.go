package feed

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Excerpt squeezes whitespace and caps the text at maxWords words,
// appending an ellipsis when truncated. Cards line-clamp anyway; capping
// here keeps payloads small.
func Excerpt(text string, maxWords int) string {
	clean := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if clean == "" {
		return ""
	}

	words := strings.Fields(clean)
	if maxWords <= 0 || len(words) <= maxWords {
		return clean
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
