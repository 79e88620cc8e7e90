package feed_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/techpolitics/newsfeed/internal/feed"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWords int
		want     string
	}{
		{name: "empty", input: "", maxWords: 5, want: ""},
		{name: "whitespace only", input: "  \n\t ", maxWords: 5, want: ""},
		{name: "squeezes whitespace", input: "one\n\ntwo\t three", maxWords: 5, want: "one two three"},
		{name: "under limit", input: "short text", maxWords: 5, want: "short text"},
		{name: "truncates", input: "a b c d e f", maxWords: 3, want: "a b c..."},
		{name: "no limit", input: "a b c d e f", maxWords: 0, want: "a b c d e f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, feed.Excerpt(tt.input, tt.maxWords))
		})
	}
}
