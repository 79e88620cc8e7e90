package cms_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/techpolitics/newsfeed/internal/cms"
)

func TestImageURL(t *testing.T) {
	b := cms.NewImageURLBuilder("cxbzjc9x", "production")

	url, err := b.URL("image-deadbeef-800x600-jpg", 400, 300)
	require.NoError(t, err)
	require.Equal(t,
		"https://cdn.sanity.io/images/cxbzjc9x/production/deadbeef-800x600.jpg?w=400&h=300&fit=crop&auto=format",
		url)
}

func TestImageURLWithoutDimensions(t *testing.T) {
	b := cms.NewImageURLBuilder("cxbzjc9x", "production")

	url, err := b.URL("image-deadbeef-800x600-webp", 0, 0)
	require.NoError(t, err)
	require.Equal(t,
		"https://cdn.sanity.io/images/cxbzjc9x/production/deadbeef-800x600.webp",
		url)
}

func TestImageURLRejectsMalformedRefs(t *testing.T) {
	b := cms.NewImageURLBuilder("cxbzjc9x", "production")

	for _, ref := range []string{"", "file-abc-800x600-jpg", "image-abc-jpg", "image---"} {
		_, err := b.URL(ref, 400, 300)
		require.Error(t, err, "ref %q", ref)
	}
}
