package cms

import (
	"fmt"
	"strings"
)

// ImageURLBuilder expands opaque asset references into CDN URLs. The feed
// core never builds URLs itself, it only checks that a reference exists.
type ImageURLBuilder struct {
	projectID string
	dataset   string
}

// NewImageURLBuilder returns a builder bound to one project and dataset.
func NewImageURLBuilder(projectID, dataset string) *ImageURLBuilder {
	return &ImageURLBuilder{projectID: projectID, dataset: dataset}
}

// URL resolves a reference like "image-abc123-800x600-jpg" to a concrete
// image URL cropped to the requested dimensions.
func (b *ImageURLBuilder) URL(ref string, width, height int) (string, error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" {
		return "", fmt.Errorf("unrecognized asset reference %q", ref)
	}

	id, dims, format := parts[1], parts[2], parts[3]
	if id == "" || dims == "" || format == "" {
		return "", fmt.Errorf("unrecognized asset reference %q", ref)
	}

	base := fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/%s-%s.%s",
		b.projectID, b.dataset, id, dims, format)
	if width <= 0 || height <= 0 {
		return base, nil
	}
	return fmt.Sprintf("%s?w=%d&h=%d&fit=crop&auto=format", base, width, height), nil
}
