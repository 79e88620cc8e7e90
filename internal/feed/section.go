package feed

// Section names shared by the page handlers. Pages declare their own specs;
// these are just the conventional names.
const (
	SectionHero      = "hero"
	SectionSecondary = "secondary"
	SectionTrending  = "trending"
	SectionLatest    = "latest"
	SectionPosts     = "posts"
)

// SectionSpec assigns a name to a positional slice of the master list.
// Count <= 0 means "to the end of the list".
type SectionSpec struct {
	Name  string
	Start int
	Count int
}

// Sections partitions the ordered item list by positional slicing. Pure:
// out-of-range specs yield shorter or empty sections, never an error, and
// overlapping specs are allowed.
func Sections(items []Item, specs []SectionSpec) map[string][]Item {
	out := make(map[string][]Item, len(specs))
	for _, spec := range specs {
		out[spec.Name] = sliceItems(items, spec.Start, spec.Count)
	}
	return out
}

func sliceItems(items []Item, start, count int) []Item {
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []Item{}
	}

	end := len(items)
	if count > 0 && start+count < end {
		end = start + count
	}
	return items[start:end]
}
