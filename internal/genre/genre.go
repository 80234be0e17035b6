// Package genre collapses fine-grained catalog genre tags into a small fixed set of coarse categories.
//
// A [Normalizer] is built once from an ordered list of [Category] values and never changes afterwards.
// When a tag is listed under more than one category, the category that appears last in the list wins.
// Tags the normalizer has never seen, including the empty tag, map to [Other].
package genre

// Other is the fallback category for unknown or missing tags.
const Other = "other"

// Category is a coarse genre and the fine-grained tags that belong to it.
type Category struct {
	Name string
	Tags []string
}

// Normalizer is an immutable tag → category lookup table.
type Normalizer struct {
	index      map[string]string
	categories []string
}

// NewNormalizer flattens categories into an inverted index.
func NewNormalizer(categories []Category) *Normalizer {
	n := &Normalizer{index: make(map[string]string)}
	seen := make(map[string]bool)

	for _, c := range categories {
		if !seen[c.Name] {
			seen[c.Name] = true
			n.categories = append(n.categories, c.Name)
		}
		for _, tag := range c.Tags {
			n.index[tag] = c.Name
		}
	}

	if !seen[Other] {
		n.categories = append(n.categories, Other)
	}

	return n
}

// Default returns a normalizer over [DefaultCategories].
func Default() *Normalizer {
	return NewNormalizer(DefaultCategories())
}

// Lookup returns the coarse category for tag.
func (n *Normalizer) Lookup(tag string) string {
	if c, ok := n.index[tag]; ok {
		return c
	}
	return Other
}

// Categories returns the category names in declaration order, always including [Other].
func (n *Normalizer) Categories() []string {
	out := make([]string, len(n.categories))
	copy(out, n.categories)
	return out
}

// Len returns the number of distinct tags known to the normalizer.
func (n *Normalizer) Len() int { return len(n.index) }

// Tags returns the tags that resolve to category, in no particular order.
func (n *Normalizer) Tags(category string) []string {
	var tags []string
	for tag, c := range n.index {
		if c == category {
			tags = append(tags, tag)
		}
	}
	return tags
}
