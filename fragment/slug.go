package fragment

import (
	"strings"

	"github.com/gosimple/slug"
)

// DefaultSlugLimit is maximum length (in characters) of slug part of fragment
// name.
const DefaultSlugLimit = 20

// Slugify makes file name friendly identifier from arbitrary text: transliterated,
// lowercase, words separated by single underscore and no longer than limit
// characters. Limit <= 0 means no limit.
func Slugify(text string, limit int) string {
	s := strings.ReplaceAll(slug.Make(strings.TrimSpace(text)), "-", "_")
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			s = s[:i]
			break
		}
		n++
	}
	return strings.TrimRight(s, "_")
}
