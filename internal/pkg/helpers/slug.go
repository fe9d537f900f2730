package helpers

import "strings"

// Slugify derives a URL-safe slug from a community name: lowercase, with
// every non-alphanumeric character replaced by a hyphen.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	return b.String()
}
