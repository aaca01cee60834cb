package utils

import "strings"

// Slugify derives a URL-safe slug from a display name: lowercase ASCII
// letters and digits, runs of anything else collapsed into single hyphens.
// Used by the repository layer whenever a name-like column changes so the
// stored slug never drifts from the name.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
