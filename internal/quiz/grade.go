package quiz

import "strings"

// Grade reports whether submitted matches expected after trimming
// surrounding whitespace and folding case.
func Grade(expected, submitted string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(submitted))
}
