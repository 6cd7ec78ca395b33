package common

import "strings"

// UpperTrim normalizes user-supplied state/plate terms the way they are
// stored: trimmed and upper-cased.
func UpperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
