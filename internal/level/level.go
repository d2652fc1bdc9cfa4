// Package level decides whether a due applies to a student by academic level.
package level

import "strings"

// Normalize trims surrounding whitespace from a level label.
// Case is preserved as entered.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// Matches reports whether a student at studentLevel should be charged a due
// targeted at dueLevel. Labels are compared exactly after trimming, ignoring
// case. An empty label on either side never matches.
func Matches(studentLevel, dueLevel string) bool {
	s := Normalize(studentLevel)
	d := Normalize(dueLevel)
	if s == "" || d == "" {
		return false
	}
	return strings.EqualFold(s, d)
}
