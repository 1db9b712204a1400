// Package sanitizer normalizes untrusted input before validation and
// storage.
package sanitizer

import "strings"

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail lowercases and trims an email address. Lookup and the
// uniqueness check both depend on emails being stored in this form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SingleSpace collapses internal whitespace runs to a single space.
func SingleSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
