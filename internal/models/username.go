package models

import (
	"regexp"
	"strings"
)

// MaxUsernameLength bounds usernames
const MaxUsernameLength = 30

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	usernameInvalid = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
)

// ValidUsername reports whether s is 1 to MaxUsernameLength letters, digits, underscores or hyphens.
// Such a name is always a single URL path segment.
func ValidUsername(s string) bool {
	return len(s) <= MaxUsernameLength && usernamePattern.MatchString(s)
}

// SanitizeUsername drops the characters ValidUsername rejects and truncates.
// The result may be empty.
func SanitizeUsername(s string) string {
	s = usernameInvalid.ReplaceAllString(strings.TrimSpace(s), "")
	if len(s) > MaxUsernameLength {
		s = s[:MaxUsernameLength]
	}
	return s
}
