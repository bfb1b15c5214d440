package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reID = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	// Owner identifiers are usually emails but the store never required it.
	reOwner = regexp.MustCompile(`^[^\s\x00]{1,254}$`)
)

// ID validates a store object id (24 hex characters).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reID.MatchString(s)
}

// Owner validates the email/owner query parameter.
func Owner(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reOwner.MatchString(s)
}

// Search trims the free-text query; empty is allowed and matches everything.
func Search(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= 200 && !strings.ContainsRune(s, 0)
}

// Count converts a JSON number into a whole count.
func Count(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
