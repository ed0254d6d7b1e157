package utils

import (
	"regexp"
	"strings"
)

var (
	phoneNoise = regexp.MustCompile(`[\s\-\.\(\)]+`)
	e164       = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
)

// NormalizePhone strips common formatting (spaces, dashes, dots, parentheses)
// and rewrites a leading international "00" prefix to "+". It never guesses a
// country code; anything else is returned as typed so validation can reject it.
func NormalizePhone(raw string) string {
	s := phoneNoise.ReplaceAllString(strings.TrimSpace(raw), "")
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	return s
}

// IsE164 reports whether s is a "+" followed by 7 to 15 digits, first digit non-zero.
func IsE164(s string) bool {
	return e164.MatchString(s)
}
