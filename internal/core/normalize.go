// normalize.go

package core

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	phoneStrip   = regexp.MustCompile(`[\s()\-]`)
)

// NormalizeEmail must run before an email is hashed or encrypted so
// the hash index is stable regardless of input formatting.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips whitespace, parentheses, and dashes.
func NormalizePhone(phone string) string {
	return phoneStrip.ReplaceAllString(strings.TrimSpace(phone), "")
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(NormalizeEmail(email))
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// ClassifyIdentifier decides whether a login identifier is an email or
// a phone number. Anything containing '@' is treated as an email.
func ClassifyIdentifier(identifier string) (normalized, kind string) {
	if strings.Contains(identifier, "@") {
		return NormalizeEmail(identifier), "email"
	}
	return NormalizePhone(identifier), "phone"
}
