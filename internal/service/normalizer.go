package service

import (
	"crypto/sha256"
	"encoding/base32"
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// normalizeReferralCode upper-cases the code and strips whitespace.
func normalizeReferralCode(code string) string {
	return strings.ToUpper(whitespaceRegex.ReplaceAllString(code, ""))
}

// hashValue returns a deterministic, upper-case base32 digest of value.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
