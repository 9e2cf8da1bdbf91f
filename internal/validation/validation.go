package validation

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Claim limits
const (
	MinClaimWords  = 3
	MaxClaimLength = 1000
)

// UsernamePattern defines the valid username format: alphanumeric, dots, hyphens, underscores.
var UsernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// ValidateClaim is the input-quality check run before any search is issued.
// A claim needs at least one letter and MinClaimWords words containing a letter.
func ValidateClaim(text string) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, "Please enter a headline or claim to check"
	}
	if utf8.RuneCountInString(text) > MaxClaimLength {
		return false, "Claim is too long (maximum 1000 characters)"
	}

	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return false, "Claim must contain words, not only numbers or symbols"
	}

	if CountAlphabeticWords(text) < MinClaimWords {
		return false, "Claim is too short: write at least 3 words"
	}

	return true, ""
}

// CountAlphabeticWords counts whitespace-separated tokens containing a letter.
func CountAlphabeticWords(text string) int {
	n := 0
	for _, word := range strings.Fields(text) {
		if strings.ContainsFunc(word, unicode.IsLetter) {
			n++
		}
	}
	return n
}

// NormalizeUsername lowercases and trims a username so lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks a normalized username.
func ValidateUsername(username string) (bool, string) {
	if username == "" {
		return false, "Username is required"
	}
	if !UsernamePattern.MatchString(username) {
		return false, "Username must be 3-32 characters: letters, numbers, dots, hyphens or underscores"
	}
	return true, ""
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "Email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false, "Invalid email address"
	}
	return true, ""
}

// ValidatePassword enforces a minimum length; bcrypt ignores bytes past 72.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 72 {
		return false, "Password must be at most 72 bytes"
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
