// Package validation centralizes input normalization and the env-tunable
// limits shared by the auth, profile, and messaging paths.
package validation

import (
	"net/mail"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Usernames are lowercase-insensitive handles: letters, digits, underscore.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	defaultPasswordMinLength = 10
	defaultMaxMessageLength  = 4000
	defaultHistoryPageLimit  = 50
	maxHistoryPageLimit      = 100
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(NormalizeUsername(username))
}

// PasswordMinLength reads PASSWORD_MIN_LENGTH, refusing values below 8.
func PasswordMinLength() int {
	raw := os.Getenv("PASSWORD_MIN_LENGTH")
	if raw == "" {
		return defaultPasswordMinLength
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 8 {
		return defaultPasswordMinLength
	}
	return n
}

func ValidatePassword(password string) bool {
	return len(password) >= PasswordMinLength()
}

// MaxMessageLength reads MAX_MESSAGE_LENGTH for the text message body cap.
func MaxMessageLength() int {
	raw := os.Getenv("MAX_MESSAGE_LENGTH")
	if raw == "" {
		return defaultMaxMessageLength
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultMaxMessageLength
	}
	return n
}

// ClampPageLimit normalizes a caller-supplied history page size: non-positive
// or oversized values fall back to the default page.
func ClampPageLimit(limit int) int {
	if limit <= 0 || limit > maxHistoryPageLimit {
		return defaultHistoryPageLimit
	}
	return limit
}

// TrimAndLimit trims whitespace and hard-caps the byte length.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
