// Package validation checks user-supplied marketplace fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"tradepost/internal/models"

	"github.com/shopspring/decimal"
)

const (
	MaxUsernameLen = 80
	MaxTitleLen    = 120
	MaxBioLen      = 500
	MaxMessageLen  = 2000
)

var controlChars = regexp.MustCompile(`\p{Cc}`)

// maxPrice fits decimal(12,2).
var maxPrice = decimal.RequireFromString("9999999999.99")

// ValidateUsername accepts any printable name of 1-80 characters.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLen)
	}
	if controlChars.MatchString(username) {
		return fmt.Errorf("username must not contain control characters")
	}
	return nil
}

// NormalizeLanguage lowercases tag and checks it against the supported set.
// An empty tag selects the default language.
func NormalizeLanguage(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return models.DefaultLanguage, nil
	}
	if !models.IsSupportedLanguage(tag) {
		return "", fmt.Errorf("unsupported language %q", tag)
	}
	return tag, nil
}

// ValidateTitle requires a non-empty title of at most 120 characters.
func ValidateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateBio caps the profile text length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLen {
		return fmt.Errorf("bio must be at most %d characters", MaxBioLen)
	}
	return nil
}

// ValidateMessage requires a non-blank body within the length cap.
func ValidateMessage(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxMessageLen {
		return fmt.Errorf("message must be at most %d characters", MaxMessageLen)
	}
	return nil
}

// ParsePrice parses a non-negative amount and rounds it to cents.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}
	price = price.Round(2)
	if price.GreaterThan(maxPrice) {
		return decimal.Zero, fmt.Errorf("price is too large")
	}
	return price, nil
}
