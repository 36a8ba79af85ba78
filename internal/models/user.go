// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// DefaultLanguage is assigned to users who do not pick a language.
const DefaultLanguage = "en"

// SupportedLanguages maps language tags to their display names.
var SupportedLanguages = map[string]string{
	"en": "English",
	"ko": "한국어",
	"es": "Español",
	"ja": "日本語",
}

// IsSupportedLanguage reports whether tag is one of SupportedLanguages.
func IsSupportedLanguage(tag string) bool {
	_, ok := SupportedLanguages[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// User represents a marketplace member.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:80;unique;not null" json:"username"`
	Language  string    `gorm:"size:5;default:'en'" json:"language"`
	Bio       string    `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Listings  []Item    `gorm:"foreignKey:SellerID" json:"listings,omitempty"`
}
