package models

import (
	"strings"
)

// AttributeCount is the number of descriptive attributes generated per subcategory.
const AttributeCount = 3

// MaxSanitizedNameLength caps sanitized subcategory names used in cache keys
// and prompt substitution.
const MaxSanitizedNameLength = 200

// Subcategory is a single named item within a category group.
// Its identity for caching and ordering is (ID, sanitized name).
type Subcategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SanitizedName returns the subcategory name in canonical form.
func (s Subcategory) SanitizedName() string {
	return SanitizeName(s.Name)
}

// CategoryGroup is a named collection of subcategories.
// Groups with no subcategories contribute nothing to generation.
type CategoryGroup struct {
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// AttributeSet holds the generated attributes for one subcategory.
// Attributes always contains exactly AttributeCount entries.
type AttributeSet struct {
	CategoryID int      `json:"category_id"`
	Attributes []string `json:"attributes"`
}

// SanitizeName canonicalizes a subcategory name: surrounding whitespace is
// trimmed, line endings collapse to single spaces, and the result is capped
// at MaxSanitizedNameLength runes. Two names that differ only in surrounding
// whitespace or line breaks sanitize to the same value.
func SanitizeName(name string) string {
	sanitized := strings.TrimSpace(name)
	sanitized = strings.ReplaceAll(sanitized, "\r\n", " ")
	sanitized = strings.ReplaceAll(sanitized, "\r", " ")
	sanitized = strings.ReplaceAll(sanitized, "\n", " ")

	runes := []rune(sanitized)
	if len(runes) > MaxSanitizedNameLength {
		sanitized = string(runes[:MaxSanitizedNameLength])
	}
	return sanitized
}
