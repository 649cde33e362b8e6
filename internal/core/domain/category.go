package domain

import (
	"strings"
	"time"
)

// CatchAllCategory always exists after seeding and is assigned whenever
// classification yields no confident result.
const CatchAllCategory = "Other"

// SeedCategories is the fixed seed taxonomy, in presentation order. Sort
// order is assigned by list position.
var SeedCategories = []string{
	"Food", "Fashion", "Home", "Beauty",
	"Fitness", "Education", "Quotes", "Music",
	"Entertainment", "Art", "Travel", CatchAllCategory,
}

// Category is one taxonomy entry. Name identity is case-insensitive: "other"
// and "Other" denote the same category everywhere.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsSystem  bool      `json:"is_system"`
	SortOrder int64     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeCategoryName is the canonical form used for all name comparisons.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsCatchAll reports whether name denotes the catch-all category.
func IsCatchAll(name string) bool {
	return NormalizeCategoryName(name) == NormalizeCategoryName(CatchAllCategory)
}
