package recipe

import (
	"errors"
	"time"
)

// ErrDuplicateURL is returned when a recipe URL is already saved. The store
// maps its duplicate-key conflict onto this so callers can tell the user
// "already saved" instead of failing.
var ErrDuplicateURL = errors.New("recipe URL already saved")

// InsertOutcome is the tagged result of a conflict-tolerant insert.
// Duplicate-key conflicts are treated as success-already-achieved, so the
// policy stays portable across storage backends.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
	InsertFailed
)

// Draft is the transient output of content extraction, before ingredient
// resolution. It is discarded once a persisted recipe exists.
type Draft struct {
	Title              string   `json:"title"`
	SourceName         string   `json:"sourceName"`
	ImageURL           string   `json:"imageUrl"`
	RawIngredients     []string `json:"rawIngredients"`
	CookingTimeMinutes *int     `json:"cookingTimeMinutes"`
}

// ParsedRecipe is a draft with its ingredients resolved to canonical ids,
// ready for the confirm/save flow.
type ParsedRecipe struct {
	Draft
	Ingredients []MatchResult `json:"ingredients"`
}

// MatchResult is a resolved canonical ingredient reference.
type MatchResult struct {
	IngredientID string `json:"ingredientId"`
	Name         string `json:"name"`
}

// CatalogEntry is a canonical ingredient as seen by the matcher and the
// reconciliation job.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// UnmatchedCount is one backlog entry grouped by normalized name, ordered
// by descending occurrence frequency.
type UnmatchedCount struct {
	NormalizedName string `json:"normalizedName"`
	Count          int    `json:"count"`
}

// IngredientRef is an ingredient attached to a recipe.
type IngredientRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsMain bool   `json:"isMain"`
}

// SortOrder selects the list ordering for recipe queries.
type SortOrder string

const (
	SortNewest         SortOrder = "newest"
	SortOldest         SortOrder = "oldest"
	SortMostViewed     SortOrder = "most_viewed"
	SortRecentlyViewed SortOrder = "recently_viewed"
)

// ValidSortOrder reports whether s is a known sort order.
func ValidSortOrder(s SortOrder) bool {
	switch s {
	case SortNewest, SortOldest, SortMostViewed, SortRecentlyViewed:
		return true
	}
	return false
}

// ListQuery selects and orders recipes for one user. IngredientSets is the
// expanded form of an ingredient filter: each inner slice is one selected
// ingredient plus its taxonomy children, and a recipe must match every set
// (intersection, not union).
type ListQuery struct {
	UserID         string
	Search         string
	Sort           SortOrder
	IngredientSets [][]string
	Limit          int
}

// Summary is a recipe as returned by list/search.
type Summary struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	URL                string          `json:"url"`
	SourceName         string          `json:"sourceName,omitempty"`
	ImageURL           string          `json:"imageUrl,omitempty"`
	Memo               string          `json:"memo,omitempty"`
	CookingTimeMinutes *int            `json:"cookingTimeMinutes"`
	ViewCount          int             `json:"viewCount"`
	LastViewedAt       *time.Time      `json:"lastViewedAt"`
	CreatedAt          time.Time       `json:"createdAt"`
	MainIngredients    []IngredientRef `json:"mainIngredients"`
}

// CreateInput is the payload for saving a new recipe.
type CreateInput struct {
	UserID             string   `json:"userId"`
	URL                string   `json:"url"`
	Title              string   `json:"title"`
	SourceName         string   `json:"sourceName"`
	ImageURL           string   `json:"imageUrl"`
	Memo               string   `json:"memo"`
	IngredientIDs      []string `json:"ingredientIds"`
	RawIngredients     []string `json:"rawIngredients"`
	CookingTimeMinutes *int     `json:"cookingTimeMinutes"`
}

// EmbeddingTarget is a recipe awaiting title-embedding generation.
type EmbeddingTarget struct {
	ID         string
	Title      string
	RetryCount int
}

// CookingTimeTarget is a recipe whose cooking time was never extracted,
// picked up by the re-scrape backfill.
type CookingTimeTarget struct {
	ID    string
	URL   string
	Title string
}
