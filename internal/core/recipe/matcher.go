package recipe

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/pkg/common"
)

// MatcherStore is the storage surface the matcher needs.
type MatcherStore interface {
	ListReviewedIngredients(ctx context.Context) ([]CatalogEntry, error)
	FindIngredientByAlias(ctx context.Context, alias string) (*CatalogEntry, error)
	RecordUnmatched(ctx context.Context, rawName, normalizedName, recipeID string) error
}

// Matcher resolves raw ingredient strings to canonical ingredient ids.
type Matcher struct {
	store MatcherStore
}

// NewMatcher creates an ingredient matcher.
func NewMatcher(store MatcherStore) *Matcher {
	return &Matcher{store: store}
}

// MatchIngredients resolves each raw name through normalization, the
// seasoning filter, alias lookup, exact match and the partial-match
// heuristic, in that order. Names that resolve to nothing are recorded in
// the unmatched queue and produce no result. recipeID may be empty when
// matching runs before a recipe exists.
func (m *Matcher) MatchIngredients(ctx context.Context, rawNames []string, recipeID string) ([]MatchResult, error) {
	if len(rawNames) == 0 {
		return nil, nil
	}

	// The reviewed catalog backs both exact and partial matching; load it
	// once and reuse it across the whole batch.
	catalog, err := m.store.ListReviewedIngredients(ctx)
	if err != nil {
		return nil, err
	}

	var results []MatchResult
	for _, rawName := range rawNames {
		if strings.TrimSpace(rawName) == "" {
			continue
		}
		result, err := m.matchSingle(ctx, catalog, rawName, recipeID)
		if err != nil {
			return nil, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}

func (m *Matcher) matchSingle(ctx context.Context, catalog []CatalogEntry, rawName, recipeID string) (*MatchResult, error) {
	normalized := NormalizeIngredientName(rawName)
	if normalized == "" {
		return nil, nil
	}

	// Seasonings are excluded from matching outright; they are never
	// queued for reconciliation either.
	if IsSeasoning(normalized) {
		return nil, nil
	}

	aliased, err := m.store.FindIngredientByAlias(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if aliased != nil {
		return &MatchResult{IngredientID: aliased.ID, Name: aliased.Name}, nil
	}

	for _, entry := range catalog {
		if entry.Name == normalized {
			return &MatchResult{IngredientID: entry.ID, Name: entry.Name}, nil
		}
	}

	if partial := findPartialMatch(catalog, normalized); partial != nil {
		return &MatchResult{IngredientID: partial.ID, Name: partial.Name}, nil
	}

	if err := m.store.RecordUnmatched(ctx, rawName, normalized, recipeID); err != nil {
		common.LogWarn("failed to record unmatched ingredient",
			zap.String("raw_name", rawName),
			zap.Error(err))
	}
	return nil, nil
}

// findPartialMatch applies the two-tier substring heuristic:
//
//  1. Canonical names contained in the input, longest first. The winner
//     must be at least two characters so a single generic character
//     ("肉") cannot absorb every dish.
//  2. Otherwise, canonical names that contain the input, shortest first,
//     preferring the closest-length and therefore most specific name.
func findPartialMatch(catalog []CatalogEntry, normalized string) *CatalogEntry {
	var contained []CatalogEntry
	for _, entry := range catalog {
		if strings.Contains(normalized, entry.Name) {
			contained = append(contained, entry)
		}
	}
	sort.SliceStable(contained, func(i, j int) bool {
		return utf8.RuneCountInString(contained[i].Name) > utf8.RuneCountInString(contained[j].Name)
	})
	if len(contained) > 0 && utf8.RuneCountInString(contained[0].Name) >= 2 {
		return &contained[0]
	}

	var containing []CatalogEntry
	for _, entry := range catalog {
		if strings.Contains(entry.Name, normalized) {
			containing = append(containing, entry)
		}
	}
	sort.SliceStable(containing, func(i, j int) bool {
		return utf8.RuneCountInString(containing[i].Name) < utf8.RuneCountInString(containing[j].Name)
	})
	if len(containing) > 0 {
		return &containing[0]
	}

	return nil
}
