package store

import (
	"context"

	"github.com/mktu/recipe-app/internal/core/recipe"
)

// RecordUnmatched queues a raw ingredient string the matcher could not
// resolve. recipeID may be empty when matching runs outside a save flow.
func (s *Store) RecordUnmatched(ctx context.Context, rawName, normalizedName, recipeID string) error {
	row := UnmatchedIngredient{
		RawName:        rawName,
		NormalizedName: normalizedName,
	}
	if recipeID != "" {
		row.RecipeID = &recipeID
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// UnmatchedCounts groups the backlog by normalized name and returns the most
// frequent entries first, capped to limit.
func (s *Store) UnmatchedCounts(ctx context.Context, limit int) ([]recipe.UnmatchedCount, error) {
	var rows []recipe.UnmatchedCount
	err := s.db.WithContext(ctx).
		Model(&UnmatchedIngredient{}).
		Select("normalized_name, COUNT(*) AS count").
		Group("normalized_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteUnmatched removes every queue row for the given normalized names.
// Called once the reconciliation job has decided on them, whatever the
// decision was.
func (s *Store) DeleteUnmatched(ctx context.Context, normalizedNames []string) error {
	if len(normalizedNames) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("normalized_name IN ?", normalizedNames).
		Delete(&UnmatchedIngredient{}).Error
}
