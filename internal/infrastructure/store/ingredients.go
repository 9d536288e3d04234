package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mktu/recipe-app/internal/core/recipe"
)

// ListReviewedIngredients returns the trusted canonical catalog
// (needs_review = false). The matcher loads this once per matching call.
func (s *Store) ListReviewedIngredients(ctx context.Context) ([]recipe.CatalogEntry, error) {
	var rows []Ingredient
	if err := s.db.WithContext(ctx).
		Where("needs_review = ?", false).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]recipe.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, recipe.CatalogEntry{ID: r.ID, Name: r.Name, Category: r.Category})
	}
	return entries, nil
}

// ListIngredientsByCategory returns the reviewed catalog grouped by category,
// preserving name order inside each group.
func (s *Store) ListIngredientsByCategory(ctx context.Context) (map[string][]recipe.CatalogEntry, error) {
	entries, err := s.ListReviewedIngredients(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]recipe.CatalogEntry)
	for _, e := range entries {
		grouped[e.Category] = append(grouped[e.Category], e)
	}
	return grouped, nil
}

// FindIngredientByAlias resolves a surface-form string through the alias
// table. Returns nil when no alias exists.
func (s *Store) FindIngredientByAlias(ctx context.Context, alias string) (*recipe.CatalogEntry, error) {
	var row IngredientAlias
	err := s.db.WithContext(ctx).Where("alias = ?", alias).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ing Ingredient
	err = s.db.WithContext(ctx).Where("id = ?", row.IngredientID).First(&ing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe.CatalogEntry{ID: ing.ID, Name: ing.Name, Category: ing.Category}, nil
}

// InsertAlias writes an auto-generated alias. A duplicate alias is reported
// as AlreadyExists, never as an error.
func (s *Store) InsertAlias(ctx context.Context, alias, ingredientID string) (recipe.InsertOutcome, error) {
	row := IngredientAlias{
		Alias:         alias,
		IngredientID:  ingredientID,
		AutoGenerated: true,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	outcome := outcomeOf(err)
	if outcome == recipe.InsertFailed {
		return outcome, err
	}
	return outcome, nil
}

// InsertProvisionalIngredient creates a needs-review canonical ingredient.
// A duplicate name is reported as AlreadyExists.
func (s *Store) InsertProvisionalIngredient(ctx context.Context, name, category string) (string, recipe.InsertOutcome, error) {
	row := Ingredient{
		Name:        name,
		Category:    category,
		NeedsReview: true,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	outcome := outcomeOf(err)
	if outcome == recipe.InsertFailed {
		return "", outcome, err
	}
	if outcome == recipe.AlreadyExists {
		return "", outcome, nil
	}
	return row.ID, outcome, nil
}

// ExpandIngredientIDs maps each id to itself plus any taxonomy children,
// used to broaden ingredient filters ("pork" also matches "pork belly").
func (s *Store) ExpandIngredientIDs(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []Ingredient
	if err := s.db.WithContext(ctx).
		Where("id IN ? OR parent_id IN ?", ids, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, searchID := range ids {
		matching := []string{}
		for _, row := range rows {
			if row.ID == searchID || (row.ParentID != nil && *row.ParentID == searchID) {
				matching = append(matching, row.ID)
			}
		}
		if !contains(matching, searchID) {
			matching = append(matching, searchID)
		}
		result[searchID] = matching
	}
	return result, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
