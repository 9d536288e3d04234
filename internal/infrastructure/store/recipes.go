package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mktu/recipe-app/internal/core/recipe"
)

// CreateRecipe inserts a recipe and its main-ingredient links in one
// transaction. A duplicate URL maps to recipe.ErrDuplicateURL.
func (s *Store) CreateRecipe(ctx context.Context, input recipe.CreateInput) (string, error) {
	row := Recipe{
		UserID: input.UserID,
		URL:    input.URL,
		Title:  input.Title,
	}
	if input.SourceName != "" {
		row.SourceName = &input.SourceName
	}
	if input.ImageURL != "" {
		row.ImageURL = &input.ImageURL
	}
	if input.Memo != "" {
		row.Memo = &input.Memo
	}
	row.CookingTimeMinutes = input.CookingTimeMinutes
	if len(input.RawIngredients) > 0 {
		raw, err := json.Marshal(input.RawIngredients)
		if err != nil {
			return "", fmt.Errorf("failed to marshal raw ingredients: %w", err)
		}
		row.IngredientsRaw = raw
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, ingredientID := range input.IngredientIDs {
			link := RecipeIngredient{
				RecipeID:     row.ID,
				IngredientID: ingredientID,
				IsMain:       true,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", recipe.ErrDuplicateURL
	}
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// ListRecipes returns a user's recipes with an optional case-insensitive
// contains filter over title, memo and source name and an optional
// ingredient filter, in the requested order, with main ingredients
// attached. Every ingredient set in the query must match (intersection).
func (s *Store) ListRecipes(ctx context.Context, query recipe.ListQuery) ([]recipe.Summary, error) {
	q := s.db.WithContext(ctx).Model(&Recipe{}).Where("user_id = ?", query.UserID)

	if query.Search != "" {
		term := "%" + query.Search + "%"
		q = q.Where("title ILIKE ? OR memo ILIKE ? OR source_name ILIKE ?", term, term, term)
	}

	for _, set := range query.IngredientSets {
		if len(set) == 0 {
			continue
		}
		q = q.Where("id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN ?)", set)
	}

	switch query.Sort {
	case recipe.SortOldest:
		q = q.Order("created_at ASC")
	case recipe.SortMostViewed:
		q = q.Order("view_count DESC")
	case recipe.SortRecentlyViewed:
		q = q.Order("last_viewed_at DESC NULLS LAST")
	default:
		q = q.Order("created_at DESC")
	}

	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var rows []Recipe
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, rows)
}

// ListRecipesByIDs returns summaries for the given recipe ids, scoped to the
// user, in the order the ids were given.
func (s *Store) ListRecipesByIDs(ctx context.Context, userID string, ids []string) ([]recipe.Summary, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []Recipe
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]Recipe, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	ordered := make([]Recipe, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return s.toSummaries(ctx, ordered)
}

type recipeIngredientRow struct {
	RecipeID string
	ID       string
	Name     string
	IsMain   bool
}

func (s *Store) toSummaries(ctx context.Context, rows []Recipe) ([]recipe.Summary, error) {
	summaries := make([]recipe.Summary, 0, len(rows))
	if len(rows) == 0 {
		return summaries, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var ingRows []recipeIngredientRow
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, ingredients.id, ingredients.name, recipe_ingredients.is_main").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ? AND recipe_ingredients.is_main = ?", ids, true).
		Scan(&ingRows).Error
	if err != nil {
		return nil, err
	}

	ingredientMap := make(map[string][]recipe.IngredientRef)
	for _, ri := range ingRows {
		ingredientMap[ri.RecipeID] = append(ingredientMap[ri.RecipeID], recipe.IngredientRef{
			ID:     ri.ID,
			Name:   ri.Name,
			IsMain: ri.IsMain,
		})
	}

	for _, r := range rows {
		sum := recipe.Summary{
			ID:                 r.ID,
			Title:              r.Title,
			URL:                r.URL,
			CookingTimeMinutes: r.CookingTimeMinutes,
			ViewCount:          r.ViewCount,
			LastViewedAt:       r.LastViewedAt,
			CreatedAt:          r.CreatedAt,
			MainIngredients:    ingredientMap[r.ID],
		}
		if r.SourceName != nil {
			sum.SourceName = *r.SourceName
		}
		if r.ImageURL != nil {
			sum.ImageURL = *r.ImageURL
		}
		if r.Memo != nil {
			sum.Memo = *r.Memo
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// SearchByEmbedding performs the nearest-neighbor RPC over stored title
// embeddings. The vector index lives behind the search_recipes_by_embedding
// SQL function; this side only serializes the query vector.
func (s *Store) SearchByEmbedding(ctx context.Context, userID string, queryEmbedding []float64, threshold float64, limit int) ([]string, error) {
	vec, err := json.Marshal(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
	}

	var ids []string
	err = s.db.WithContext(ctx).
		Raw("SELECT id FROM search_recipes_by_embedding(?, ?, ?, ?)",
			userID, string(vec), threshold, limit).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveTitleEmbedding stores a generated vector as JSON text.
func (s *Store) SaveTitleEmbedding(ctx context.Context, recipeID string, embedding []float64) error {
	vec, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	text := string(vec)
	return s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ?", recipeID).
		Update("title_embedding", &text).Error
}

// IncrementEmbeddingRetry bumps the poison-pill counter after a failed
// embedding attempt.
func (s *Store) IncrementEmbeddingRetry(ctx context.Context, recipeID string) error {
	return s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("embedding_retry_count", gorm.Expr("embedding_retry_count + 1")).Error
}

// RecipesWithoutEmbedding returns recipes still awaiting a title embedding,
// excluding those that exhausted their retries.
func (s *Store) RecipesWithoutEmbedding(ctx context.Context, limit, maxRetries int) ([]recipe.EmbeddingTarget, error) {
	var rows []Recipe
	if err := s.db.WithContext(ctx).
		Where("title_embedding IS NULL AND embedding_retry_count < ?", maxRetries).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	targets := make([]recipe.EmbeddingTarget, 0, len(rows))
	for _, r := range rows {
		targets = append(targets, recipe.EmbeddingTarget{
			ID:         r.ID,
			Title:      r.Title,
			RetryCount: r.EmbeddingRetryCount,
		})
	}
	return targets, nil
}

// RecipesMissingCookingTime returns recipes whose cooking time was never
// extracted, for the re-scrape backfill.
func (s *Store) RecipesMissingCookingTime(ctx context.Context, limit int) ([]recipe.CookingTimeTarget, error) {
	var rows []Recipe
	if err := s.db.WithContext(ctx).
		Where("cooking_time_minutes IS NULL").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	targets := make([]recipe.CookingTimeTarget, 0, len(rows))
	for _, r := range rows {
		targets = append(targets, recipe.CookingTimeTarget{ID: r.ID, URL: r.URL, Title: r.Title})
	}
	return targets, nil
}

// UpdateCookingTime backfills an extracted cooking time.
func (s *Store) UpdateCookingTime(ctx context.Context, recipeID string, minutes int) error {
	return s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ?", recipeID).
		Update("cooking_time_minutes", minutes).Error
}

// RecordView bumps the view counter and last-viewed timestamp.
func (s *Store) RecordView(ctx context.Context, recipeID string) error {
	return s.db.WithContext(ctx).
		Model(&Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_viewed_at": nowPtr(),
		}).Error
}
