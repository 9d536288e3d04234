package recipe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/core/scraper"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// RecipeStore is the storage surface for recipe persistence.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, input CreateInput) (string, error)
	RecordView(ctx context.Context, recipeID string) error
	SaveTitleEmbedding(ctx context.Context, recipeID string, embedding []float64) error
	IncrementEmbeddingRetry(ctx context.Context, recipeID string) error
	RecipesWithoutEmbedding(ctx context.Context, limit, maxRetries int) ([]EmbeddingTarget, error)
	RecipesMissingCookingTime(ctx context.Context, limit int) ([]CookingTimeTarget, error)
	UpdateCookingTime(ctx context.Context, recipeID string, minutes int) error
}

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float64, error)
}

// Service owns the recipe write path: creation, view tracking, and the
// embedding and cooking-time backfills.
type Service struct {
	store      RecipeStore
	embedder   Embedder
	fetcher    PageFetcher
	maxRetries int
}

// NewService creates the recipe service. embedder and fetcher may be nil;
// the corresponding features degrade gracefully.
func NewService(store RecipeStore, embedder Embedder, fetcher PageFetcher, maxRetries int) *Service {
	return &Service{
		store:      store,
		embedder:   embedder,
		fetcher:    fetcher,
		maxRetries: maxRetries,
	}
}

// Create persists a recipe. A duplicate URL surfaces as ErrDuplicateURL so
// the caller can tell the user "already saved". Title-embedding generation
// is fire-and-forget: it runs after the response path and its failure never
// fails or delays creation.
func (s *Service) Create(ctx context.Context, input CreateInput) (string, error) {
	id, err := s.store.CreateRecipe(ctx, input)
	if err != nil {
		return "", err
	}

	if s.embedder != nil && input.Title != "" {
		go s.generateEmbedding(id, input.Title)
	}

	return id, nil
}

func (s *Service) generateEmbedding(recipeID, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vector, err := s.embedder.Embed(ctx, title)
	if err != nil {
		common.LogWarn("embedding generation failed",
			zap.String("recipe_id", recipeID),
			zap.Error(err))
		if incErr := s.store.IncrementEmbeddingRetry(ctx, recipeID); incErr != nil {
			common.LogWarn("failed to record embedding retry",
				zap.String("recipe_id", recipeID),
				zap.Error(incErr))
		}
		return
	}

	if err := s.store.SaveTitleEmbedding(ctx, recipeID, vector); err != nil {
		common.LogWarn("failed to save title embedding",
			zap.String("recipe_id", recipeID),
			zap.Error(err))
	}
}

// RecordView bumps view stats when the user opens a recipe.
func (s *Service) RecordView(ctx context.Context, recipeID string) error {
	return s.store.RecordView(ctx, recipeID)
}

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Processed int      `json:"processed"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
}

// BackfillEmbeddings generates title embeddings for recipes that missed
// theirs, batching the embedding calls. Recipes past the retry cap are
// excluded; failures increment the per-recipe retry counter.
func (s *Service) BackfillEmbeddings(ctx context.Context, limit int) (*BackfillResult, error) {
	result := &BackfillResult{}

	targets, err := s.store.RecipesWithoutEmbedding(ctx, limit, s.maxRetries)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return result, nil
	}

	titles := make([]string, 0, len(targets))
	for _, t := range targets {
		titles = append(titles, t.Title)
	}

	vectors, err := s.embedder.EmbedMany(ctx, titles)
	if err != nil {
		for _, t := range targets {
			if incErr := s.store.IncrementEmbeddingRetry(ctx, t.ID); incErr != nil {
				common.LogWarn("failed to record embedding retry",
					zap.String("recipe_id", t.ID),
					zap.Error(incErr))
			}
		}
		return nil, err
	}

	for i, t := range targets {
		result.Processed++
		if err := s.store.SaveTitleEmbedding(ctx, t.ID, vectors[i]); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Updated++
	}

	common.LogInfo("embedding backfill finished",
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// BackfillCookingTimes re-scrapes structured data for recipes saved before
// cooking-time extraction existed. Only JSON-LD is consulted; pages without
// it are counted as processed and left alone.
func (s *Service) BackfillCookingTimes(ctx context.Context, limit int) (*BackfillResult, error) {
	result := &BackfillResult{}

	targets, err := s.store.RecipesMissingCookingTime(ctx, limit)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		result.Processed++

		page, err := s.fetcher.Fetch(ctx, t.URL)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		ext := scraper.ExtractRecipeFromJSONLD(page.HTML, t.URL)
		if ext == nil || ext.CookingTimeMinutes == nil {
			continue
		}

		if err := s.store.UpdateCookingTime(ctx, t.ID, *ext.CookingTimeMinutes); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Updated++
	}

	common.LogInfo("cooking-time backfill finished",
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}
