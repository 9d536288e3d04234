package recipe

import (
	"context"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// SearchStore is the storage surface for the hybrid read path.
type SearchStore interface {
	ListRecipes(ctx context.Context, query ListQuery) ([]Summary, error)
	ListRecipesByIDs(ctx context.Context, userID string, ids []string) ([]Summary, error)
	SearchByEmbedding(ctx context.Context, userID string, queryEmbedding []float64, threshold float64, limit int) ([]string, error)
	ExpandIngredientIDs(ctx context.Context, ids []string) (map[string][]string, error)
}

// SearchQuery is one hybrid search request.
type SearchQuery struct {
	UserID        string
	Text          string
	IngredientIDs []string
	Sort          SortOrder
	Limit         int
}

// SearchService combines lexical substring matching with a semantic
// fallback. The semantic call is only made when lexical results are
// sparse; most queries never pay for an embedding.
type SearchService struct {
	store    SearchStore
	resolver *QueryResolver
	embedder Embedder
	config   *config.SearchConfig
}

// NewSearchService creates the hybrid search service. resolver and embedder
// may be nil, which disables query word resolution and the semantic
// fallback respectively.
func NewSearchService(store SearchStore, resolver *QueryResolver, embedder Embedder, cfg *config.SearchConfig) *SearchService {
	return &SearchService{
		store:    store,
		resolver: resolver,
		embedder: embedder,
		config:   cfg,
	}
}

// Search runs the hybrid search. Ingredient filters are expanded through
// the taxonomy and applied as an intersection: a recipe must carry every
// selected ingredient (or one of its children), not just one.
func (s *SearchService) Search(ctx context.Context, query SearchQuery) ([]Summary, error) {
	if query.Sort == "" {
		query.Sort = SortNewest
	}
	limit := query.Limit
	if limit <= 0 || limit > s.config.MaxResults {
		limit = s.config.MaxResults
	}

	// Query words naming a known ingredient become filters; the rest of
	// the text stays lexical. A resolution failure keeps the raw text.
	if s.resolver != nil && query.Text != "" {
		parsed, err := s.resolver.Parse(ctx, query.Text)
		if err != nil {
			common.LogWarn("query word resolution failed, using raw text",
				zap.String("query", query.Text),
				zap.Error(err))
		} else {
			query.IngredientIDs = mergeIDs(query.IngredientIDs, parsed.IngredientIDs)
			query.Text = parsed.Text
		}
	}

	sets, err := s.expandFilters(ctx, query.IngredientIDs)
	if err != nil {
		return nil, err
	}

	lexical, err := s.store.ListRecipes(ctx, ListQuery{
		UserID:         query.UserID,
		Search:         query.Text,
		Sort:           query.Sort,
		IngredientSets: sets,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	// Without a text query there is nothing for semantic search to add.
	if query.Text == "" || len(lexical) >= s.config.MinLexicalResults || s.embedder == nil {
		return lexical, nil
	}

	semantic := s.semanticFallback(ctx, query, lexical, sets, limit-len(lexical))
	return append(lexical, semantic...), nil
}

// semanticFallback is an enhancement, not a dependency: every failure path
// degrades to the lexical results alone.
func (s *SearchService) semanticFallback(ctx context.Context, query SearchQuery, lexical []Summary, sets [][]string, budget int) []Summary {
	if budget <= 0 {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, query.Text)
	if err != nil {
		common.LogWarn("query embedding failed, falling back to lexical results",
			zap.String("query", query.Text),
			zap.Error(err))
		return nil
	}

	seen := make(map[string]bool, len(lexical))
	for _, r := range lexical {
		seen[r.ID] = true
	}

	ids, err := s.store.SearchByEmbedding(ctx, query.UserID, vector, s.config.SimilarityThreshold, budget+len(lexical))
	if err != nil {
		common.LogWarn("semantic search failed, falling back to lexical results",
			zap.Error(err))
		return nil
	}

	var fresh []string
	for _, id := range ids {
		if !seen[id] {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	summaries, err := s.store.ListRecipesByIDs(ctx, query.UserID, fresh)
	if err != nil {
		common.LogWarn("failed to load semantic search results", zap.Error(err))
		return nil
	}

	var out []Summary
	for _, summary := range summaries {
		if len(out) >= budget {
			break
		}
		if matchesIngredientSets(summary, sets) {
			out = append(out, summary)
		}
	}
	return out
}

func mergeIDs(explicit, resolved []string) []string {
	seen := make(map[string]bool, len(explicit))
	out := explicit
	for _, id := range explicit {
		seen[id] = true
	}
	for _, id := range resolved {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *SearchService) expandFilters(ctx context.Context, ids []string) ([][]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	expanded, err := s.store.ExpandIngredientIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sets := make([][]string, 0, len(ids))
	for _, id := range ids {
		sets = append(sets, expanded[id])
	}
	return sets, nil
}

// matchesIngredientSets applies the AND-of-sets filter to results coming
// from the vector path, which bypasses the SQL-side filter.
func matchesIngredientSets(summary Summary, sets [][]string) bool {
	for _, set := range sets {
		found := false
		for _, ref := range summary.MainIngredients {
			for _, id := range set {
				if ref.ID == id {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
