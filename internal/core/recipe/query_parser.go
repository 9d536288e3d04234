package recipe

import (
	"context"
	"strings"
)

// QueryResolverStore is the storage surface for query word resolution.
type QueryResolverStore interface {
	ListReviewedIngredients(ctx context.Context) ([]CatalogEntry, error)
	FindIngredientByAlias(ctx context.Context, alias string) (*CatalogEntry, error)
}

// ParsedQuery is a free-text search input split into resolved ingredient
// filters and residual lexical text.
type ParsedQuery struct {
	IngredientIDs []string
	Text          string
}

// QueryResolver turns search words that name a known ingredient into
// ingredient filters, so "豚肉 カレー" filters by pork and searches for
// カレー. Resolution is exact only: a word must equal a catalog name or a
// registered alias.
type QueryResolver struct {
	store QueryResolverStore
}

// NewQueryResolver creates a query resolver.
func NewQueryResolver(store QueryResolverStore) *QueryResolver {
	return &QueryResolver{store: store}
}

// Parse splits input on whitespace (half- and full-width) and resolves each
// word. Resolved words become deduplicated ingredient ids; the rest rejoin
// as the residual text query.
func (r *QueryResolver) Parse(ctx context.Context, input string) (ParsedQuery, error) {
	words := strings.Fields(input)
	if len(words) == 0 {
		return ParsedQuery{}, nil
	}

	catalog, err := r.store.ListReviewedIngredients(ctx)
	if err != nil {
		return ParsedQuery{}, err
	}
	byName := make(map[string]string, len(catalog))
	for _, entry := range catalog {
		byName[entry.Name] = entry.ID
	}

	var (
		ids      []string
		seen     = make(map[string]bool)
		residual []string
	)
	for _, word := range words {
		id, ok := byName[word]
		if !ok {
			aliased, err := r.store.FindIngredientByAlias(ctx, word)
			if err != nil {
				return ParsedQuery{}, err
			}
			if aliased != nil {
				id, ok = aliased.ID, true
			}
		}
		if ok {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
			continue
		}
		residual = append(residual, word)
	}

	return ParsedQuery{
		IngredientIDs: ids,
		Text:          strings.Join(residual, " "),
	}, nil
}
