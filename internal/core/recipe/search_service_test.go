package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

type fakeSearchStore struct {
	lexical    []Summary
	byID       map[string]Summary
	vectorIDs  []string
	expansions map[string][]string

	lastQuery ListQuery
}

func (f *fakeSearchStore) ListRecipes(ctx context.Context, query ListQuery) ([]Summary, error) {
	f.lastQuery = query
	return f.lexical, nil
}

func (f *fakeSearchStore) ListRecipesByIDs(ctx context.Context, userID string, ids []string) ([]Summary, error) {
	var out []Summary
	for _, id := range ids {
		if s, ok := f.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSearchStore) SearchByEmbedding(ctx context.Context, userID string, queryEmbedding []float64, threshold float64, limit int) ([]string, error) {
	return f.vectorIDs, nil
}

func (f *fakeSearchStore) ExpandIngredientIDs(ctx context.Context, ids []string) (map[string][]string, error) {
	return f.expansions, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.1, 0.2}, nil
}

func (f *fakeEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

func searchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		MinLexicalResults:   3,
		SimilarityThreshold: 0.65,
		MaxResults:          20,
	}
}

func summaries(ids ...string) []Summary {
	out := make([]Summary, len(ids))
	for i, id := range ids {
		out[i] = Summary{ID: id, Title: "recipe " + id}
	}
	return out
}

func TestSearchSkipsSemanticWhenLexicalIsEnough(t *testing.T) {
	store := &fakeSearchStore{lexical: summaries("a", "b", "c")}
	embedder := &fakeEmbedder{}
	svc := NewSearchService(store, nil, embedder, searchConfig())

	results, err := svc.Search(context.Background(), SearchQuery{UserID: "u1", Text: "肉じゃが"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results", len(results))
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times, want 0", embedder.calls)
	}
}

func TestSearchSkipsSemanticWithoutText(t *testing.T) {
	store := &fakeSearchStore{lexical: summaries("a")}
	embedder := &fakeEmbedder{}
	svc := NewSearchService(store, nil, embedder, searchConfig())

	if _, err := svc.Search(context.Background(), SearchQuery{UserID: "u1"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if embedder.calls != 0 {
		t.Errorf("browse queries must not embed, calls=%d", embedder.calls)
	}
}

func TestSearchSemanticFallbackUnionLexicalFirst(t *testing.T) {
	store := &fakeSearchStore{
		lexical:   summaries("a"),
		vectorIDs: []string{"a", "b", "c"},
		byID: map[string]Summary{
			"b": {ID: "b", Title: "recipe b"},
			"c": {ID: "c", Title: "recipe c"},
		},
	}
	embedder := &fakeEmbedder{}
	svc := NewSearchService(store, nil, embedder, searchConfig())

	results, err := svc.Search(context.Background(), SearchQuery{UserID: "u1", Text: "和食"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("results[%d] = %q, want %q", i, results[i].ID, id)
		}
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}
}

func TestSearchEmbedFailureDegradesToLexical(t *testing.T) {
	store := &fakeSearchStore{
		lexical:   summaries("a"),
		vectorIDs: []string{"b"},
		byID:      map[string]Summary{"b": {ID: "b"}},
	}
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	svc := NewSearchService(store, nil, embedder, searchConfig())

	results, err := svc.Search(context.Background(), SearchQuery{UserID: "u1", Text: "和食"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("expected lexical-only results, got %+v", results)
	}
}

func TestSearchNilEmbedderIsLexicalOnly(t *testing.T) {
	store := &fakeSearchStore{lexical: summaries("a")}
	svc := NewSearchService(store, nil, nil, searchConfig())

	results, err := svc.Search(context.Background(), SearchQuery{UserID: "u1", Text: "和食"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results", len(results))
	}
}

func TestSearchExpandsIngredientFilters(t *testing.T) {
	store := &fakeSearchStore{
		lexical: summaries("a", "b", "c"),
		expansions: map[string][]string{
			"pork": {"pork", "pork-belly", "pork-loin"},
		},
	}
	svc := NewSearchService(store, nil, nil, searchConfig())

	if _, err := svc.Search(context.Background(), SearchQuery{
		UserID:        "u1",
		IngredientIDs: []string{"pork"},
	}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	sets := store.lastQuery.IngredientSets
	if len(sets) != 1 || len(sets[0]) != 3 {
		t.Fatalf("ingredient sets = %v", sets)
	}
}

func TestSearchSemanticResultsHonorIngredientFilter(t *testing.T) {
	store := &fakeSearchStore{
		lexical:   summaries("a"),
		vectorIDs: []string{"b", "c"},
		byID: map[string]Summary{
			"b": {ID: "b", MainIngredients: []IngredientRef{{ID: "pork-belly"}}},
			"c": {ID: "c", MainIngredients: []IngredientRef{{ID: "carrot"}}},
		},
		expansions: map[string][]string{
			"pork": {"pork", "pork-belly"},
		},
	}
	svc := NewSearchService(store, nil, &fakeEmbedder{}, searchConfig())

	results, err := svc.Search(context.Background(), SearchQuery{
		UserID:        "u1",
		Text:          "豚",
		IngredientIDs: []string{"pork"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// c has no pork-family ingredient and must be filtered out of the
	// vector results.
	if len(results) != 2 || results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchResolvesQueryWordsToFilters(t *testing.T) {
	store := &fakeSearchStore{
		lexical: summaries("a", "b", "c"),
		expansions: map[string][]string{
			"pork": {"pork", "pork-belly"},
		},
	}
	resolverStore := &fakeMatcherStore{
		catalog: []CatalogEntry{{ID: "pork", Name: "豚肉"}},
		aliases: map[string]CatalogEntry{},
	}
	svc := NewSearchService(store, NewQueryResolver(resolverStore), nil, searchConfig())

	if _, err := svc.Search(context.Background(), SearchQuery{
		UserID: "u1",
		Text:   "豚肉 カレー",
	}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// 豚肉 becomes an ingredient filter; カレー stays the text query.
	if store.lastQuery.Search != "カレー" {
		t.Errorf("lexical text = %q, want カレー", store.lastQuery.Search)
	}
	if len(store.lastQuery.IngredientSets) != 1 || len(store.lastQuery.IngredientSets[0]) != 2 {
		t.Errorf("ingredient sets = %v", store.lastQuery.IngredientSets)
	}
}

func TestMatchesIngredientSets(t *testing.T) {
	summary := Summary{MainIngredients: []IngredientRef{{ID: "pork"}, {ID: "onion"}}}

	tests := []struct {
		name string
		sets [][]string
		want bool
	}{
		{"no filter", nil, true},
		{"single hit", [][]string{{"pork", "pork-belly"}}, true},
		{"both sets hit", [][]string{{"pork"}, {"onion"}}, true},
		{"one set misses", [][]string{{"pork"}, {"carrot"}}, false},
		{"empty set never matches", [][]string{{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesIngredientSets(summary, tt.sets); got != tt.want {
				t.Errorf("matchesIngredientSets = %v, want %v", got, tt.want)
			}
		})
	}
}
