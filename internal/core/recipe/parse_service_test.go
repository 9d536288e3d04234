package recipe

import (
	"context"
	"net/http"
	"testing"

	"github.com/mktu/recipe-app/internal/core/scraper"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*scraper.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &scraper.FetchResult{HTML: f.html, ContentType: "text/html"}, nil
}

type fakeReader struct {
	result *scraper.ReaderResult
	err    error
	calls  int
}

func (f *fakeReader) Read(ctx context.Context, url string) (*scraper.ReaderResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	result *LLMExtraction
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, content, sourceURL string) (*LLMExtraction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDraftCache struct {
	entries map[string]*ParsedRecipe
	sets    int
}

func (f *fakeDraftCache) Get(ctx context.Context, url string) (*ParsedRecipe, error) {
	return f.entries[url], nil
}

func (f *fakeDraftCache) Set(ctx context.Context, url string, parsed *ParsedRecipe) error {
	if f.entries == nil {
		f.entries = map[string]*ParsedRecipe{}
	}
	f.entries[url] = parsed
	f.sets++
	return nil
}

func emptyMatcher() *Matcher {
	return NewMatcher(&fakeMatcherStore{aliases: map[string]CatalogEntry{}})
}

const jsonLDPage = `<script type="application/ld+json">
{"@type":"Recipe","name":"肉じゃが","recipeIngredient":["じゃがいも 3個"]}
</script>`

func TestParseUsesStructuredDataFirst(t *testing.T) {
	fetcher := &fakeFetcher{html: jsonLDPage}
	reader := &fakeReader{}
	llm := &fakeExtractor{}
	svc := NewParseService(fetcher, reader, llm, emptyMatcher(), nil)

	parsed, err := svc.Parse(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Draft.Title != "肉じゃが" {
		t.Errorf("title = %q", parsed.Draft.Title)
	}
	if reader.calls != 0 || llm.calls != 0 {
		t.Errorf("JSON-LD success must skip later strategies: reader=%d llm=%d", reader.calls, llm.calls)
	}
}

func TestParseBlockedFetchFallsToReader(t *testing.T) {
	fetcher := &fakeFetcher{err: &scraper.FetchError{StatusCode: http.StatusForbidden}}
	reader := &fakeReader{result: &scraper.ReaderResult{
		Content: "Title: 鶏の唐揚げ\n\n材料...",
		Title:   "鶏の唐揚げ",
	}}
	llm := &fakeExtractor{result: &LLMExtraction{
		Title:           "鶏の唐揚げ",
		SourceName:      "Example",
		MainIngredients: []string{"鶏もも肉"},
	}}
	svc := NewParseService(fetcher, reader, llm, emptyMatcher(), nil)

	parsed, err := svc.Parse(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Draft.Title != "鶏の唐揚げ" {
		t.Errorf("title = %q", parsed.Draft.Title)
	}
	if reader.calls != 1 || llm.calls != 1 {
		t.Errorf("blocked fetch must reach the reader path: reader=%d llm=%d", reader.calls, llm.calls)
	}
}

func TestParseVideoURLSkipsLLM(t *testing.T) {
	fetcher := &fakeFetcher{err: &scraper.FetchError{Message: "refused"}}
	reader := &fakeReader{result: &scraper.ReaderResult{IsVideo: true}}
	llm := &fakeExtractor{}
	svc := NewParseService(fetcher, reader, llm, emptyMatcher(), nil)

	parsed, err := svc.Parse(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("video content must not be sent to the LLM, calls=%d", llm.calls)
	}
	if parsed.Draft.Title != "" {
		t.Errorf("expected empty draft, got title %q", parsed.Draft.Title)
	}
}

func TestParseEmptyDraftCarriesDomainName(t *testing.T) {
	fetcher := &fakeFetcher{html: "<html>no structured data</html>"}
	reader := &fakeReader{err: &scraper.ReaderError{StatusCode: 502}}
	llm := &fakeExtractor{}
	svc := NewParseService(fetcher, reader, llm, emptyMatcher(), nil)

	parsed, err := svc.Parse(context.Background(), "https://www.kurashiru.com/recipes/1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Draft.SourceName != "Kurashiru" {
		t.Errorf("sourceName = %q, want Kurashiru", parsed.Draft.SourceName)
	}
	if len(parsed.Draft.RawIngredients) != 0 || len(parsed.Ingredients) != 0 {
		t.Errorf("empty draft expected, got %+v", parsed)
	}
}

func TestParseRejectsEmptyLLMResult(t *testing.T) {
	fetcher := &fakeFetcher{err: &scraper.FetchError{StatusCode: http.StatusForbidden}}
	reader := &fakeReader{result: &scraper.ReaderResult{Content: "some text"}}
	llm := &fakeExtractor{result: &LLMExtraction{}}
	svc := NewParseService(fetcher, reader, llm, emptyMatcher(), nil)

	parsed, err := svc.Parse(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// LLM found nothing usable: fall through to the empty draft.
	if parsed.Draft.SourceName != "Example" {
		t.Errorf("sourceName = %q, want Example", parsed.Draft.SourceName)
	}
	if parsed.Draft.Title != "" {
		t.Errorf("title = %q, want empty", parsed.Draft.Title)
	}
}

func TestParseCacheHitSkipsExtraction(t *testing.T) {
	cached := &ParsedRecipe{Draft: Draft{Title: "キャッシュ済み"}}
	cache := &fakeDraftCache{entries: map[string]*ParsedRecipe{
		"https://example.com/r": cached,
	}}
	fetcher := &fakeFetcher{html: jsonLDPage}
	svc := NewParseService(fetcher, &fakeReader{}, &fakeExtractor{}, emptyMatcher(), cache)

	parsed, err := svc.Parse(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != cached {
		t.Error("cache hit must return the cached result")
	}
	if fetcher.calls != 0 {
		t.Errorf("cache hit must skip fetching, calls=%d", fetcher.calls)
	}
}

func TestParseStoresResultInCache(t *testing.T) {
	cache := &fakeDraftCache{}
	fetcher := &fakeFetcher{html: jsonLDPage}
	svc := NewParseService(fetcher, &fakeReader{}, &fakeExtractor{}, emptyMatcher(), cache)

	if _, err := svc.Parse(context.Background(), "https://example.com/r"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache store, got %d", cache.sets)
	}
}
