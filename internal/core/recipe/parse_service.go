package recipe

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/core/scraper"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// PageFetcher retrieves raw HTML directly.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scraper.FetchResult, error)
}

// PageReader retrieves a plain-text rendering through the reader proxy.
type PageReader interface {
	Read(ctx context.Context, url string) (*scraper.ReaderResult, error)
}

// RecipeExtractor is the LLM fallback strategy.
type RecipeExtractor interface {
	Extract(ctx context.Context, content, sourceURL string) (*LLMExtraction, error)
}

// DraftCache keeps parse results keyed by URL. A miss is (nil, nil).
type DraftCache interface {
	Get(ctx context.Context, url string) (*ParsedRecipe, error)
	Set(ctx context.Context, url string, parsed *ParsedRecipe) error
}

// ParseService turns a URL into a draft with resolved ingredients by
// trying extraction strategies in a fixed order: direct fetch with the two
// structured extractors, then the reader proxy feeding the LLM extractor,
// then an empty draft the user can fill in manually.
type ParseService struct {
	fetcher PageFetcher
	reader  PageReader
	llm     RecipeExtractor
	matcher *Matcher
	cache   DraftCache
}

// NewParseService wires the extraction chain. cache may be nil.
func NewParseService(fetcher PageFetcher, reader PageReader, llm RecipeExtractor, matcher *Matcher, cache DraftCache) *ParseService {
	return &ParseService{
		fetcher: fetcher,
		reader:  reader,
		llm:     llm,
		matcher: matcher,
		cache:   cache,
	}
}

// Parse resolves url into a ParsedRecipe. It never fails outright on
// extraction problems: the terminal fallback is an empty draft carrying
// only a source name derived from the URL host.
func (s *ParseService) Parse(ctx context.Context, url string) (*ParsedRecipe, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, url)
		if err != nil {
			common.LogWarn("draft cache lookup failed", zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	draft := s.extractDraft(ctx, url)

	matches, err := s.matcher.MatchIngredients(ctx, draft.RawIngredients, "")
	if err != nil {
		return nil, err
	}

	parsed := &ParsedRecipe{Draft: draft, Ingredients: matches}

	if s.cache != nil {
		if err := s.cache.Set(ctx, url, parsed); err != nil {
			common.LogWarn("draft cache store failed", zap.Error(err))
		}
	}
	return parsed, nil
}

// extractDraft walks the strategy chain. Each stage either yields a usable
// draft or hands over to the next; a blocked direct fetch (403/451) is
// expected and only skips the structured extractors, since the reader
// proxy may still succeed.
func (s *ParseService) extractDraft(ctx context.Context, url string) Draft {
	if html := s.fetchHTML(ctx, url); html != "" {
		if ext := scraper.ExtractRecipeFromJSONLD(html, url); ext != nil {
			common.LogInfo("recipe extracted from JSON-LD", zap.String("url", url))
			return draftFromExtraction(ext)
		}
		if ext := scraper.ExtractRecipeFromNextData(html); ext != nil {
			common.LogInfo("recipe extracted from __NEXT_DATA__", zap.String("url", url))
			return draftFromExtraction(ext)
		}
	}

	if draft := s.extractViaReader(ctx, url); draft != nil {
		return *draft
	}

	common.LogInfo("all extraction strategies failed, returning empty draft",
		zap.String("url", url))
	return Draft{SourceName: scraper.DomainName(url)}
}

func (s *ParseService) fetchHTML(ctx context.Context, url string) string {
	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		var fetchErr *scraper.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Blocked() {
			common.LogInfo("direct fetch blocked, will try reader proxy",
				zap.String("url", url),
				zap.Int("status", fetchErr.StatusCode))
		} else {
			common.LogWarn("direct fetch failed",
				zap.String("url", url),
				zap.Error(err))
		}
		return ""
	}
	return result.HTML
}

func (s *ParseService) extractViaReader(ctx context.Context, url string) *Draft {
	result, err := s.reader.Read(ctx, url)
	if err != nil {
		common.LogWarn("reader proxy failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	if result.IsVideo || result.Content == "" {
		return nil
	}

	ext, err := s.llm.Extract(ctx, result.Content, url)
	if err != nil {
		common.LogWarn("LLM extraction failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	if ext.Title == "" && len(ext.MainIngredients) == 0 {
		return nil
	}

	common.LogInfo("recipe extracted via LLM", zap.String("url", url))
	return &Draft{
		Title:              ext.Title,
		SourceName:         ext.SourceName,
		ImageURL:           ext.ImageURL,
		RawIngredients:     ext.MainIngredients,
		CookingTimeMinutes: ext.CookingTimeMinutes,
	}
}

func draftFromExtraction(ext *scraper.Extraction) Draft {
	return Draft{
		Title:              ext.Title,
		SourceName:         ext.SourceName,
		ImageURL:           ext.ImageURL,
		RawIngredients:     ext.Ingredients,
		CookingTimeMinutes: ext.CookingTimeMinutes,
	}
}
