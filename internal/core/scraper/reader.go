package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

// videoHosts are sites whose pages carry no recipe text worth proxying.
// The reader short-circuits them so the caller can go straight to the
// LLM strategy (or give up).
var videoHosts = []string{"youtube.com", "youtu.be", "instagram.com", "tiktok.com"}

var titleLinePattern = regexp.MustCompile(`(?m)^Title:\s*(.+)$`)

// ReaderError reports a failed proxy read.
type ReaderError struct {
	StatusCode int
	TimedOut   bool
}

func (e *ReaderError) Error() string {
	if e.TimedOut {
		return "reader request timed out"
	}
	return fmt.Sprintf("reader failed: %d", e.StatusCode)
}

// ReaderResult is the plain-text rendering of a page.
type ReaderResult struct {
	Content string
	Title   string
	IsVideo bool
}

// Reader fetches a text rendering of a page through a reader proxy,
// for sites that block direct fetches.
type Reader struct {
	client  *resty.Client
	baseURL string
}

// NewReader creates a reader client from the reader section.
func NewReader(cfg *config.ReaderConfig) *Reader {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "text/plain").
		SetHeader("User-Agent", "RecipeApp/1.0")

	return &Reader{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Read proxies url through the reader and extracts the page title from the
// "Title:" line of the rendered text. Video-host URLs return IsVideo without
// any network call.
func (r *Reader) Read(ctx context.Context, url string) (*ReaderResult, error) {
	if isVideoURL(url) {
		return &ReaderResult{IsVideo: true}, nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		Get(r.baseURL + "/" + url)

	if err != nil {
		if isTimeout(err) {
			return nil, &ReaderError{TimedOut: true}
		}
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &ReaderError{StatusCode: resp.StatusCode()}
	}

	content := string(resp.Body())
	return &ReaderResult{
		Content: content,
		Title:   extractTitleLine(content),
	}, nil
}

func isVideoURL(url string) bool {
	for _, host := range videoHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

func extractTitleLine(content string) string {
	m := titleLinePattern.FindStringSubmatch(content)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
