package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// FetchError reports a failed page fetch with enough detail for the caller
// to decide whether to fall through to the next extraction strategy.
type FetchError struct {
	StatusCode int
	TimedOut   bool
	Message    string
}

func (e *FetchError) Error() string {
	if e.TimedOut {
		return "request timed out"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return e.Message
}

// Blocked reports whether the site refused us outright. Blocked fetches are
// expected for bot-hostile hosts and are logged at a lower severity.
func (e *FetchError) Blocked() bool {
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusUnavailableForLegalReasons
}

// FetchResult is the raw page a fetch produced.
type FetchResult struct {
	HTML        string
	ContentType string
}

// Fetcher retrieves recipe pages directly with a browser-like identity.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher creates a page fetcher configured from the scraper section.
func NewFetcher(cfg *config.ScraperConfig) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "ja,en;q=0.9").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Fetcher{client: client}
}

// Fetch retrieves the page at url. Non-2xx responses and timeouts come back
// as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &FetchError{TimedOut: true}
		}
		return nil, &FetchError{Message: err.Error()}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		fetchErr := &FetchError{StatusCode: resp.StatusCode()}
		if fetchErr.Blocked() {
			common.LogDebug("site blocked direct fetch",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode()))
		}
		return nil, fetchErr
	}

	return &FetchResult{
		HTML:        string(resp.Body()),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}
