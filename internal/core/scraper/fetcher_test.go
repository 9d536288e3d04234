package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

func testScraperConfig(timeout time.Duration) *config.ScraperConfig {
	return &config.ScraperConfig{
		FetchTimeout:     timeout,
		UserAgent:        "test-agent",
		ContentMaxLength: 8000,
	}
}

func TestFetcherReturnsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("user agent = %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testScraperConfig(5 * time.Second))
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.HTML != "<html>ok</html>" {
		t.Errorf("html = %q", result.HTML)
	}
}

func TestFetcherBlockedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(testScraperConfig(5 * time.Second))
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 403")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type %T, want *FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusForbidden {
		t.Errorf("statusCode = %d", fetchErr.StatusCode)
	}
	if !fetchErr.Blocked() {
		t.Error("403 must report Blocked")
	}
}

func TestFetcherNotBlockedOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(testScraperConfig(5 * time.Second))
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type %T, want *FetchError", err)
	}
	if fetchErr.Blocked() {
		t.Error("500 must not report Blocked")
	}
}

func TestFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewFetcher(testScraperConfig(20 * time.Millisecond))
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type %T, want *FetchError", err)
	}
	if !fetchErr.TimedOut {
		t.Errorf("expected TimedOut, got %+v", fetchErr)
	}
}
