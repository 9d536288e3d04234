package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

func TestReaderExtractsTitleLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Title: 基本の肉じゃが\n\nURL Source: https://example.com/r\n\n材料\n- じゃがいも 3個\n"))
	}))
	defer srv.Close()

	rd := NewReader(&config.ReaderConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	result, err := rd.Read(context.Background(), "https://example.com/r")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if result.Title != "基本の肉じゃが" {
		t.Errorf("title = %q", result.Title)
	}
	if result.IsVideo {
		t.Error("regular page reported as video")
	}
	if result.Content == "" {
		t.Error("empty content")
	}
}

func TestReaderVideoShortCircuit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	rd := NewReader(&config.ReaderConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	for _, url := range []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
		"https://www.instagram.com/reel/xyz/",
		"https://www.tiktok.com/@u/video/1",
	} {
		result, err := rd.Read(context.Background(), url)
		if err != nil {
			t.Fatalf("Read(%q): %v", url, err)
		}
		if !result.IsVideo {
			t.Errorf("Read(%q): IsVideo = false", url)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("video URLs must not reach the proxy, saw %d requests", n)
	}
}

func TestReaderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rd := NewReader(&config.ReaderConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := rd.Read(context.Background(), "https://example.com/r")

	var readerErr *ReaderError
	if !errors.As(err, &readerErr) {
		t.Fatalf("error type %T, want *ReaderError", err)
	}
	if readerErr.StatusCode != http.StatusBadGateway {
		t.Errorf("statusCode = %d", readerErr.StatusCode)
	}
}

func TestExtractTitleLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"first line", "Title: カレーライス\nbody", "カレーライス"},
		{"mid document", "header\nTitle: シチュー\nbody", "シチュー"},
		{"absent", "no title here", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitleLine(tt.content); got != tt.want {
				t.Errorf("extractTitleLine = %q, want %q", got, tt.want)
			}
		})
	}
}
