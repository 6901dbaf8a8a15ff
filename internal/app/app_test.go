package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/octmarker/ainews/internal/candidates"
	"github.com/octmarker/ainews/internal/config"
	"github.com/octmarker/ainews/internal/storage"
)

func TestSortByCategory(t *testing.T) {
	entries := []candidates.Entry{
		{Title: "rates", Category: "経済・金融"},
		{Title: "llm", Category: "AI・テクノロジー"},
		{Title: "odd", Category: "歴史・考古学"},
		{Title: "election", Category: "政治・政策"},
		{Title: "gpu", Category: "AI・テクノロジー"},
	}

	sorted := sortByCategory(entries)

	want := []string{"llm", "gpu", "rates", "election", "odd"}
	for i, title := range want {
		if sorted[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, sorted[i].Title, title)
		}
	}
}

func TestFilterSeen(t *testing.T) {
	fc := storage.NewFileCache(filepath.Join(t.TempDir(), "seen.json"), 48)
	a := &App{cfg: &config.Config{}, seen: fc}

	entries := []candidates.Entry{
		{Title: "already published", URL: "https://example.com/old"},
		{Title: "brand new", URL: "https://example.com/new"},
	}

	hash := storage.GenerateHash("already published", "https://example.com/old")
	if err := fc.MarkSeen(hash, "already published", "https://example.com/old", "", ""); err != nil {
		t.Fatal(err)
	}

	kept := a.filterSeen(entries)
	if len(kept) != 1 || kept[0].Title != "brand new" {
		t.Fatalf("kept = %+v, want only the new entry", kept)
	}
}

func TestNewAppliesRetryConfig(t *testing.T) {
	cfg := &config.Config{
		GitHubToken:      "token",
		GitHubRepository: "octmarker/ai-news-bot",
		GitHubBranch:     "main",
		RetryAttempts:    5,
		RetryDelay:       250 * time.Millisecond,
		CacheFilePath:    filepath.Join(t.TempDir(), "seen.json"),
		DuplicateWindow:  48,
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.pub.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", a.pub.Retry.MaxAttempts)
	}
	if a.pub.Retry.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %v, want 250ms", a.pub.Retry.Delay)
	}
	if !a.pub.Retry.Backoff {
		t.Error("Backoff should be enabled")
	}
}

func TestNewSeenCacheFallsBackToFile(t *testing.T) {
	cfg := &config.Config{
		CacheFilePath:   filepath.Join(t.TempDir(), "seen.json"),
		DuplicateWindow: 48,
	}
	if _, ok := newSeenCache(cfg).(*storage.FileCache); !ok {
		t.Error("without DATABASE_URL the file cache should be used")
	}
}

func TestHealthEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK && rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = httptest.NewRecorder()
	metricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
