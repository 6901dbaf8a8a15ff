package gnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/octmarker/ainews/internal/retry"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{"AI"}, "AI"},
		{"multiple", []string{"AI", "LLM", "ChatGPT"}, "AI OR LLM OR ChatGPT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(tt.keywords); got != tt.want {
				t.Errorf("BuildSearchQuery(%v) = %q, want %q", tt.keywords, got, tt.want)
			}
		})
	}
}

const headlinesResponse = `{
	"totalArticles": 2,
	"articles": [
		{
			"title": "AIニュース",
			"description": "説明",
			"url": "https://example.test/a",
			"publishedAt": "2026-08-26T01:00:00Z",
			"source": {"name": "Example"}
		},
		{
			"title": "重複しない記事",
			"url": "https://example.test/b",
			"source": {}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 5*time.Second)
	c.HTTPClient = srv.Client()
	c.Retry = retry.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond}
	// Point the client at the test server by rewriting requests.
	c.HTTPClient.Transport = rewriteTransport{base: srv.URL}
	return c
}

type rewriteTransport struct {
	base string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target := rt.base + req.URL.Path + "?" + req.URL.RawQuery
	clone, err := http.NewRequestWithContext(req.Context(), req.Method, target, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultTransport.RoundTrip(clone)
}

func TestTopHeadlinesParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "technology" {
			t.Errorf("category param = %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey param = %q", got)
		}
		w.Write([]byte(headlinesResponse))
	})

	articles, err := c.TopHeadlines(context.Background(), "technology", 10)
	if err != nil {
		t.Fatalf("TopHeadlines() error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Source.Name != "Example" {
		t.Errorf("source = %q", articles[0].Source.Name)
	}
}

func TestCollectMultiCategoryDedupe(t *testing.T) {
	// Every category endpoint returns the same two articles; the collector
	// must keep each URL once and tag the first category that saw it.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(headlinesResponse))
	})

	entries := c.CollectMultiCategory(context.Background(), 10, nil)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 deduped", len(entries))
	}
	if entries[0].Category != "AI・テクノロジー" {
		t.Errorf("first category = %q", entries[0].Category)
	}
	if entries[1].Source != "不明" {
		t.Errorf("missing source name should use placeholder, got %q", entries[1].Source)
	}
}

func TestTopHeadlinesErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	if _, err := c.TopHeadlines(context.Background(), "technology", 5); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
