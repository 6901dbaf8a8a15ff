package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/octmarker/ainews/internal/retry"
)

func testClient(serverURL string) *Client {
	c := NewClient("test-token", "octmarker/ai-news-bot")
	c.BaseURL = serverURL
	c.Retry = retry.RetryConfig{MaxAttempts: 1, Delay: time.Millisecond}
	return c
}

func TestPublishCreatesNewFile(t *testing.T) {
	var gotPut putRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing auth header")
		}
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&gotPut); err != nil {
				t.Fatalf("decode PUT body: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.Publish(context.Background(), "news/2026-08-26-candidates.md", "# 📰 ニュース候補", "Add news candidates for 2026-08-26")
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	if gotPut.SHA != "" {
		t.Errorf("create should not carry a sha, got %q", gotPut.SHA)
	}
	decoded, err := base64.StdEncoding.DecodeString(gotPut.Content)
	if err != nil {
		t.Fatalf("content is not base64: %v", err)
	}
	if string(decoded) != "# 📰 ニュース候補" {
		t.Errorf("decoded content = %q", decoded)
	}
	if gotPut.Branch != "main" {
		t.Errorf("Branch = %q", gotPut.Branch)
	}
}

func TestPublishUpdatesExistingFile(t *testing.T) {
	var gotPut putRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(contentsResponse{SHA: "abc123"})
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&gotPut)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Publish(context.Background(), "news/2026-08-26-candidates.json", "{}", "update"); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if gotPut.SHA != "abc123" {
		t.Errorf("update must carry the existing sha, got %q", gotPut.SHA)
	}
}

func TestPublishSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Publish(context.Background(), "news/x.md", "x", "m"); err == nil {
		t.Error("expected error on 422 response")
	}
}

func TestFetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/octmarker/ai-news-bot/contents/user_preferences.json" {
			json.NewEncoder(w).Encode(contentsResponse{
				SHA:     "def",
				Content: base64.StdEncoding.EncodeToString([]byte(`{"search_config":{}}`)),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	got, err := c.FetchFile(context.Background(), "user_preferences.json")
	if err != nil {
		t.Fatalf("FetchFile() error: %v", err)
	}
	if got != `{"search_config":{}}` {
		t.Errorf("content = %q", got)
	}

	missing, err := c.FetchFile(context.Background(), "absent.json")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if missing != "" {
		t.Errorf("missing file content = %q, want empty", missing)
	}
}
