package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fixedNow pins "today" so the probed dates are deterministic.
var fixedNow = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T, files map[string]string) (*Resolver, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	r := New(srv.URL+"/news", srv.Client())
	r.Now = func() time.Time { return fixedNow }
	return r, srv
}

// "today" in JST for the pinned instant: UTC 10:00 is JST 19:00 same day.
const (
	day0 = "2026-08-26"
	day1 = "2026-08-25"
	day2 = "2026-08-24"
)

func TestResolvePrefersStructuredForSameDate(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		"/news/" + day0 + "-candidates.json": `{"articles":[]}`,
		"/news/" + day0 + "-candidates.md":   "# 📰 ニュース候補",
	})

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Format != FormatStructured {
		t.Errorf("Format = %q, want %q", res.Format, FormatStructured)
	}
	if res.Date != day0 {
		t.Errorf("Date = %q, want %q", res.Date, day0)
	}
}

func TestResolveFallsBackToOlderStructured(t *testing.T) {
	// Today and yesterday missing entirely, day-2 has structured: the probe
	// must land there and never on a textual counterpart.
	r, _ := newTestResolver(t, map[string]string{
		"/news/" + day2 + "-candidates.json": `{"articles":[{"number":1,"title":"t"}]}`,
		"/news/" + day2 + "-candidates.md":   "1. t",
	})

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Date != day2 {
		t.Errorf("Date = %q, want %q", res.Date, day2)
	}
	if res.Format != FormatStructured {
		t.Errorf("Format = %q, want %q", res.Format, FormatStructured)
	}
}

func TestResolveFallsBackToTextualSameDay(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		"/news/" + day1 + "-candidates.md": "1. タイトル",
	})

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Format != FormatTextual {
		t.Errorf("Format = %q, want %q", res.Format, FormatTextual)
	}
	if res.Date != day1 {
		t.Errorf("Date = %q, want %q", res.Date, day1)
	}
	if string(res.Payload) != "1. タイトル" {
		t.Errorf("Payload = %q", res.Payload)
	}
}

func TestResolveInvalidJSONFallsToTextual(t *testing.T) {
	// The structured file exists but does not deserialize; the same date's
	// textual file must win before any older date is considered.
	r, _ := newTestResolver(t, map[string]string{
		"/news/" + day0 + "-candidates.json": `{"articles": [truncated`,
		"/news/" + day0 + "-candidates.md":   "1. タイトル",
		"/news/" + day1 + "-candidates.json": `{"articles":[]}`,
	})

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Date != day0 || res.Format != FormatTextual {
		t.Errorf("got (%q, %q), want (%q, %q)", res.Date, res.Format, day0, FormatTextual)
	}
}

func TestResolveExhaustionReturnsNotFound(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{})

	_, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error type = %T, want *NotFoundError", err)
	}
	if nf.Window != 4 {
		t.Errorf("Window = %d, want 4", nf.Window)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		"/news/" + day0 + "-candidates.json": `{"articles":[]}`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestResolveDatesAreJST(t *testing.T) {
	// 2026-08-26 23:00 UTC is already 2026-08-27 in JST.
	r, _ := newTestResolver(t, map[string]string{
		"/news/2026-08-27-candidates.json": `{"articles":[]}`,
	})
	r.Now = func() time.Time { return time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC) }

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res.Date != "2026-08-27" {
		t.Errorf("Date = %q, want JST day 2026-08-27", res.Date)
	}
}
