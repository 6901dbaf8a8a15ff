// Package resolver locates the most recent candidate payload. Each calendar
// day can be published in two interchangeable formats; the resolver walks a
// bounded window of days back from today and returns the first hit.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
)

// Format tags which payload shape a probe produced.
type Format string

const (
	FormatStructured Format = "structured"
	FormatTextual    Format = "textual"
)

// Candidate files are published on JST days, so the probe dates are too.
var jst = time.FixedZone("JST", 9*60*60)

// FetchResult is the transient product of one successful probe. It is handed
// straight to the matching normalizer and then discarded.
type FetchResult struct {
	Payload []byte
	Date    string // YYYY-MM-DD
	Format  Format
}

// NotFoundError reports that every date/format in the lookback window failed.
type NotFoundError struct {
	Window int // number of dates probed
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no candidate files found within the last %d days", e.Window)
}

// Doer is the injected transport capability. http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver probes {BaseURL}/{date}-candidates.json then .md, newest date
// first. Structured is always tried before textual for the same date.
type Resolver struct {
	BaseURL  string
	Client   Doer
	Lookback int              // days probed after today; default 3
	Now      func() time.Time // test hook; defaults to time.Now
}

func New(baseURL string, client Doer) *Resolver {
	return &Resolver{
		BaseURL:  baseURL,
		Client:   client,
		Lookback: 3,
	}
}

// Resolve returns the freshest available payload. Probe failures (transport
// errors, non-2xx, malformed JSON) are routine and only logged; the sole hard
// failure is *NotFoundError after the window is exhausted. Cancelling ctx
// aborts the in-flight probe and skips the rest.
func (r *Resolver) Resolve(ctx context.Context) (*FetchResult, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	today := now().In(jst)

	lookback := r.Lookback
	if lookback < 0 {
		lookback = 0
	}

	for daysAgo := 0; daysAgo <= lookback; daysAgo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := today.AddDate(0, 0, -daysAgo).Format("2006-01-02")

		body, err := r.fetch(ctx, fmt.Sprintf("%s/%s-candidates.json", r.BaseURL, date))
		if err == nil {
			if json.Valid(body) {
				logger.Info("resolved candidates", "date", date, "format", FormatStructured)
				return &FetchResult{Payload: body, Date: date, Format: FormatStructured}, nil
			}
			err = fmt.Errorf("payload is not valid JSON")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("structured probe failed", "date", date, "error", err)
		metrics.Global.IncrementFallbacksToTextual()

		body, err = r.fetch(ctx, fmt.Sprintf("%s/%s-candidates.md", r.BaseURL, date))
		if err == nil {
			logger.Info("resolved candidates", "date", date, "format", FormatTextual)
			return &FetchResult{Payload: body, Date: date, Format: FormatTextual}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("textual probe failed", "date", date, "error", err)
	}

	return nil, &NotFoundError{Window: lookback + 1}
}

// fetch performs one probe. Any non-2xx status is reported the same way as a
// transport error: the caller must not tell a 404 apart from a timeout.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	metrics.Global.IncrementProbesAttempted()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.Global.IncrementProbesFailed()
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		metrics.Global.IncrementProbesFailed()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Global.IncrementProbesFailed()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.Global.IncrementProbesFailed()
		return nil, err
	}

	return body, nil
}
