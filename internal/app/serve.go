package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/octmarker/ainews/internal/cache"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
	"github.com/octmarker/ainews/internal/render"
)

// pageCacheTTL keeps the serve mode from re-probing the repository on every
// page view. Candidate files change at most once a day.
const pageCacheTTL = 10 * time.Minute

// Serve runs the digest page with health and metrics endpoints. Blocks
// until the listener fails.
func (a *App) Serve() error {
	pageCache := cache.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/", a.digestHandler(pageCache))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	logger.Info("Starting digest server", "addr", a.cfg.ServeAddr)
	return http.ListenAndServe(a.cfg.ServeAddr, mux)
}

func (a *App) digestHandler(pageCache *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		key := pageCache.GenerateKey("digest", time.Now().In(jst).Format("2006-01-02"))
		if cached, ok := pageCache.Get(key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(cached.(string)))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), a.cfg.RequestTimeout)
		defer cancel()

		res, articles, err := a.resolveArticles(ctx)
		if err != nil {
			logger.Error("Digest page resolve failed", "error", err)
			http.Error(w, "no candidate files available", http.StatusServiceUnavailable)
			return
		}

		digest := render.NewDigest(res.Date, string(res.Format), articles, time.Now().In(jst))

		var buf bytes.Buffer
		if err := digest.WritePage(&buf); err != nil {
			logger.Error("Digest page render failed", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}

		pageCache.Set(key, buf.String(), pageCacheTTL)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
