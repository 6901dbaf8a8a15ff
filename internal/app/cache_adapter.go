package app

import (
	"github.com/octmarker/ainews/internal/config"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/storage"
)

// SeenCache is the duplicate-detection capability the collect run needs.
// Both storage backends satisfy it.
type SeenCache interface {
	IsSeen(hash string) bool
	MarkSeen(hash, title, url, category, source string) error
	Cleanup(retentionHours int) error
	Close() error
}

// newSeenCache picks PostgreSQL when DATABASE_URL is set, otherwise the
// JSON file cache. Postgres connection failures fall back to the file so a
// broken database never blocks the daily run.
func newSeenCache(cfg *config.Config) SeenCache {
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresCache(cfg.DatabaseURL, cfg.DuplicateWindow)
		if err == nil {
			return pg
		}
		logger.Error("Postgres cache unavailable, falling back to file cache", "error", err)
	}

	fc := storage.NewFileCache(cfg.CacheFilePath, cfg.DuplicateWindow)
	if err := fc.Load(); err != nil {
		logger.Warn("Failed to load seen cache, starting empty", "error", err)
	}
	return fc
}
