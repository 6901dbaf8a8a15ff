package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresCache keeps seen articles and summary cache in PostgreSQL. Used
// when DATABASE_URL is set; survives redeploys unlike the file cache.
type PostgresCache struct {
	db       *sql.DB
	ttlHours int
}

// SummaryCacheItem is a cached Japanese summary for one article.
type SummaryCacheItem struct {
	ContentHash string
	Title       string
	Content     string
	SummaryJA   string
	AIProvider  string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	UseCount    int
}

func NewPostgresCache(connectionString string, ttlHours int) (*PostgresCache, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	cache := &PostgresCache{db: db, ttlHours: ttlHours}
	if err := cache.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	log.Println("postgres cache connected")
	return cache, nil
}

func (pc *PostgresCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_articles (
		id SERIAL PRIMARY KEY,
		hash VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		category VARCHAR(50),
		source VARCHAR(100),
		seen_at TIMESTAMP NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_seen_articles_hash ON seen_articles(hash);
	CREATE INDEX IF NOT EXISTS idx_seen_articles_seen_at ON seen_articles(seen_at);
	CREATE INDEX IF NOT EXISTS idx_seen_articles_url ON seen_articles(url);

	CREATE TABLE IF NOT EXISTS summary_cache (
		id SERIAL PRIMARY KEY,
		content_hash VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		summary_ja TEXT,
		ai_provider VARCHAR(50),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		last_used_at TIMESTAMP NOT NULL DEFAULT NOW(),
		use_count INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_summary_cache_hash ON summary_cache(content_hash);
	CREATE INDEX IF NOT EXISTS idx_summary_cache_created_at ON summary_cache(created_at);
	`

	if _, err := pc.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}
	return nil
}

// IsSeen checks if the article was already published within the TTL window.
func (pc *PostgresCache) IsSeen(hash string) bool {
	cutoffTime := time.Now().Add(-time.Duration(pc.ttlHours) * time.Hour)

	var count int
	err := pc.db.QueryRow(`SELECT COUNT(*) FROM seen_articles WHERE hash = $1 AND seen_at > $2`,
		hash, cutoffTime).Scan(&count)
	if err != nil {
		log.Printf("error checking duplicate: %v", err)
		return false
	}
	return count > 0
}

// IsURLSeen checks the exact URL too, as a safety net for retitled reposts.
func (pc *PostgresCache) IsURLSeen(url string) bool {
	cutoffTime := time.Now().Add(-time.Duration(pc.ttlHours) * time.Hour)

	var count int
	err := pc.db.QueryRow(`SELECT COUNT(*) FROM seen_articles WHERE url = $1 AND seen_at > $2`,
		url, cutoffTime).Scan(&count)
	if err != nil {
		log.Printf("error checking url duplicate: %v", err)
		return false
	}
	return count > 0
}

// MarkSeen records an article as published. ON CONFLICT keeps concurrent
// runs from racing.
func (pc *PostgresCache) MarkSeen(hash, title, url, category, source string) error {
	query := `
		INSERT INTO seen_articles (hash, title, url, category, source, seen_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (hash) DO UPDATE SET seen_at = NOW()
	`
	if _, err := pc.db.Exec(query, hash, title, url, category, source); err != nil {
		return fmt.Errorf("failed to mark as seen: %v", err)
	}
	return nil
}

// Cleanup removes rows older than retentionHours. Zero falls back to the
// duplicate-detection window.
func (pc *PostgresCache) Cleanup(retentionHours int) error {
	if retentionHours <= 0 {
		retentionHours = pc.ttlHours
	}
	cutoffTime := time.Now().Add(-time.Duration(retentionHours) * time.Hour)

	result, err := pc.db.Exec(`DELETE FROM seen_articles WHERE seen_at < $1`, cutoffTime)
	if err != nil {
		return fmt.Errorf("failed to cleanup: %v", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		log.Printf("cleaned up %d old records", rows)
	}

	if _, err := pc.db.Exec(`DELETE FROM summary_cache WHERE last_used_at < $1`, cutoffTime); err != nil {
		return fmt.Errorf("failed to cleanup summary cache: %v", err)
	}
	return nil
}

// GetStats returns cache statistics including per-category counts.
func (pc *PostgresCache) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	if err := pc.db.QueryRow(`SELECT COUNT(*) FROM seen_articles`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total_items"] = total

	cutoffTime := time.Now().Add(-time.Duration(pc.ttlHours) * time.Hour)
	var active int
	if err := pc.db.QueryRow(`SELECT COUNT(*) FROM seen_articles WHERE seen_at > $1`, cutoffTime).Scan(&active); err != nil {
		return nil, err
	}
	stats["active_items"] = active

	rows, err := pc.db.Query(`
		SELECT category, COUNT(*)
		FROM seen_articles
		WHERE seen_at > $1
		GROUP BY category
	`, cutoffTime)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var category string
			var count int
			if err := rows.Scan(&category, &count); err == nil {
				stats["category_"+category] = count
			}
		}
	}

	return stats, nil
}

// GetRecent returns the most recently seen articles, newest first.
func (pc *PostgresCache) GetRecent(limit int) ([]SeenItem, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := pc.db.Query(`
		SELECT hash, title, url, category, source, seen_at
		FROM seen_articles
		ORDER BY seen_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SeenItem
	for rows.Next() {
		var item SeenItem
		if err := rows.Scan(&item.Hash, &item.Title, &item.URL, &item.Category, &item.Source, &item.SeenAt); err != nil {
			log.Printf("error scanning row: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (pc *PostgresCache) Close() error {
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}

// GetSummaryCache retrieves a cached summary; a zero-value item means miss.
func (pc *PostgresCache) GetSummaryCache(contentHash string) (SummaryCacheItem, error) {
	var item SummaryCacheItem

	err := pc.db.QueryRow(`
		SELECT content_hash, title, content, summary_ja, ai_provider, created_at, last_used_at, use_count
		FROM summary_cache
		WHERE content_hash = $1
	`, contentHash).Scan(
		&item.ContentHash, &item.Title, &item.Content, &item.SummaryJA,
		&item.AIProvider, &item.CreatedAt, &item.LastUsedAt, &item.UseCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return item, nil
		}
		return item, fmt.Errorf("failed to get summary from cache: %v", err)
	}
	return item, nil
}

// SetSummaryCache stores a summary, bumping use_count on repeats.
func (pc *PostgresCache) SetSummaryCache(item SummaryCacheItem) error {
	query := `
		INSERT INTO summary_cache (content_hash, title, content, summary_ja, ai_provider, created_at, last_used_at, use_count)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW(), 1)
		ON CONFLICT (content_hash) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			summary_ja = EXCLUDED.summary_ja,
			ai_provider = EXCLUDED.ai_provider,
			last_used_at = NOW(),
			use_count = summary_cache.use_count + 1
	`
	if _, err := pc.db.Exec(query, item.ContentHash, item.Title, item.Content, item.SummaryJA, item.AIProvider); err != nil {
		return fmt.Errorf("failed to set summary cache: %v", err)
	}
	return nil
}
