// Package storage remembers which articles were already offered as
// candidates so the same story is not proposed on consecutive days, and
// caches generated Japanese summaries.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// SeenItem is an article that already appeared in a published candidate file.
type SeenItem struct {
	Hash     string    `json:"hash"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
	SeenAt   time.Time `json:"seen_at"`
	Source   string    `json:"source"`
}

// FileCache keeps seen items in a JSON file.
type FileCache struct {
	filePath string
	ttlHours int
	items    map[string]SeenItem
	mu       sync.RWMutex
}

func NewFileCache(filePath string, ttlHours int) *FileCache {
	return &FileCache{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]SeenItem),
	}
}

// Load reads the cache file, dropping entries past TTL. A missing file
// starts an empty cache.
func (fc *FileCache) Load() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, err := os.Stat(fc.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to read cache file: %v", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal cache: %v", err)
	}

	cutoffTime := time.Now().Add(-time.Duration(fc.ttlHours) * time.Hour)
	for _, item := range items {
		if item.SeenAt.After(cutoffTime) {
			fc.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the current cache to disk.
func (fc *FileCache) Save() error {
	fc.mu.RLock()
	items := make([]SeenItem, 0, len(fc.items))
	for _, item := range fc.items {
		items = append(items, item)
	}
	fc.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %v", err)
	}
	if err := os.WriteFile(fc.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %v", err)
	}
	return nil
}

// GenerateHash creates a stable hash from the normalized title plus the
// link's domain, so minor URL variations still dedupe.
func GenerateHash(title, link string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedTitle = strings.Join(strings.Fields(normalizedTitle), " ")

	h := sha256.New()
	h.Write([]byte(normalizedTitle + "|" + extractDomain(link)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// IsSeen reports whether the article was already published within the TTL
// window.
func (fc *FileCache) IsSeen(hash string) bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	item, exists := fc.items[hash]
	if !exists {
		return false
	}

	cutoffTime := time.Now().Add(-time.Duration(fc.ttlHours) * time.Hour)
	return item.SeenAt.After(cutoffTime)
}

// MarkSeen records an article as published.
func (fc *FileCache) MarkSeen(hash, title, url, category, source string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.items[hash] = SeenItem{
		Hash:     hash,
		Title:    title,
		URL:      url,
		Category: category,
		SeenAt:   time.Now(),
		Source:   source,
	}
	return nil
}

// Cleanup removes items older than retentionHours from memory. Zero falls
// back to the duplicate-detection window.
func (fc *FileCache) Cleanup(retentionHours int) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if retentionHours <= 0 {
		retentionHours = fc.ttlHours
	}
	cutoffTime := time.Now().Add(-time.Duration(retentionHours) * time.Hour)
	for hash, item := range fc.items {
		if item.SeenAt.Before(cutoffTime) {
			delete(fc.items, hash)
		}
	}
	return nil
}

// GetStats returns cache statistics.
func (fc *FileCache) GetStats() map[string]int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return map[string]int{
		"total_items": len(fc.items),
	}
}

func (fc *FileCache) Close() error {
	return fc.Save()
}

func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 {
		return "unknown"
	}

	domain := strings.TrimPrefix(parts[0], "www.")
	return strings.ToLower(domain)
}
