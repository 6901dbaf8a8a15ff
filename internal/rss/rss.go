package rss

import (
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/octmarker/ainews/internal/candidates"
	"github.com/octmarker/ainews/internal/logger"
)

// Feed is one subscribed source. Category must be a key of the category
// table; empty means the fallback bucket.
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// FeedsConfig is the YAML config structure:
//
//	feeds:
//	  - name: TechCrunch
//	    url: https://techcrunch.com/feed/
//	    category: AI・テクノロジー
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads the RSS feeds list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// FetchAll downloads and parses all feeds and returns candidate entries.
// A broken feed is logged and skipped, never fatal.
func FetchAll(feeds []Feed, maxPerFeed int) []candidates.Entry {
	parser := gofeed.NewParser()
	var entries []candidates.Entry
	successCount := 0

	for _, feed := range feeds {
		parsed, err := parser.ParseURL(feed.URL)
		if err != nil {
			logger.Warn("error parsing RSS feed", "url", feed.URL, "error", err)
			continue
		}

		count := 0
		for _, item := range parsed.Items {
			if maxPerFeed > 0 && count >= maxPerFeed {
				break
			}
			if item.Title == "" || item.Link == "" {
				continue
			}

			source := feed.Name
			if source == "" {
				source = parsed.Title
			}

			published := ""
			if item.PublishedParsed != nil {
				published = item.PublishedParsed.UTC().Format(time.RFC3339)
			}

			entries = append(entries, candidates.Entry{
				Title:       item.Title,
				Source:      source,
				URL:         item.Link,
				Category:    feed.Category,
				PublishedAt: published,
				Description: item.Description,
			})
			count++
		}

		successCount++
		logger.Debug("loaded feed", "url", feed.URL, "items", count)
	}

	logger.Info("processed RSS feeds", "ok", successCount, "total", len(feeds))
	return entries
}
