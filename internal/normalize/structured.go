// Package normalize converts raw candidate payloads, structured JSON or the
// legacy line-oriented markdown, into the canonical article list.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/octmarker/ainews/internal/article"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
	"github.com/octmarker/ainews/internal/resolver"
)

// Articles dispatches a fetch result to the matching normalizer variant.
func Articles(res *resolver.FetchResult) []article.Article {
	var list []article.Article
	switch res.Format {
	case resolver.FormatTextual:
		list = Textual(string(res.Payload))
	default:
		list = Structured(res.Payload)
	}
	metrics.Global.AddArticlesNormalized(len(list))
	return list
}

type structuredDocument struct {
	Articles []structuredEntry `json:"articles"`
}

type structuredEntry struct {
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Source      string        `json:"source"`
	URL         string        `json:"url"`
	Category    string        `json:"category"`
	PublishedAt string        `json:"published_at"`
	Summary     *entrySummary `json:"summary"`
	Description string        `json:"description"`
}

type entrySummary struct {
	SummaryJA string `json:"summary_ja"`
	Summary   string `json:"summary"`
}

// Structured normalizes a JSON candidate payload. It is deliberately
// permissive: a payload that does not parse, or parses without an articles
// array, yields an empty list instead of an error.
func Structured(payload []byte) []article.Article {
	var doc structuredDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		logger.Warn("malformed structured payload", "error", err)
		return []article.Article{}
	}

	articles := make([]article.Article, 0, len(doc.Articles))
	for i, entry := range doc.Articles {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		number := entry.Number
		if number <= 0 {
			number = i + 1
		}

		source := strings.TrimSpace(entry.Source)
		if source == "" {
			source = article.PlaceholderSource
		}

		url := strings.TrimSpace(entry.URL)
		if url == "" {
			url = article.PlaceholderURL
		}

		articles = append(articles, article.Article{
			Number:      number,
			Title:       title,
			Source:      source,
			Description: entry.description(),
			URL:         url,
			Category:    article.NormalizeCategory(entry.Category),
			Relevance:   article.Relevance(number),
			PublishedAt: entry.PublishedAt,
		})
	}

	return articles
}

// description picks the display text by fixed precedence: the Japanese
// summary, then the generic summary, then the legacy flat description.
func (e structuredEntry) description() string {
	if e.Summary != nil {
		if s := strings.TrimSpace(e.Summary.SummaryJA); s != "" {
			return s
		}
		if s := strings.TrimSpace(e.Summary.Summary); s != "" {
			return s
		}
	}
	return strings.TrimSpace(e.Description)
}
