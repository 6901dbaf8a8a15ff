// Package candidates assembles the daily candidate files in their two
// interchangeable formats: the structured JSON document and the legacy
// markdown list the selection UI grew up on.
package candidates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/octmarker/ainews/internal/article"
)

// Entry is one candidate in the structured payload.
type Entry struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Source      string   `json:"source,omitempty"`
	URL         string   `json:"url,omitempty"`
	Category    string   `json:"category,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	Summary     *Summary `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Summary struct {
	SummaryJA string `json:"summary_ja,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// Document is the top-level structured candidates payload.
type Document struct {
	Date        string  `json:"date"`
	GeneratedAt string  `json:"generated_at"`
	Articles    []Entry `json:"articles"`
}

// NewDocument numbers the entries 1..n in the given order and stamps the
// document. Numbering here is what the relevance score later derives from.
func NewDocument(date string, generatedAt time.Time, entries []Entry) Document {
	doc := Document{
		Date:        date,
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Articles:    make([]Entry, len(entries)),
	}
	for i, e := range entries {
		e.Number = i + 1
		if e.Category == "" {
			e.Category = article.FallbackCategory
		}
		doc.Articles[i] = e
	}
	return doc
}

// JSON renders the structured candidates file.
func (d Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidates: %w", err)
	}
	return data, nil
}

// memoLimit caps the one-line memo in the markdown format, matching the
// "20字以内" instruction the selection UI was designed around.
const memoLimit = 20

// Markdown renders the legacy textual candidates file. The output follows the
// exact line grammar the textual normalizer consumes: category headings,
// "N. title" entries, a 📰|💡 metadata line and a URL line.
func (d Document) Markdown() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# 📰 ニュース候補 - %s\n\n", d.Date))
	b.WriteString("以下から気になる記事の番号を選んでください。\n")
	b.WriteString("Claudeに「1,3,5を選ぶ」のように伝えると、詳細要約を生成します。\n\n")
	b.WriteString("---\n")

	current := ""
	for _, e := range d.Articles {
		category := e.Category
		if category == "" {
			category = article.FallbackCategory
		}
		if category != current {
			b.WriteString(fmt.Sprintf("\n## %s\n\n", category))
			current = category
		}

		source := e.Source
		if source == "" {
			source = article.PlaceholderSource
		}

		b.WriteString(fmt.Sprintf("%d. %s\n", e.Number, e.Title))
		b.WriteString(fmt.Sprintf("   📰 %s | 💡 %s\n", source, memo(e)))
		if e.URL != "" {
			b.WriteString(fmt.Sprintf("   URL: [%s]\n", e.URL))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString("💡 **選択方法**: 記事番号をカンマ区切りで伝えてください（例: 1,4,7）\n")

	return b.String()
}

func memo(e Entry) string {
	text := ""
	if e.Summary != nil {
		text = e.Summary.SummaryJA
	}
	if text == "" {
		text = e.Description
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "詳細は記事参照"
	}

	runes := []rune(text)
	if len(runes) > memoLimit {
		return string(runes[:memoLimit])
	}
	return text
}
