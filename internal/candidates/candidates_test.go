package candidates

import (
	"strings"
	"testing"
	"time"

	"github.com/octmarker/ainews/internal/normalize"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Title:       "新しいコーディングエージェントが公開",
			Source:      "TechCrunch",
			URL:         "https://example.test/agent",
			Category:    "AI・テクノロジー",
			PublishedAt: "2026-08-26T01:00:00Z",
			Summary:     &Summary{SummaryJA: "エージェント機能が強化"},
		},
		{
			Title:    "円相場が急変動",
			Source:   "日経",
			URL:      "https://example.test/yen",
			Category: "経済・金融",
			Summary:  &Summary{SummaryJA: "為替介入の観測"},
		},
		{
			Title: "添付情報なしの候補",
		},
	}
}

func TestNewDocumentNumbersEntries(t *testing.T) {
	doc := NewDocument("2026-08-26", time.Now(), sampleEntries())

	for i, e := range doc.Articles {
		if e.Number != i+1 {
			t.Errorf("Articles[%d].Number = %d, want %d", i, e.Number, i+1)
		}
	}
	if doc.Articles[2].Category == "" {
		t.Error("empty category must be filled with the fallback key")
	}
}

// The JSON document must survive the structured normalizer untouched.
func TestJSONRoundTripsThroughNormalizer(t *testing.T) {
	doc := NewDocument("2026-08-26", time.Now(), sampleEntries())

	data, err := doc.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	articles := normalize.Structured(data)
	if len(articles) != 3 {
		t.Fatalf("normalized %d articles, want 3", len(articles))
	}
	if articles[0].Description != "エージェント機能が強化" {
		t.Errorf("summary_ja lost: %q", articles[0].Description)
	}
	if articles[0].PublishedAt != "2026-08-26T01:00:00Z" {
		t.Errorf("published_at lost: %q", articles[0].PublishedAt)
	}
	if articles[2].URL != "#" {
		t.Errorf("missing URL should normalize to #: %q", articles[2].URL)
	}
}

// The markdown document must follow the exact line grammar the textual
// normalizer consumes, yielding the same titles, sources and URLs.
func TestMarkdownRoundTripsThroughNormalizer(t *testing.T) {
	doc := NewDocument("2026-08-26", time.Now(), sampleEntries())

	md := doc.Markdown()
	if !strings.Contains(md, "# 📰 ニュース候補 - 2026-08-26") {
		t.Errorf("document title missing:\n%s", md)
	}

	articles := normalize.Textual(md)
	if len(articles) != 3 {
		t.Fatalf("normalized %d articles, want 3:\n%s", len(articles), md)
	}

	if articles[0].Title != "新しいコーディングエージェントが公開" {
		t.Errorf("title mismatch: %q", articles[0].Title)
	}
	if articles[0].Source != "TechCrunch" || articles[0].Description != "エージェント機能が強化" {
		t.Errorf("metadata mismatch: %+v", articles[0])
	}
	if articles[0].URL != "https://example.test/agent" {
		t.Errorf("URL mismatch: %q", articles[0].URL)
	}
	if articles[0].Category != "AI・テクノロジー" {
		t.Errorf("category mismatch: %q", articles[0].Category)
	}
	if articles[1].Category != "経済・金融" {
		t.Errorf("category heading not honored: %q", articles[1].Category)
	}
	if articles[2].URL != "#" {
		t.Errorf("entries without URL must default to #: %q", articles[2].URL)
	}
}

func TestMemoTruncation(t *testing.T) {
	long := strings.Repeat("あ", 30)
	e := Entry{Summary: &Summary{SummaryJA: long}}
	got := memo(e)
	if want := strings.Repeat("あ", 20); got != want {
		t.Errorf("memo length = %d runes, want 20", len([]rune(got)))
	}

	if got := memo(Entry{}); got != "詳細は記事参照" {
		t.Errorf("empty memo placeholder = %q", got)
	}
}
