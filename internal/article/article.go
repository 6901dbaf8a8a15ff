// Package article holds the canonical article model shared by the candidate
// producer and the digest renderer, plus the derived display values.
package article

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	// PlaceholderSource is shown when a candidate carries no attribution.
	PlaceholderSource = "不明"
	// PlaceholderURL marks candidates without a usable link.
	PlaceholderURL = "#"
)

// Article is one normalized news candidate. Immutable once built; ordering
// follows the source payload and is never re-sorted.
type Article struct {
	Number      int
	Title       string
	Source      string
	Description string
	URL         string
	Category    string
	Relevance   int
	PublishedAt string
}

// Relevance maps the 1-based rank of a candidate to a score in [85,100].
// Earlier-ranked candidates score higher, with a hard floor at 85.
func Relevance(number int) int {
	switch {
	case number <= 3:
		return 95 + (4 - number)
	case number <= 6:
		return 90 + (7 - number)
	default:
		if r := 95 - number; r > 85 {
			return r
		}
		return 85
	}
}

// ReadingTime estimates reading minutes from the description. Character
// based rather than word based: candidate text is Japanese.
func ReadingTime(description string) int {
	chars := utf8.RuneCountInString(description)
	minutes := (chars + 199) / 200
	if minutes < 2 {
		minutes = 2
	}
	return minutes
}

// timestampLayouts are tried in order when parsing PublishedAt. GNews emits
// RFC3339, the site scrapers only a calendar date.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TimeAgo renders the recency string for a. Textual candidates carry no
// timestamp; those get a coarse position-based placeholder (rank 2 shows as
// "10分前" regardless of real publish time) rather than nothing.
func TimeAgo(a Article, now time.Time) string {
	if a.PublishedAt != "" {
		if ts, err := parseTimestamp(a.PublishedAt); err == nil {
			hours := int(now.Sub(ts).Hours())
			switch {
			case hours < 1:
				return "1時間以内"
			case hours < 24:
				return fmt.Sprintf("%d時間前", hours)
			default:
				return fmt.Sprintf("%d日前", hours/24)
			}
		}
	}

	switch {
	case a.Number <= 2:
		return fmt.Sprintf("%d分前", a.Number*5)
	case a.Number <= 5:
		return fmt.Sprintf("%d分前", a.Number*10)
	default:
		return fmt.Sprintf("%d時間前", a.Number)
	}
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
