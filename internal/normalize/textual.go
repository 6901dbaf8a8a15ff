package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/octmarker/ainews/internal/article"
)

// Line grammar of the legacy markdown candidates file:
//
//	## 経済・金融            category heading
//	1. 記事タイトル          entry line
//	   📰 サイト名 | 💡 一言メモ   metadata line
//	   URL: [https://...]    link line
//
// Headings carrying the 📰 sentinel are the document title, not a category.
const docTitleSentinel = "📰"

var (
	entryRe = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	metaRe  = regexp.MustCompile(`📰\s*([^|]+?)\s*\|\s*💡\s*(.+)$`)
	urlRe   = regexp.MustCompile(`URL:\s*\[?([^\s\]]+)`)
)

// Textual runs a single forward scan over the markdown payload. The cursor
// never moves backwards; an entry missing its metadata or URL line keeps the
// field defaults and the scan carries on with the next line.
func Textual(text string) []article.Article {
	lines := strings.Split(text, "\n")
	articles := []article.Article{}
	category := article.FallbackCategory

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "##") && !strings.Contains(line, docTitleSentinel) {
			// Category heading. Unrecognized headings leave the current
			// category as is.
			if key, ok := article.MatchCategory(line); ok {
				category = key
			}
			i++
			continue
		}

		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			i++
			continue
		}

		number, _ := strconv.Atoi(m[1])
		a := article.Article{
			Number:    number,
			Title:     strings.TrimSpace(m[2]),
			Source:    article.PlaceholderSource,
			URL:       article.PlaceholderURL,
			Category:  category,
			Relevance: article.Relevance(number),
		}
		i++

		// Metadata line directly below the entry, if present.
		if i < len(lines) {
			if mm := metaRe.FindStringSubmatch(lines[i]); mm != nil {
				a.Source = strings.TrimSpace(mm[1])
				a.Description = strings.TrimSpace(mm[2])
				i++
			}
		}

		// URL line, if present.
		if i < len(lines) && strings.Contains(lines[i], "URL:") {
			if um := urlRe.FindStringSubmatch(lines[i]); um != nil {
				a.URL = um[1]
			}
			i++
		}

		articles = append(articles, a)
	}

	return articles
}
