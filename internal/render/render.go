// Package render builds the reader-facing digest views: an HTML page for
// the serve mode and a Telegram message for the daily notification.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/octmarker/ainews/internal/article"
)

// DigestArticle is one article prepared for display.
type DigestArticle struct {
	Article  article.Article
	Category article.CategoryInfo
}

// Digest is the rendered page model. Articles keep source-document order.
type Digest struct {
	Date     string
	Format   string
	Articles []DigestArticle
	Now      time.Time
}

// NewDigest decorates articles with their category presentation.
func NewDigest(date, format string, articles []article.Article, now time.Time) Digest {
	d := Digest{Date: date, Format: format, Now: now}
	for _, a := range articles {
		d.Articles = append(d.Articles, DigestArticle{
			Article:  a,
			Category: article.LookupCategory(a.Category),
		})
	}
	return d
}

var pageTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"timeAgo": func(a article.Article, now time.Time) string {
		return article.TimeAgo(a, now)
	},
	"readingTime": func(a article.Article) string {
		return fmt.Sprintf("約%d分", article.ReadingTime(a.Description))
	},
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>ニュースダイジェスト {{.Date}}</title>
</head>
<body>
<header>
  <h1>📰 ニュースダイジェスト</h1>
  <p class="date">{{.Date}}</p>
</header>
<main>
{{range .Articles}}
  <article class="news-card">
    <span class="category-badge {{.Category.Class}}">{{.Category.Label}}</span>
    <h2><a href="{{.Article.URL}}" target="_blank" rel="noopener">{{.Article.Title}}</a></h2>
    <p class="description">{{.Article.Description}}</p>
    <div class="meta">
      <span class="source">{{.Article.Source}}</span>
      <span class="time">{{timeAgo .Article $.Now}}</span>
      <span class="reading">{{readingTime .Article}}</span>
      <span class="relevance">関連度 {{.Article.Relevance}}%</span>
    </div>
  </article>
{{end}}
</main>
</body>
</html>
`))

// WritePage renders the digest HTML page.
func (d Digest) WritePage(w io.Writer) error {
	return pageTemplate.Execute(w, d)
}

// TelegramMessage formats the digest as a Telegram HTML message, grouped by
// category in document order.
func TelegramMessage(date string, articles []article.Article) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📰 <b>ニュースダイジェスト</b> %s\n", date))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	currentCategory := ""
	for _, a := range articles {
		info := article.LookupCategory(a.Category)
		if a.Category != currentCategory {
			if currentCategory != "" {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", info.Label))
			currentCategory = a.Category
		}

		b.WriteString(fmt.Sprintf("<b>%d.</b> <a href=\"%s\">%s</a>\n", a.Number, a.URL, a.Title))
		if a.Description != "" {
			b.WriteString(fmt.Sprintf("<i>%s</i>\n", a.Description))
		}
		b.WriteString(fmt.Sprintf("📍 %s\n\n", a.Source))
	}

	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	b.WriteString("📱 AI News Bot | 毎朝 JST 8:00")

	return b.String()
}
