// Package scraper collects candidate headlines straight from a small set of
// curated news sites.
package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/octmarker/ainews/internal/candidates"
)

// Browser-ish headers; several of the sites refuse the default Go user agent.
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9,ja;q=0.8",
}

type Scraper struct {
	Client      *http.Client
	Concurrency int
	MaxPerSite  int
	Now         func() time.Time
}

func New(timeout time.Duration, concurrency, maxPerSite int) *Scraper {
	if concurrency <= 0 {
		concurrency = 5
	}
	if maxPerSite <= 0 {
		maxPerSite = 15
	}
	return &Scraper{
		Client:      &http.Client{Timeout: timeout},
		Concurrency: concurrency,
		MaxPerSite:  maxPerSite,
	}
}

// Collect scrapes all curated sites with bounded concurrency, filters tech
// entries by AI keywords, deduplicates by URL and title prefix and drops
// anything older than two days.
func (s *Scraper) Collect(ctx context.Context, total int) []candidates.Entry {
	var (
		mu  sync.Mutex
		all []candidates.Entry
	)

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup

	for _, site := range Sites {
		wg.Add(1)
		go func(site Site) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entries, err := s.scrapeSite(ctx, site)
			if err != nil {
				log.Printf("scrape %s failed: %v", site.Name, err)
				return
			}
			log.Printf("scraped %s: %d articles", site.Name, len(entries))

			mu.Lock()
			all = append(all, entries...)
			mu.Unlock()
		}(site)
	}
	wg.Wait()

	filtered := filterAIKeywords(all)
	deduped := dedupe(filtered)
	fresh := s.dropStale(deduped)

	if total > 0 && len(fresh) > total {
		fresh = fresh[:total]
	}
	return fresh
}

func (s *Scraper) scrapeSite(ctx context.Context, site Site) ([]candidates.Entry, error) {
	doc, err := s.fetchPage(ctx, site.BaseURL)
	if err != nil {
		return nil, err
	}

	var entries []candidates.Entry
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = absoluteURL(site.BaseURL, href)
		if href == "" || seen[href] {
			return true
		}
		if !isArticleURL(site, href) {
			return true
		}

		title := strings.TrimSpace(sel.Text())
		if len([]rune(title)) < 10 {
			return true
		}

		seen[href] = true
		entries = append(entries, candidates.Entry{
			Title:       title,
			Source:      site.Name,
			URL:         href,
			Category:    site.Category,
			PublishedAt: dateFromURL(href),
		})

		return len(entries) < s.MaxPerSite
	})

	return entries, nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(base, "/") + href
	}
	return ""
}

// isArticleURL keeps links that look like articles on the given site and
// rejects index pages.
func isArticleURL(site Site, href string) bool {
	if !strings.HasPrefix(href, site.BaseURL) {
		return false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return false
	}
	if nonArticlePathRe.MatchString(strings.TrimPrefix(parsed.Path, "/")) {
		return false
	}

	switch site.ID {
	case "techcrunch", "arstechnica":
		// Article URLs carry a /YYYY/MM[/DD]/ path segment.
		return datedPathRe.MatchString(parsed.Path)
	case "wired":
		return wiredStoryRe.MatchString(href)
	case "cnbc":
		return datedPathRe.MatchString(parsed.Path) || strings.Contains(parsed.Path, ".html")
	case "nikkei":
		return strings.Contains(parsed.Path, "/article/")
	}
	return false
}

// dateFromURL extracts a publish date from dated URL paths where available.
func dateFromURL(href string) string {
	m := datedPathRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	if m[3] != "" {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	}
	return fmt.Sprintf("%s-%s", m[1], m[2])
}

// filterAIKeywords keeps tech entries only when they mention an AI keyword;
// AI-focused sources and the economy bucket pass through.
func filterAIKeywords(entries []candidates.Entry) []candidates.Entry {
	filtered := make([]candidates.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Category != "AI・テクノロジー" || aiFocusedSources[e.Source] {
			filtered = append(filtered, e)
			continue
		}

		text := strings.ToLower(e.Title + " " + e.Description)
		if matchesAnyKeyword(text, aiKeywords) || strings.Contains(strings.ToLower(e.URL), "/ai/") {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		if len(k) <= 3 {
			// Short tokens need word boundaries ("ai" must not match "said").
			if containsWord(text, k) {
				return true
			}
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// dedupe removes repeated URLs and near-identical titles (same first 25
// runes), keeping first occurrence.
func dedupe(entries []candidates.Entry) []candidates.Entry {
	seenURLs := make(map[string]bool)
	seenTitles := make(map[string]bool)

	out := make([]candidates.Entry, 0, len(entries))
	for _, e := range entries {
		if seenURLs[e.URL] {
			continue
		}
		prefix := titlePrefix(e.Title)
		if prefix != "" && seenTitles[prefix] {
			continue
		}

		seenURLs[e.URL] = true
		if prefix != "" {
			seenTitles[prefix] = true
		}
		out = append(out, e)
	}
	return out
}

func titlePrefix(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) > 25 {
		runes = runes[:25]
	}
	return strings.TrimSpace(string(runes))
}

// dropStale removes entries older than two days. Entries without a parsed
// date pass through.
func (s *Scraper) dropStale(entries []candidates.Entry) []candidates.Entry {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().AddDate(0, 0, -2).Format("2006-01-02")

	out := make([]candidates.Entry, 0, len(entries))
	for _, e := range entries {
		if e.PublishedAt != "" && e.PublishedAt < cutoff {
			continue
		}
		out = append(out, e)
	}
	return out
}
