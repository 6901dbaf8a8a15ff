// Package app wires the pipeline together: collect produces the daily
// candidate files, digest resolves and delivers them, serve exposes the
// digest as an HTTP page.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/octmarker/ainews/internal/article"
	"github.com/octmarker/ainews/internal/candidates"
	"github.com/octmarker/ainews/internal/collector"
	"github.com/octmarker/ainews/internal/config"
	"github.com/octmarker/ainews/internal/gnews"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
	"github.com/octmarker/ainews/internal/normalize"
	"github.com/octmarker/ainews/internal/publisher"
	"github.com/octmarker/ainews/internal/ratelimit"
	"github.com/octmarker/ainews/internal/render"
	"github.com/octmarker/ainews/internal/retry"
	"github.com/octmarker/ainews/internal/resolver"
	"github.com/octmarker/ainews/internal/rss"
	"github.com/octmarker/ainews/internal/scraper"
	"github.com/octmarker/ainews/internal/storage"
	"github.com/octmarker/ainews/internal/telegram"
	"github.com/octmarker/ainews/internal/translate"
)

// Candidate files are stamped with JST dates on both ends of the pipeline.
var jst = time.FixedZone("JST", 9*60*60)

type App struct {
	cfg     *config.Config
	seen    SeenCache
	pub     *publisher.Client
	limiter *ratelimit.AIRateLimiter
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		seen:    newSeenCache(cfg),
		limiter: ratelimit.NewAIRateLimiter(cfg.MaxGeminiRequests, cfg.MaxOpenAIRequests, 0),
	}
	if cfg.GitHubToken != "" {
		a.pub = publisher.NewClient(cfg.GitHubToken, cfg.GitHubRepository)
		a.pub.Branch = cfg.GitHubBranch
		a.pub.Retry = a.retryConfig()
	}
	return a, nil
}

// retryConfig builds the shared HTTP retry policy from RETRY_ATTEMPTS and
// RETRY_DELAY.
func (a *App) retryConfig() retry.RetryConfig {
	return retry.RetryConfig{
		MaxAttempts: a.cfg.RetryAttempts,
		Delay:       a.cfg.RetryDelay,
		Backoff:     true,
	}
}

func (a *App) Close() {
	if err := a.seen.Close(); err != nil {
		logger.Error("Failed to close seen cache", "error", err)
	}
}

// Run executes the configured mode once.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	defer metrics.Global.RecordProcessingTime(time.Since(start))

	var err error
	switch a.cfg.Mode {
	case "collect":
		err = a.RunCollect(ctx)
	case "digest":
		err = a.RunDigest(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", a.cfg.Mode)
	}

	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.SetLastRun()
	return nil
}

// RunCollect gathers today's candidates from every configured source,
// filters out articles already published on earlier days, and commits the
// two candidate files.
func (a *App) RunCollect(ctx context.Context) error {
	now := time.Now().In(jst)
	dateStr := now.Format("2006-01-02")

	logger.Info("Collect run started", "date", dateStr, "source", a.cfg.CollectSource)

	if a.cfg.CollectSource == "legacy" {
		return a.runLegacyCategories(ctx, now)
	}

	prefs := a.loadPreferences(ctx)

	entries := a.gatherEntries(ctx, now, prefs)
	if len(entries) == 0 {
		return fmt.Errorf("no candidates collected for %s", dateStr)
	}

	entries = a.filterSeen(entries)
	if len(entries) == 0 {
		logger.Warn("Every candidate was already published, nothing new today")
		return nil
	}

	entries = sortByCategory(entries)
	if len(entries) > a.cfg.MaxCandidates {
		entries = entries[:a.cfg.MaxCandidates]
	}

	a.fillJapaneseMemos(entries)

	doc := candidates.NewDocument(dateStr, now, entries)

	if err := a.publish(ctx, doc); err != nil {
		return err
	}
	a.markSeen(doc.Articles)

	if err := a.seen.Cleanup(a.cfg.CacheTTLHours); err != nil {
		logger.Debug("Seen cache cleanup failed", "error", err)
	}

	if a.cfg.TelegramToken != "" && a.cfg.TelegramChatID != "" {
		text := fmt.Sprintf("📰 %s の候補 %d 件を公開しました\nnews/%s-candidates.md", dateStr, len(doc.Articles), dateStr)
		if err := telegram.SendMessage(a.cfg.TelegramToken, a.cfg.TelegramChatID, text); err != nil {
			logger.Error("Telegram notify failed", "error", err)
		}
	}

	logger.Info("Collect run completed", "date", dateStr, "candidates", len(doc.Articles))
	return nil
}

// gatherEntries runs the configured producers and merges their output.
func (a *App) gatherEntries(ctx context.Context, now time.Time, prefs *config.Preferences) []candidates.Entry {
	var entries []candidates.Entry

	if a.cfg.CollectSource == "gemini" && a.cfg.GeminiAPIKey != "" {
		entries = append(entries, a.geminiEntries(ctx, now, prefs)...)
	}

	s := scraper.New(a.cfg.RequestTimeout, a.cfg.ScrapeConcurrency, a.cfg.ScrapeMaxArticles)
	entries = append(entries, s.Collect(ctx, a.cfg.ScrapeMaxArticles)...)

	if feeds, err := rss.LoadFeeds(a.cfg.FeedsConfigPath); err == nil && len(feeds) > 0 {
		entries = append(entries, rss.FetchAll(feeds, a.cfg.ArticlesPerQuery)...)
	} else if err != nil {
		logger.Debug("No RSS feeds configured", "path", a.cfg.FeedsConfigPath, "error", err)
	}

	if a.cfg.GNewsAPIKey != "" {
		var boosted []string
		if prefs != nil {
			boosted = prefs.SearchConfig.BoostedKeywords
		}
		gc := gnews.NewClient(a.cfg.GNewsAPIKey, a.cfg.RequestTimeout)
		gc.Retry = a.retryConfig()
		entries = append(entries, gc.CollectMultiCategory(ctx, a.cfg.ArticlesPerQuery, boosted)...)
	}

	metrics.Global.AddCandidatesCollected(len(entries))
	return entries
}

// geminiEntries asks the model for candidates and parses its markdown list
// through the same normalizer the digest side uses.
func (a *App) geminiEntries(ctx context.Context, now time.Time, prefs *config.Preferences) []candidates.Entry {
	if !a.limiter.CanUseGemini() {
		logger.Warn("Gemini budget exhausted, skipping model candidates")
		return nil
	}

	client, err := collector.NewClient(ctx, a.cfg.GeminiAPIKey)
	if err != nil {
		logger.Error("Gemini client init failed", "error", err)
		return nil
	}
	defer client.Close()

	text, err := client.CollectCandidates(ctx, collector.NewPromptDates(now), prefs)
	if err != nil {
		logger.Error("Gemini candidate collection failed", "error", err)
		return nil
	}
	if text == "" {
		return nil
	}
	_ = a.limiter.UseGemini()

	var entries []candidates.Entry
	for _, art := range normalize.Textual(text) {
		e := candidates.Entry{
			Title:    art.Title,
			URL:      art.URL,
			Category: art.Category,
		}
		if art.Source != article.PlaceholderSource {
			e.Source = art.Source
		}
		if art.Description != "" {
			e.Description = art.Description
		}
		if art.URL == article.PlaceholderURL {
			e.URL = ""
		}
		entries = append(entries, e)
	}
	return entries
}

// runLegacyCategories produces the themed digest files the candidate flow
// replaced: one markdown file per scheduled category, straight from the
// model with no selection step.
func (a *App) runLegacyCategories(ctx context.Context, now time.Time) error {
	if a.pub == nil {
		return fmt.Errorf("GITHUB_TOKEN is required to publish category digests")
	}

	client, err := collector.NewClient(ctx, a.cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	dates := collector.NewPromptDates(now)
	published := 0

	for _, cat := range collector.Categories {
		if !cat.ShouldRun(now) {
			logger.Debug("Category not scheduled today", "category", cat.ID)
			continue
		}
		if !a.limiter.CanUseGemini() {
			logger.Warn("Gemini budget exhausted, stopping category runs")
			break
		}

		text, err := client.CollectCategory(ctx, cat, dates)
		if err != nil {
			logger.Error("Category collection failed", "category", cat.ID, "error", err)
			continue
		}
		_ = a.limiter.UseGemini()

		if cat.GenerateScript && a.limiter.CanUseGemini() {
			if script, err := client.GenerateScript(ctx, text); err == nil {
				_ = a.limiter.UseGemini()
				text += "\n\n---\n\n## 📻 番組原稿\n\n" + script
			} else {
				logger.Error("Script generation failed", "category", cat.ID, "error", err)
			}
		}

		path := fmt.Sprintf("news/%s-%s.md", dates.DateStr, cat.ID)
		if err := a.pub.Publish(ctx, path, text,
			fmt.Sprintf("Add %s for %s", cat.Name, dates.DateStr)); err != nil {
			logger.Error("Category publish failed", "path", path, "error", err)
			continue
		}
		published++
	}

	logger.Info("Legacy category run completed", "published", published)
	return nil
}

// filterSeen drops candidates already published within the duplicate window.
func (a *App) filterSeen(entries []candidates.Entry) []candidates.Entry {
	kept := make([]candidates.Entry, 0, len(entries))
	for _, e := range entries {
		hash := storage.GenerateHash(e.Title, e.URL)
		if a.seen.IsSeen(hash) {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (a *App) markSeen(entries []candidates.Entry) {
	for _, e := range entries {
		hash := storage.GenerateHash(e.Title, e.URL)
		if err := a.seen.MarkSeen(hash, e.Title, e.URL, e.Category, e.Source); err != nil {
			logger.Error("Failed to mark candidate as seen", "title", e.Title, "error", err)
		}
	}
}

// fillJapaneseMemos translates entry titles into short Japanese memos for
// entries that have none. Failures leave the memo empty; markdown rendering
// falls back to a placeholder.
func (a *App) fillJapaneseMemos(entries []candidates.Entry) {
	pg, _ := a.seen.(*storage.PostgresCache)

	for i := range entries {
		if entries[i].Description != "" || entries[i].Summary != nil {
			continue
		}

		hash := storage.GenerateHash(entries[i].Title, entries[i].URL)
		if pg != nil {
			if item, err := pg.GetSummaryCache(hash); err == nil && item.SummaryJA != "" {
				entries[i].Summary = &candidates.Summary{SummaryJA: item.SummaryJA}
				a.limiter.RecordCacheHit()
				continue
			}
		}

		ja, err := translate.ToJapanese(entries[i].Title, "en", a.limiter)
		if err != nil || ja == entries[i].Title {
			continue
		}
		entries[i].Summary = &candidates.Summary{SummaryJA: ja}

		if pg != nil {
			item := storage.SummaryCacheItem{
				ContentHash: hash,
				Title:       entries[i].Title,
				Content:     entries[i].Title,
				SummaryJA:   ja,
				AIProvider:  "google-translate",
			}
			if err := pg.SetSummaryCache(item); err != nil {
				logger.Debug("Summary cache write failed", "error", err)
			}
		}
	}
}

// sortByCategory orders entries by the canonical category order, keeping
// the producer order inside each category.
func sortByCategory(entries []candidates.Entry) []candidates.Entry {
	rank := make(map[string]int, len(article.CategoryKeys))
	for i, key := range article.CategoryKeys {
		rank[key] = i
	}
	rankOf := func(category string) int {
		if r, ok := rank[category]; ok {
			return r
		}
		return len(article.CategoryKeys)
	}

	sorted := make([]candidates.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOf(sorted[i].Category) < rankOf(sorted[j].Category)
	})
	return sorted
}

// publish commits both candidate formats. The JSON file goes first; the
// digest side prefers it and falls back to markdown.
func (a *App) publish(ctx context.Context, doc candidates.Document) error {
	if a.pub == nil {
		return fmt.Errorf("GITHUB_TOKEN is required to publish candidates")
	}

	jsonPayload, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	jsonPath := fmt.Sprintf("news/%s-candidates.json", doc.Date)
	if err := a.pub.Publish(ctx, jsonPath, string(jsonPayload),
		fmt.Sprintf("Add news candidates for %s", doc.Date)); err != nil {
		return fmt.Errorf("publish %s: %w", jsonPath, err)
	}

	mdPath := fmt.Sprintf("news/%s-candidates.md", doc.Date)
	if err := a.pub.Publish(ctx, mdPath, doc.Markdown(),
		fmt.Sprintf("Add news candidates for %s", doc.Date)); err != nil {
		return fmt.Errorf("publish %s: %w", mdPath, err)
	}

	return nil
}

// loadPreferences reads user preferences from the repository when a token is
// configured, falling back to the local file.
func (a *App) loadPreferences(ctx context.Context) *config.Preferences {
	if a.pub != nil {
		if content, err := a.pub.FetchFile(ctx, "user_preferences.json"); err == nil && content != "" {
			if prefs, err := config.ParsePreferences([]byte(content)); err == nil {
				logger.Info("Loaded user preferences from repository")
				return prefs
			}
		}
	}

	prefs, err := config.LoadPreferences(a.cfg.PreferencesPath)
	if err != nil {
		logger.Debug("Using default preferences", "error", err)
	}
	return prefs
}

// RunDigest resolves the freshest candidate file and delivers the rendered
// digest to Telegram.
func (a *App) RunDigest(ctx context.Context) error {
	res, articles, err := a.resolveArticles(ctx)
	if err != nil {
		return err
	}

	logger.Info("Digest resolved", "date", res.Date, "format", string(res.Format), "articles", len(articles))

	if a.cfg.TelegramToken == "" || a.cfg.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID are required for digest delivery")
	}

	msg := render.TelegramMessage(res.Date, articles)
	if err := telegram.SendMessage(a.cfg.TelegramToken, a.cfg.TelegramChatID, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (a *App) resolveArticles(ctx context.Context) (*resolver.FetchResult, []article.Article, error) {
	r := resolver.New(a.cfg.CandidatesBaseURL, &http.Client{Timeout: a.cfg.RequestTimeout})
	r.Lookback = a.cfg.Lookback

	res, err := r.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}

	articles := normalize.Articles(res)
	if len(articles) == 0 {
		return res, nil, fmt.Errorf("candidate file for %s produced no articles", res.Date)
	}
	return res, articles, nil
}
