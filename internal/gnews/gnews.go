// Package gnews talks to the GNews.io API and maps its headlines onto the
// candidate schema.
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/octmarker/ainews/internal/article"
	"github.com/octmarker/ainews/internal/candidates"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/retry"
)

const baseURL = "https://gnews.io/api/v4"

// categoryMapping maps GNews categories onto the category table keys.
// Iteration must be stable, hence the slice of pairs.
var categoryMapping = []struct {
	GNews string
	Key   string
}{
	{"technology", "AI・テクノロジー"},
	{"business", "経済・金融"},
	{"general", "政治・政策"},
}

type Client struct {
	APIKey     string
	HTTPClient *http.Client
	Retry      retry.RetryConfig
	Lang       string
	Country    string
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Retry:      retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
		Lang:       "ja",
		Country:    "jp",
	}
}

// apiResponse mirrors the GNews.io wire format.
type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// TopHeadlines fetches headlines for one GNews category.
func (c *Client) TopHeadlines(ctx context.Context, category string, max int) ([]apiArticle, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("lang", c.Lang)
	params.Set("country", c.Country)
	params.Set("max", fmt.Sprint(max))
	params.Set("apikey", c.APIKey)

	return c.request(ctx, baseURL+"/top-headlines?"+params.Encode())
}

// Search fetches articles matching a query within a date range.
func (c *Client) Search(ctx context.Context, query string, max int, from, to string) ([]apiArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", c.Lang)
	params.Set("country", c.Country)
	params.Set("max", fmt.Sprint(max))
	params.Set("apikey", c.APIKey)
	if from != "" {
		params.Set("from", from)
	}
	if to != "" {
		params.Set("to", to)
	}

	return c.request(ctx, baseURL+"/search?"+params.Encode())
}

func (c *Client) request(ctx context.Context, endpoint string) ([]apiArticle, error) {
	var result apiResponse

	err := retry.WithRetry(ctx, c.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gnews API status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &result)
	})
	if err != nil {
		return nil, err
	}

	if result.TotalArticles == 0 {
		return nil, nil
	}
	return result.Articles, nil
}

// BuildSearchQuery joins boosted keywords with the OR operator GNews expects.
func BuildSearchQuery(boostedKeywords []string) string {
	return strings.Join(boostedKeywords, " OR ")
}

// CollectMultiCategory fetches headlines per mapped category plus an optional
// boosted-keyword search, deduplicated by URL. Keyword hits without a mapped
// category land in the tech bucket, same as the selection UI always assumed.
func (c *Client) CollectMultiCategory(ctx context.Context, perCategory int, boostedKeywords []string) []candidates.Entry {
	var all []candidates.Entry
	seen := make(map[string]bool)

	appendArticles := func(articles []apiArticle, key string) {
		for _, a := range articles {
			if a.Title == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			all = append(all, candidates.Entry{
				Title:       a.Title,
				Source:      sourceName(a),
				URL:         a.URL,
				Category:    key,
				PublishedAt: a.PublishedAt,
				Description: a.Description,
			})
		}
	}

	for _, mapping := range categoryMapping {
		articles, err := c.TopHeadlines(ctx, mapping.GNews, perCategory)
		if err != nil {
			logger.Warn("gnews category fetch failed", "category", mapping.GNews, "error", err)
			continue
		}
		appendArticles(articles, mapping.Key)
	}

	if len(boostedKeywords) > 0 {
		to := time.Now().Format("2006-01-02")
		from := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
		articles, err := c.Search(ctx, BuildSearchQuery(boostedKeywords), 10, from, to)
		if err != nil {
			logger.Warn("gnews keyword search failed", "error", err)
		} else {
			appendArticles(articles, article.FallbackCategory)
		}
	}

	return all
}

func sourceName(a apiArticle) string {
	if a.Source.Name != "" {
		return a.Source.Name
	}
	return article.PlaceholderSource
}
