// Package config loads runtime configuration from the environment plus a few
// YAML/JSON files under configs/.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Mode: "collect" produces today's candidate files, "digest" resolves and
	// renders the latest ones, "serve" runs the digest as an HTTP page.
	Mode string

	// Candidate source location (consumer side)
	CandidatesBaseURL string // e.g. https://raw.githubusercontent.com/<repo>/main/news
	Lookback          int    // days probed back from today before giving up

	// Candidate production (producer side)
	CollectSource    string // "sites" (scraper+gnews+rss) or "gemini"
	GNewsAPIKey      string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	MaxCandidates    int
	PreferencesPath  string
	FeedsConfigPath  string
	ArticlesPerQuery int

	// GitHub publishing
	GitHubToken      string
	GitHubRepository string
	GitHubBranch     string

	// Telegram notification (optional)
	TelegramToken  string
	TelegramChatID string

	// Scraper settings
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// AI budget
	MaxGeminiRequests int
	MaxOpenAIRequests int

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	ServeAddr      string
	ScheduleCron   string // empty = run once and exit

	// Cache settings
	CacheFilePath   string
	CacheTTLHours   int
	DuplicateWindow int // hours for duplicate detection
	DatabaseURL     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Mode:              "digest",
		CollectSource:     "sites",
		Lookback:          3,
		MaxCandidates:     15,
		ArticlesPerQuery:  12,
		PreferencesPath:   "configs/user_preferences.json",
		FeedsConfigPath:   "configs/feeds.yaml",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
		ScrapeConcurrency: 8,
		ScrapeMaxArticles: 30,
		MaxGeminiRequests: 3,
		MaxOpenAIRequests: 20,
		ServeAddr:         ":8080",
		GitHubBranch:      "main",
	}

	cfg.CandidatesBaseURL = getEnvOrDefault("CANDIDATES_BASE_URL",
		"https://raw.githubusercontent.com/octmarker/ai-news-bot/main/news")
	cfg.Lookback = getEnvIntOrDefault("CANDIDATES_LOOKBACK", cfg.Lookback)

	if mode := os.Getenv("NEWS_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if src := os.Getenv("COLLECT_SOURCE"); src != "" {
		cfg.CollectSource = src
	}

	cfg.GNewsAPIKey = os.Getenv("GNEWS_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitHubRepository = getEnvOrDefault("GITHUB_REPOSITORY", "octmarker/ai-news-bot")
	if branch := os.Getenv("GITHUB_BRANCH"); branch != "" {
		cfg.GitHubBranch = branch
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.MaxCandidates = getEnvIntOrDefault("MAX_CANDIDATES", cfg.MaxCandidates)
	cfg.PreferencesPath = getEnvOrDefault("PREFERENCES_PATH", cfg.PreferencesPath)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)

	cfg.ScrapeConcurrency = getEnvIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)
	cfg.ScrapeMaxArticles = getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", cfg.ScrapeMaxArticles)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)
	cfg.MaxOpenAIRequests = getEnvIntOrDefault("MAX_OPENAI_REQUESTS", cfg.MaxOpenAIRequests)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.ServeAddr = getEnvOrDefault("SERVE_ADDR", cfg.ServeAddr)
	cfg.ScheduleCron = os.Getenv("SCHEDULE_CRON")

	cfg.CacheFilePath = getEnvOrDefault("CACHE_FILE_PATH", "published_candidates.json")
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", 72)
	cfg.DuplicateWindow = getEnvIntOrDefault("DUPLICATE_WINDOW_HOURS", 48)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "collect":
		if c.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN is required in collect mode")
		}
		if (c.CollectSource == "gemini" || c.CollectSource == "legacy") && c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for COLLECT_SOURCE=%s", c.CollectSource)
		}
	case "digest", "serve":
		if c.CandidatesBaseURL == "" {
			return fmt.Errorf("CANDIDATES_BASE_URL is required")
		}
	default:
		return fmt.Errorf("NEWS_MODE must be 'collect', 'digest' or 'serve'")
	}
	if c.Lookback < 0 {
		return fmt.Errorf("CANDIDATES_LOOKBACK must not be negative")
	}
	return nil
}

// Preferences mirrors the user_preferences.json document the selection UI
// maintains. Missing file means defaults.
type Preferences struct {
	SearchConfig struct {
		BoostedKeywords      []string           `json:"boosted_keywords"`
		SuppressedKeywords   []string           `json:"suppressed_keywords"`
		CategoryDistribution map[string]float64 `json:"category_distribution"`
	} `json:"search_config"`
	LastUpdated string `json:"last_updated"`
}

func LoadPreferences(path string) (*Preferences, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	return ParsePreferences(data)
}

// ParsePreferences decodes a preferences document fetched from elsewhere,
// e.g. the publishing repository.
func ParsePreferences(data []byte) (*Preferences, error) {
	prefs := &Preferences{}
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return prefs, nil
}
