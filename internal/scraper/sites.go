package scraper

import "regexp"

// Site describes one curated news site.
type Site struct {
	ID       string
	Name     string
	BaseURL  string
	Category string
	Lang     string
}

// Curated sites, replacing the GNews API dependence for the daily collect
// run. AI sites feed the tech bucket, CNBC and Nikkei the economy bucket.
var Sites = []Site{
	{ID: "techcrunch", Name: "TechCrunch", BaseURL: "https://techcrunch.com", Category: "AI・テクノロジー", Lang: "en"},
	{ID: "wired", Name: "WIRED", BaseURL: "https://www.wired.com", Category: "AI・テクノロジー", Lang: "en"},
	{ID: "arstechnica", Name: "Ars Technica", BaseURL: "https://arstechnica.com", Category: "AI・テクノロジー", Lang: "en"},
	{ID: "cnbc", Name: "CNBC", BaseURL: "https://www.cnbc.com", Category: "経済・金融", Lang: "en"},
	{ID: "nikkei", Name: "日本経済新聞", BaseURL: "https://www.nikkei.com", Category: "経済・金融", Lang: "ja"},
}

// aiFocusedSources publish AI content almost exclusively; their articles skip
// the keyword filter.
var aiFocusedSources = map[string]bool{
	"TechCrunch": true,
}

var aiKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"llm", "large language model", "chatgpt", "gpt", "openai", "gemini",
	"claude", "anthropic", "neural", "generative ai", "gen ai",
	"copilot", "ai agent", "chatbot", "transformer", "diffusion",
	"nvidia", "deepmind", "reinforcement learning", "computer vision",
	"robotics", "autonomous", "ai coding", "agent", "gpu", "chip",
	"semiconductor", "人工知能", "機械学習", "深層学習", "大規模言語モデル",
	"生成ai", "aiエージェント", "ロボット",
}

var (
	datedPathRe  = regexp.MustCompile(`/(20\d{2})/(\d{2})(?:/(\d{2}))?/`)
	wiredStoryRe = regexp.MustCompile(`^https://www\.wired\.com/story/`)
	// Paths that are almost always index pages, not articles.
	nonArticlePathRe = regexp.MustCompile(`^/?(tag|category|topic|author|about|contact|privacy|terms|newsletter|video|podcast|events)(/|$)`)
)
