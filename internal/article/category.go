package article

import "strings"

// CategoryInfo carries the display label and CSS class for one category key.
type CategoryInfo struct {
	Label string
	Class string
}

// FallbackCategory is used for anything without a recognized category. It is
// the producer's default bucket as well (keyword matches land in tech).
const FallbackCategory = "AI・テクノロジー"

// CategoryKeys is the declaration order of the category table. The textual
// parser resolves headings by first partial match in this order, so the order
// is part of the contract.
var CategoryKeys = []string{
	"AI・テクノロジー",
	"経済・金融",
	"政治・政策",
	"科学・文化",
}

var categoryTable = map[string]CategoryInfo{
	"AI・テクノロジー": {Label: "🤖 AI・テクノロジー", Class: "category-ai"},
	"経済・金融":     {Label: "💰 経済・金融", Class: "category-economy"},
	"政治・政策":     {Label: "🏛 政治・政策", Class: "category-politics"},
	"科学・文化":     {Label: "🔬 科学・文化", Class: "category-science"},
}

// LookupCategory never fails: unknown keys resolve to the fallback entry.
func LookupCategory(key string) CategoryInfo {
	if info, ok := categoryTable[key]; ok {
		return info
	}
	return categoryTable[FallbackCategory]
}

// IsKnownCategory reports whether key is one of the table keys.
func IsKnownCategory(key string) bool {
	_, ok := categoryTable[key]
	return ok
}

// NormalizeCategory maps an arbitrary category value onto a valid key.
func NormalizeCategory(key string) string {
	if IsKnownCategory(key) {
		return key
	}
	return FallbackCategory
}

// MatchCategory resolves a section heading against the table using a partial
// match: the heading must contain the part of a key before the "・"
// separator. First match in declaration order wins; no match reports false.
func MatchCategory(heading string) (string, bool) {
	for _, key := range CategoryKeys {
		prefix := key
		if idx := strings.Index(key, "・"); idx >= 0 {
			prefix = key[:idx]
		}
		if prefix != "" && strings.Contains(heading, prefix) {
			return key, true
		}
	}
	return "", false
}
