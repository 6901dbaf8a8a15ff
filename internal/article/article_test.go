package article

import (
	"strings"
	"testing"
	"time"
)

func TestRelevance(t *testing.T) {
	tests := []struct {
		number int
		want   int
	}{
		{1, 96},
		{2, 95},
		{3, 94},
		{4, 93},
		{5, 92},
		{6, 91},
		{7, 88},
		{8, 87},
		{9, 86},
		{10, 85},
		{15, 85},
		{100, 85},
	}

	for _, tt := range tests {
		if got := Relevance(tt.number); got != tt.want {
			t.Errorf("Relevance(%d) = %d, want %d", tt.number, got, tt.want)
		}
	}
}

func TestRelevanceBounds(t *testing.T) {
	for n := 1; n <= 50; n++ {
		got := Relevance(n)
		if got < 85 || got > 100 {
			t.Fatalf("Relevance(%d) = %d, out of [85,100]", n, got)
		}
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        int
	}{
		{"empty hits floor", "", 2},
		{"short hits floor", "短い説明", 2},
		{"1000 chars", strings.Repeat("あ", 1000), 5},
		{"201 chars rounds up", strings.Repeat("x", 201), 2},
		{"401 chars rounds up", strings.Repeat("x", 401), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(tt.description); got != tt.want {
				t.Errorf("ReadingTime(len %d) = %d, want %d",
					len([]rune(tt.description)), got, tt.want)
			}
		})
	}
}

func TestTimeAgoWithTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt string
		want        string
	}{
		{"30 minutes ago", "2026-08-26T11:30:00Z", "1時間以内"},
		{"5 hours ago", "2026-08-26T07:00:00Z", "5時間前"},
		{"3 days ago", "2026-08-23T12:00:00Z", "3日前"},
		{"date only", "2026-08-20", "6日前"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{Number: 9, PublishedAt: tt.publishedAt}
			if got := TimeAgo(a, now); got != tt.want {
				t.Errorf("TimeAgo(%q) = %q, want %q", tt.publishedAt, got, tt.want)
			}
		})
	}
}

func TestTimeAgoPositionFallback(t *testing.T) {
	now := time.Now()

	tests := []struct {
		number int
		want   string
	}{
		{1, "5分前"},
		{2, "10分前"},
		{3, "30分前"},
		{5, "50分前"},
		{6, "6時間前"},
		{12, "12時間前"},
	}

	for _, tt := range tests {
		a := Article{Number: tt.number}
		if got := TimeAgo(a, now); got != tt.want {
			t.Errorf("TimeAgo(number=%d) = %q, want %q", tt.number, got, tt.want)
		}
	}
}

func TestTimeAgoUnparsableTimestampFallsBack(t *testing.T) {
	a := Article{Number: 2, PublishedAt: "yesterday-ish"}
	if got := TimeAgo(a, time.Now()); got != "10分前" {
		t.Errorf("TimeAgo with broken timestamp = %q, want %q", got, "10分前")
	}
}

func TestLookupCategoryFallback(t *testing.T) {
	if info := LookupCategory("スポーツ"); info != categoryTable[FallbackCategory] {
		t.Errorf("unknown key did not fall back: %+v", info)
	}
	if info := LookupCategory("経済・金融"); info.Class != "category-economy" {
		t.Errorf("known key lookup broken: %+v", info)
	}
}

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		heading string
		want    string
		ok      bool
	}{
		{"## AI・テクノロジー", "AI・テクノロジー", true},
		{"経済ニュース", "経済・金融", true},
		{"政治・政策まとめ", "政治・政策", true},
		{"科学の話題", "科学・文化", true},
		{"歴史・考古学", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MatchCategory(tt.heading)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchCategory(%q) = (%q, %v), want (%q, %v)",
				tt.heading, got, ok, tt.want, tt.ok)
		}
	}
}
