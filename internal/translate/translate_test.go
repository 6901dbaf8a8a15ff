package translate

import (
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestSanitizeAIText(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		keep   string
		banned string
	}{
		{
			name:   "inline parenthesized disclaimer",
			in:     "新機能が公開されました\n(Note: This translation is a machine translation and may contain errors.) 詳細は公式ブログを参照。",
			keep:   "詳細は公式ブログを参照",
			banned: "Note:",
		},
		{
			name:   "full line note",
			in:     "Note: This translation is a machine translation.\n新モデルが発表されました。",
			keep:   "新モデルが発表されました",
			banned: "Note:",
		},
		{
			name:   "bracketed disclaimer",
			in:     "[Note: Machine translation] これはテスト行です。",
			keep:   "これはテスト行です",
			banned: "Note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeAIText(tt.in)
			if out == "" {
				t.Fatal("got empty output")
			}
			if strings.Contains(strings.ToLower(out), strings.ToLower(tt.banned)) {
				t.Errorf("disclaimer not removed: %q", out)
			}
			if !strings.Contains(out, tt.keep) {
				t.Errorf("content lost, want %q in %q", tt.keep, out)
			}
		})
	}
}

func TestParseGoogleTranslateResponse(t *testing.T) {
	body := []byte(`[[["新しいモデル","A new model",null,null,10],["が登場。","arrives.",null,null,10]],null,"en"]`)

	got, err := parseGoogleTranslateResponse(body)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got != "新しいモデルが登場。" {
		t.Errorf("got %q", got)
	}
}

func TestParseGoogleTranslateResponseBad(t *testing.T) {
	if _, err := parseGoogleTranslateResponse([]byte(`{}`)); err == nil {
		t.Error("object payload should fail")
	}
	if _, err := parseGoogleTranslateResponse([]byte(`[]`)); err == nil {
		t.Error("empty array should fail")
	}
}

type fakeBudget struct {
	remaining int
}

func (b *fakeBudget) UseOpenAI() error {
	if b.remaining <= 0 {
		return errors.New("openai rate limit exceeded")
	}
	b.remaining--
	return nil
}

func TestToJapaneseOpenAIBudget(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	origGoogle, origOpenAI := googleTranslate, openAITranslate
	defer func() { googleTranslate, openAITranslate = origGoogle, origOpenAI }()

	googleTranslate = func(text, from, to string) (string, error) {
		return "", errors.New("service unavailable")
	}
	openAICalls := 0
	openAITranslate = func(text, from string) (string, error) {
		openAICalls++
		return "新モデルが公開されました", nil
	}

	budget := &fakeBudget{remaining: 1}

	got, err := ToJapanese("OpenAI ships a new model", "en", budget)
	if err != nil {
		t.Fatal(err)
	}
	if got != "新モデルが公開されました" {
		t.Errorf("within budget got %q", got)
	}
	if openAICalls != 1 {
		t.Fatalf("openai calls = %d, want 1", openAICalls)
	}

	const title = "Another English headline"
	got, err = ToJapanese(title, "en", budget)
	if err != nil {
		t.Fatal(err)
	}
	if got != title {
		t.Errorf("exhausted budget should keep the original, got %q", got)
	}
	if openAICalls != 1 {
		t.Errorf("openai calls = %d after exhaustion, want 1", openAICalls)
	}
}

func TestToJapaneseNilBudgetAllowsFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	origGoogle, origOpenAI := googleTranslate, openAITranslate
	defer func() { googleTranslate, openAITranslate = origGoogle, origOpenAI }()

	googleTranslate = func(text, from, to string) (string, error) {
		return "", errors.New("service unavailable")
	}
	openAITranslate = func(text, from string) (string, error) {
		return "翻訳された見出し", nil
	}

	got, err := ToJapanese("An English headline", "en", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "翻訳された見出し" {
		t.Errorf("nil budget got %q", got)
	}
}

func TestOpenAIRequest(t *testing.T) {
	req := openAIRequest("translate this text")
	if req.Model != openai.GPT3Dot5Turbo {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "translate this text" {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestCleanTextForTranslation(t *testing.T) {
	in := "First meaningful line here\n\n  ok \nSecond meaningful line"
	got := cleanTextForTranslation(in)
	if got != "First meaningful line here Second meaningful line" {
		t.Errorf("got %q", got)
	}
}
