// Package translate produces Japanese summaries for English entries. It
// tries the free Google Translate endpoint first and falls back to OpenAI
// when an API key is available.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIBudget gates the paid translation fallback. UseOpenAI reserves one
// request and returns an error once the budget is spent. A nil budget means
// no limit.
type OpenAIBudget interface {
	UseOpenAI() error
}

// Swappable for tests.
var (
	googleTranslate = translateWithGoogleTranslate
	openAITranslate = translateWithOpenAI
)

// ToJapanese translates text into Japanese. On total failure the original
// text comes back so the pipeline never loses an entry over translation.
func ToJapanese(text, from string, budget OpenAIBudget) (string, error) {
	if text == "" {
		return text, nil
	}

	text = cleanTextForTranslation(text)

	originalText := text
	if len(text) > 4000 {
		text = text[:4000] + "..."
	}

	result, err := googleTranslate(text, from, "ja")
	if err == nil && result != "" && result != text {
		return SanitizeAIText(result), nil
	}
	log.Printf("google translate %s->ja failed: %v", from, err)

	if os.Getenv("OPENAI_API_KEY") != "" && allowOpenAI(budget) {
		result, err := openAITranslate(text, from)
		if err == nil && result != "" && result != text {
			return SanitizeAIText(result), nil
		}
		log.Printf("openai translate %s->ja failed: %v", from, err)
	}

	log.Printf("all translate services failed for %s->ja, keeping original", from)
	return originalText, nil
}

func allowOpenAI(budget OpenAIBudget) bool {
	if budget == nil {
		return true
	}
	if err := budget.UseOpenAI(); err != nil {
		log.Printf("openai fallback skipped: %v", err)
		return false
	}
	return true
}

func translateWithGoogleTranslate(text, from, to string) (string, error) {
	baseURL := "https://translate.googleapis.com/translate_a/single"

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	client := &http.Client{Timeout: 15 * time.Second}

	resp, err := client.Get(baseURL + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("HTTP error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("google Translate API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %v", err)
	}

	return parseGoogleTranslateResponse(body)
}

// parseGoogleTranslateResponse unwraps the nested-array response of the
// public endpoint: the first element holds [translated, original, ...]
// segments.
func parseGoogleTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response from Google Translate")
	}

	translations, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, translation := range translations {
		if arr, ok := translation.([]interface{}); ok && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				result.WriteString(s)
			}
		}
	}

	return result.String(), nil
}

func cleanTextForTranslation(text string) string {
	lines := strings.Split(text, "\n")
	var cleanLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && len(line) > 5 {
			cleanLines = append(cleanLines, line)
		}
	}
	return strings.Join(cleanLines, " ")
}

func translateWithOpenAI(text, from string) (string, error) {
	client := openai.NewClient(os.Getenv("OPENAI_API_KEY"))

	sourceLang := "English"
	if from == "ja" {
		return text, nil
	}

	prompt := fmt.Sprintf(`Translate the following %s news text to Japanese.
Keep the meaning, tone and journalistic style of the original.
Translate only the text itself, without additional comments.
Use natural modern Japanese suitable for a news digest.

Text to translate:
%s`, sourceLang, text)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openAIRequest(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func openAIRequest(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: 2000,
	}
}

var (
	parenNoteRe   = regexp.MustCompile(`(?is)\((note|disclaimer)\b[^)]*\)`)
	bracketNoteRe = regexp.MustCompile(`(?is)\[(note|disclaimer)\b[^\]]*\]`)
	lineNoteRe    = regexp.MustCompile(`(?i)^(note|disclaimer)\s*:`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAIText strips machine-translation disclaimers the services like to
// inject, whether as whole lines or inline parenthesized/bracketed notes.
func SanitizeAIText(text string) string {
	text = parenNoteRe.ReplaceAllString(text, "")
	text = bracketNoteRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if lineNoteRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
