// Package collector produces daily news candidates and themed digests with
// the Gemini API, using search grounding on the model side.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/octmarker/ainews/internal/config"
	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
)

const modelName = "gemini-2.5-flash"

// noNewsMarker is what the model is instructed to answer when the requested
// window contains nothing worth reporting.
const noNewsMarker = "該当なし"

type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(modelName)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// CollectCandidates asks the model for 10-15 numbered candidates in the
// markdown entry format. Boosted and suppressed keywords come from the user
// preferences file. Returns "" when the model reports an empty window.
func (c *Client) CollectCandidates(ctx context.Context, dates PromptDates, prefs *config.Preferences) (string, error) {
	var boosted, suppressed []string
	if prefs != nil {
		boosted = prefs.SearchConfig.BoostedKeywords
		suppressed = prefs.SearchConfig.SuppressedKeywords
	}

	logger.Info("Collecting news candidates", "boosted", len(boosted), "suppressed", len(suppressed))

	text, err := c.generate(ctx, candidatePrompt(dates, boosted, suppressed))
	if err != nil {
		return "", err
	}
	if strings.Contains(text, noNewsMarker) {
		logger.Info("No candidates in the requested window")
		return "", nil
	}

	metrics.Global.AddCandidatesCollected(1)
	return text, nil
}

// CollectCategory runs a single themed category and returns the raw digest.
func (c *Client) CollectCategory(ctx context.Context, cat Category, dates PromptDates) (string, error) {
	logger.Info("Collecting category", "category", cat.Name)

	text, err := c.generate(ctx, cat.Prompt(dates))
	if err != nil {
		return "", fmt.Errorf("collect %s: %w", cat.ID, err)
	}
	return text, nil
}

// GenerateScript turns collected news into a spoken-style morning show
// script. Used for the AI category only.
func (c *Client) GenerateScript(ctx context.Context, newsContent string) (string, error) {
	logger.Info("Generating news script")
	return c.generate(ctx, scriptPrompt(newsContent))
}
