// Package publisher commits generated candidate files to a GitHub
// repository through the contents API. The published raw URLs are what the
// digest side probes.
package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/octmarker/ainews/internal/logger"
	"github.com/octmarker/ainews/internal/metrics"
	"github.com/octmarker/ainews/internal/retry"
)

const apiBase = "https://api.github.com"

type Client struct {
	Token      string
	Repo       string // owner/name
	Branch     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.RetryConfig
}

func NewClient(token, repo string) *Client {
	return &Client{
		Token:      token,
		Repo:       repo,
		Branch:     "main",
		BaseURL:    apiBase,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Retry: retry.RetryConfig{
			MaxAttempts: 3,
			Delay:       2 * time.Second,
			Backoff:     true,
		},
	}
}

type contentsResponse struct {
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// Publish creates or updates a file in the repository. An existing file's
// blob SHA is fetched first; the contents API requires it for updates.
func (c *Client) Publish(ctx context.Context, path, content, commitMessage string) error {
	return retry.WithRetry(ctx, c.Retry, func() error {
		sha, err := c.fileSHA(ctx, path)
		if err != nil {
			return err
		}

		body, err := json.Marshal(putRequest{
			Message: commitMessage,
			Content: base64.StdEncoding.EncodeToString([]byte(content)),
			Branch:  c.Branch,
			SHA:     sha,
		})
		if err != nil {
			return fmt.Errorf("error make JSON: %v", err)
		}

		url := fmt.Sprintf("%s/repos/%s/contents/%s", c.BaseURL, c.Repo, path)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
		if err != nil {
			return err
		}
		c.setHeaders(req)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("error HTTP request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("github API error: status %d: %s", resp.StatusCode, msg)
		}

		if sha == "" {
			logger.Info("Created file", "path", path)
		} else {
			logger.Info("Updated file", "path", path)
		}
		metrics.Global.IncrementFilesPublished()
		return nil
	})
}

// FetchFile returns the decoded content of a repository file, or "" with no
// error when the file does not exist.
func (c *Client) FetchFile(ctx context.Context, path string) (string, error) {
	resp, err := c.getContents(ctx, path)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Content)
	if err != nil {
		return "", fmt.Errorf("error decoding content: %v", err)
	}
	return string(decoded), nil
}

// fileSHA returns the blob SHA of an existing file or "" when absent.
func (c *Client) fileSHA(ctx context.Context, path string) (string, error) {
	resp, err := c.getContents(ctx, path)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.SHA, nil
}

func (c *Client) getContents(ctx context.Context, path string) (*contentsResponse, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", c.BaseURL, c.Repo, path, c.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API error: status %d", resp.StatusCode)
	}

	var contents contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return nil, fmt.Errorf("error parsing response: %v", err)
	}
	return &contents, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
}
