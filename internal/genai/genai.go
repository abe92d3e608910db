// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai calls a messages-style text generation API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/report-engine/pkg/types"
)

// messagesAPIBase is the generation API messages endpoint. Declared as a
// var so tests can substitute an httptest server.
var messagesAPIBase = "https://api.anthropic.com/v1/messages"

const apiVersion = "2023-06-01"

// Client sends generation requests to a messages-style API.
type Client struct {
	Client *http.Client
	Config types.GenerationConfig
}

// Generate sends a single-turn user prompt and returns the model's text.
// maxTokens overrides the configured response cap when positive.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.Config.APIKey == "" {
		return "", fmt.Errorf("generation API key not configured")
	}
	if maxTokens <= 0 {
		maxTokens = c.Config.MaxTokens
	}

	body := messagesRequest{
		Model:       c.Config.Model,
		MaxTokens:   maxTokens,
		Temperature: c.Config.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesAPIBase, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.Config.UserAgent)
	req.Header.Set("x-api-key", c.Config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	httpClient := c.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Config.Timeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned HTTP %d", resp.StatusCode)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("parsing generation response: %w", err)
	}

	for _, block := range mr.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("generation response contained no text content")
}

// Messages API JSON structures.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
