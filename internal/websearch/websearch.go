// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries a web search API and returns source records.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/report-engine/pkg/types"
)

// searchAPIBase is the web search endpoint. Declared as a var so tests can
// substitute an httptest server.
var searchAPIBase = "https://api.tavily.com/search"

// Client sends search requests to the web search API.
type Client struct {
	Client *http.Client
	Config types.SearchConfig
}

// Search runs a single query and returns the sources the API found.
func (c *Client) Search(ctx context.Context, query string) ([]types.SourceRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if c.Config.APIKey == "" {
		return nil, fmt.Errorf("search API key not configured")
	}

	depth := c.Config.Depth
	if depth == "" {
		depth = "advanced"
	}
	maxResults := c.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 4
	}

	body := searchRequest{
		APIKey:            c.Config.APIKey,
		Query:             query,
		SearchDepth:       depth,
		MaxResults:        maxResults,
		IncludeRawContent: true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchAPIBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.Config.UserAgent)

	httpClient := c.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Config.Timeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	var sources []types.SourceRecord
	for _, r := range sr.Results {
		sources = append(sources, types.SourceRecord{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			RawContent: r.RawContent,
		})
	}
	return sources, nil
}

// Search API JSON structures.
type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}
