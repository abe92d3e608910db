// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/report-engine/pkg/types"
)

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "report-engine-test/0.1"},
		APIKey:     "test-key",
		Depth:      "advanced",
		MaxResults: 4,
	}
}

func TestSearchRequestShape(t *testing.T) {
	var captured searchRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"query":"go testing","results":[]}`)
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	c := &Client{Client: ts.Client(), Config: testCfg()}
	_, err := c.Search(context.Background(), "go testing")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if captured.Query != "go testing" {
		t.Errorf("query = %q", captured.Query)
	}
	if captured.APIKey != "test-key" {
		t.Errorf("api_key = %q", captured.APIKey)
	}
	if captured.SearchDepth != "advanced" {
		t.Errorf("search_depth = %q", captured.SearchDepth)
	}
	if captured.MaxResults != 4 {
		t.Errorf("max_results = %d", captured.MaxResults)
	}
	if !captured.IncludeRawContent {
		t.Error("include_raw_content should be true")
	}
}

func TestSearchResultMapping(t *testing.T) {
	resp := `{"query":"q","results":[
		{"title":"First","url":"https://a.example","content":"snippet a","raw_content":"full a","score":0.91},
		{"title":"Second","url":"https://b.example","content":"snippet b","raw_content":"","score":0.52}
	]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	c := &Client{Client: ts.Client(), Config: testCfg()}
	sources, err := c.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
	if sources[0].Title != "First" || sources[0].URL != "https://a.example" {
		t.Errorf("sources[0] = %+v", sources[0])
	}
	if sources[0].RawContent != "full a" {
		t.Errorf("RawContent = %q", sources[0].RawContent)
	}
	if sources[1].Content != "snippet b" {
		t.Errorf("sources[1].Content = %q", sources[1].Content)
	}
}

func TestSearchDefaults(t *testing.T) {
	var captured searchRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer ts.Close()

	old := searchAPIBase
	searchAPIBase = ts.URL
	defer func() { searchAPIBase = old }()

	cfg := testCfg()
	cfg.Depth = ""
	cfg.MaxResults = 0

	c := &Client{Client: ts.Client(), Config: cfg}
	if _, err := c.Search(context.Background(), "q"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if captured.SearchDepth != "advanced" {
		t.Errorf("search_depth = %q, want %q (default)", captured.SearchDepth, "advanced")
	}
	if captured.MaxResults != 4 {
		t.Errorf("max_results = %d, want 4 (default)", captured.MaxResults)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"429 rate limit", http.StatusTooManyRequests, "", "HTTP 429"},
		{"502 bad gateway", http.StatusBadGateway, "", "HTTP 502"},
		{"malformed JSON", http.StatusOK, `{broken`, "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			old := searchAPIBase
			searchAPIBase = ts.URL
			defer func() { searchAPIBase = old }()

			c := &Client{Client: ts.Client(), Config: testCfg()}
			_, err := c.Search(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := &Client{Client: http.DefaultClient, Config: testCfg()}
	_, err := c.Search(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSearchMissingAPIKey(t *testing.T) {
	cfg := testCfg()
	cfg.APIKey = ""
	c := &Client{Client: http.DefaultClient, Config: cfg}
	_, err := c.Search(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Errorf("error = %q", err.Error())
	}
}
