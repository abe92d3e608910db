// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call external APIs.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "report-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RateLimitConfig holds minimum inter-call spacing per external API.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is applied at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// GenerationDelay is the minimum spacing between generation API calls (default 1s).
	GenerationDelay time.Duration `json:"generation_delay" yaml:"generation_delay"`

	// SearchDelay is the minimum spacing between search API calls (default 500ms).
	SearchDelay time.Duration `json:"search_delay" yaml:"search_delay"`
}

// RetryConfig holds exponential backoff settings for external API calls.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial try (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BaseDelay is the backoff delay before the first retry (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// MaxDelay caps the backoff delay (default 60s).
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay"`
}

// CacheConfig holds settings for the search result cache.
type CacheConfig struct {
	// Enabled controls whether search results are cached.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the durable cache database.
	Dir string `json:"dir" yaml:"dir"`

	// TTL is the maximum age before an entry is treated as stale (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// MaxSize is the maximum number of in-memory entries (default 1000).
	MaxSize int `json:"max_size" yaml:"max_size"`

	// SimilarityThreshold is the minimum combined score for an approximate
	// match to count as a hit (default 0.75).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// Persist controls whether entries are written to durable storage.
	Persist bool `json:"persist" yaml:"persist"`
}

// TokenConfig holds context window budgeting settings.
type TokenConfig struct {
	// Model selects the context limit from the known-model table.
	Model string `json:"model" yaml:"model"`

	// ResponseBuffer is the token count reserved for the model response (default 2000).
	ResponseBuffer int `json:"response_buffer" yaml:"response_buffer"`

	// SourcesPercentage is the share of available tokens given to sources (default 0.6).
	SourcesPercentage float64 `json:"sources_percentage" yaml:"sources_percentage"`

	// MinSourceContent is the minimum characters kept per source (default 200).
	MinSourceContent int `json:"min_source_content" yaml:"min_source_content"`

	// MaxSourceContent is the maximum characters kept per source (default 1000).
	MaxSourceContent int `json:"max_source_content" yaml:"max_source_content"`
}

// GenerationConfig holds settings for the text generation API.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier sent with generation requests.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens is the response token cap per request (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// SearchConfig holds settings for the web search API.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the authentication key for the search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Depth selects the search depth: "basic" or "advanced" (default "advanced").
	Depth string `json:"depth" yaml:"depth"`

	// MaxResults is the maximum results per query (default 4).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// TotalSourceLimit caps the deduplicated sources per section (default 12).
	TotalSourceLimit int `json:"total_source_limit" yaml:"total_source_limit"`
}

// ReportConfig groups all settings for report generation.
type ReportConfig struct {
	// Template selects the report template: standard, business, academic, or technical.
	Template string `json:"template" yaml:"template"`

	// OutputDir is the directory for generated reports (default "reports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	RateLimit  RateLimitConfig  `json:"rate_limit" yaml:"rate_limit"`
	Retry      RetryConfig      `json:"retry" yaml:"retry"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Tokens     TokenConfig      `json:"tokens" yaml:"tokens"`
}

// DefaultReportConfig returns the standard configuration. Callers override
// individual fields before wiring components together.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Template:  "standard",
		OutputDir: "reports",
		Generation: GenerationConfig{
			HTTPConfig:  HTTPConfig{Timeout: 60 * time.Second, UserAgent: "report-engine/0.1"},
			Model:       "claude-3-5-sonnet-20241022",
			MaxTokens:   2000,
			Temperature: 0,
		},
		Search: SearchConfig{
			HTTPConfig:       HTTPConfig{Timeout: 30 * time.Second, UserAgent: "report-engine/0.1"},
			Depth:            "advanced",
			MaxResults:       4,
			TotalSourceLimit: 12,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			GenerationDelay: time.Second,
			SearchDelay:     500 * time.Millisecond,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:             true,
			Dir:                 "cache",
			TTL:                 24 * time.Hour,
			MaxSize:             1000,
			SimilarityThreshold: 0.75,
			Persist:             true,
		},
		Tokens: TokenConfig{
			Model:             "claude-3-5-sonnet-20241022",
			ResponseBuffer:    2000,
			SourcesPercentage: 0.6,
			MinSourceContent:  200,
			MaxSourceContent:  1000,
		},
	}
}
