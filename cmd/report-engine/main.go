// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the report-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/secrets"
	"github.com/pdiddy/report-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the report-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "report-engine",
	Short: "Research report generation from web sources",
	Long: `report-engine assembles multi-section research reports by orchestrating a
text generation API and a web search API. Reports are planned, researched
section by section, and compiled to Markdown.

Search results are cached between runs; generation and search calls are rate
limited and retried with exponential backoff.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./report-engine.yaml or ~/.config/report-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("report-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "report-engine"))
		}
	}

	viper.SetEnvPrefix("REPORT_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the report configuration from defaults overlaid with any
// values set in the config file or environment.
func loadConfig() types.ReportConfig {
	cfg := types.DefaultReportConfig()

	if v := viper.GetString("template"); v != "" {
		cfg.Template = v
	}
	if v := viper.GetString("output_dir"); v != "" {
		cfg.OutputDir = v
	}

	if v := viper.GetString("generation.model"); v != "" {
		cfg.Generation.Model = v
		cfg.Tokens.Model = v
	}
	if viper.IsSet("generation.max_tokens") {
		cfg.Generation.MaxTokens = viper.GetInt("generation.max_tokens")
	}
	if viper.IsSet("generation.temperature") {
		cfg.Generation.Temperature = viper.GetFloat64("generation.temperature")
	}
	if v := viper.GetString("generation.api_key"); v != "" {
		cfg.Generation.APIKey = v
	}

	if v := viper.GetString("search.depth"); v != "" {
		cfg.Search.Depth = v
	}
	if viper.IsSet("search.max_results") {
		cfg.Search.MaxResults = viper.GetInt("search.max_results")
	}
	if viper.IsSet("search.total_source_limit") {
		cfg.Search.TotalSourceLimit = viper.GetInt("search.total_source_limit")
	}
	if v := viper.GetString("search.api_key"); v != "" {
		cfg.Search.APIKey = v
	}

	if viper.IsSet("rate_limit.enabled") {
		cfg.RateLimit.Enabled = viper.GetBool("rate_limit.enabled")
	}
	if viper.IsSet("rate_limit.generation_delay") {
		cfg.RateLimit.GenerationDelay = viper.GetDuration("rate_limit.generation_delay")
	}
	if viper.IsSet("rate_limit.search_delay") {
		cfg.RateLimit.SearchDelay = viper.GetDuration("rate_limit.search_delay")
	}

	if viper.IsSet("retry.max_retries") {
		cfg.Retry.MaxRetries = viper.GetInt("retry.max_retries")
	}
	if viper.IsSet("retry.base_delay") {
		cfg.Retry.BaseDelay = viper.GetDuration("retry.base_delay")
	}
	if viper.IsSet("retry.max_delay") {
		cfg.Retry.MaxDelay = viper.GetDuration("retry.max_delay")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if viper.IsSet("cache.ttl") {
		cfg.Cache.TTL = viper.GetDuration("cache.ttl")
	}
	if viper.IsSet("cache.max_size") {
		cfg.Cache.MaxSize = viper.GetInt("cache.max_size")
	}
	if viper.IsSet("cache.similarity_threshold") {
		cfg.Cache.SimilarityThreshold = viper.GetFloat64("cache.similarity_threshold")
	}
	if viper.IsSet("cache.persist") {
		cfg.Cache.Persist = viper.GetBool("cache.persist")
	}

	if viper.IsSet("tokens.response_buffer") {
		cfg.Tokens.ResponseBuffer = viper.GetInt("tokens.response_buffer")
	}
	if viper.IsSet("tokens.sources_percentage") {
		cfg.Tokens.SourcesPercentage = viper.GetFloat64("tokens.sources_percentage")
	}
	if viper.IsSet("tokens.min_source_content") {
		cfg.Tokens.MinSourceContent = viper.GetInt("tokens.min_source_content")
	}
	if viper.IsSet("tokens.max_source_content") {
		cfg.Tokens.MaxSourceContent = viper.GetInt("tokens.max_source_content")
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
