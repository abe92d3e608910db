// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/genai"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/internal/secrets"
	"github.com/pdiddy/report-engine/internal/websearch"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a research report on a topic",
	Long: `Generate plans a report structure, researches each section through web
search, writes the sections with the generation API, and compiles the result
to a Markdown file in the output directory.

API keys are read from .secrets/generation-api-key and .secrets/search-api-key,
or from the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	cfg := loadConfig()

	if v, _ := cmd.Flags().GetString("template"); v != "" {
		cfg.Template = v
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Generation.Model = v
		cfg.Tokens.Model = v
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	valid := false
	for _, t := range report.Templates() {
		if cfg.Template == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown template %q: use one of %s", cfg.Template, strings.Join(report.Templates(), ", "))
	}

	cfg.Generation.APIKey = secrets.Value(loadedSecrets, secrets.GenerationKey, cfg.Generation.APIKey)
	cfg.Search.APIKey = secrets.Value(loadedSecrets, secrets.SearchKey, cfg.Search.APIKey)
	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("generation API key missing: create .secrets/%s", secrets.GenerationKey)
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("search API key missing: create .secrets/%s", secrets.SearchKey)
	}

	store, cleanup, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := report.New(cfg,
		&genai.Client{Client: &http.Client{Timeout: cfg.Generation.Timeout}, Config: cfg.Generation},
		&websearch.Client{Client: &http.Client{Timeout: cfg.Search.Timeout}, Config: cfg.Search},
		store,
	)

	out, err := engine.GenerateReport(cmd.Context(), topic, os.Stdout)
	if err != nil {
		return err
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		fmt.Println(out)
	} else {
		path, err := report.Save(out, cfg.OutputDir, cfg.Template)
		if err != nil {
			return err
		}
		fmt.Printf("Report saved to %s\n", path)
	}

	if r := engine.CacheReport(); r != "" {
		fmt.Println(r)
	}
	return nil
}

func init() {
	generateCmd.Flags().String("template", "", "report template: standard, business, academic, or technical")
	generateCmd.Flags().String("output-dir", "", "directory for generated reports")
	generateCmd.Flags().String("model", "", "generation model identifier")
	generateCmd.Flags().Bool("no-cache", false, "disable the search result cache")
	generateCmd.Flags().Bool("no-save", false, "print the report instead of saving it")

	rootCmd.AddCommand(generateCmd)
}
