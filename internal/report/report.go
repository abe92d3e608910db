// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report orchestrates the report generation pipeline: plan the
// structure, research and write each section, compile the result.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/report-engine/internal/cache"
	"github.com/pdiddy/report-engine/internal/parse"
	"github.com/pdiddy/report-engine/internal/ratelimit"
	"github.com/pdiddy/report-engine/internal/retry"
	"github.com/pdiddy/report-engine/internal/tokens"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Generator produces text from a single-turn prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Searcher runs a web search query and returns source records.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SourceRecord, error)
}

// Response token caps per pipeline step.
const (
	planMaxTokens       = 1500
	queryMaxTokens      = 500
	contextualMaxTokens = 1000
)

// Engine drives report generation against a generator and a searcher. The
// search cache is optional; a nil cache disables result reuse.
type Engine struct {
	cfg       types.ReportConfig
	generator Generator
	searcher  Searcher
	limiter   *ratelimit.Limiter
	cache     *cache.Cache
	optimizer *tokens.Optimizer
}

// New builds an engine from the configuration and its collaborators.
func New(cfg types.ReportConfig, gen Generator, searcher Searcher, store *cache.Cache) *Engine {
	spacing := map[string]time.Duration{}
	if cfg.RateLimit.Enabled {
		spacing[ratelimit.Generation] = cfg.RateLimit.GenerationDelay
		spacing[ratelimit.Search] = cfg.RateLimit.SearchDelay
	}
	return &Engine{
		cfg:       cfg,
		generator: gen,
		searcher:  searcher,
		limiter:   ratelimit.New(spacing),
		cache:     store,
		optimizer: tokens.New(cfg.Tokens),
	}
}

// GenerateReport produces a complete Markdown report on the topic. Progress
// is written to w. Individual step failures degrade to fallbacks; the only
// hard failure is context cancellation.
func (e *Engine) GenerateReport(ctx context.Context, topic string, w io.Writer) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("empty report topic")
	}

	fmt.Fprintf(w, "Generating %s report on: %s\n", e.cfg.Template, topic)

	plan := e.planReport(ctx, topic, w)
	fmt.Fprintf(w, "Plan ready with %d sections\n", len(plan.Sections))

	for i := range plan.Sections {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		sec := &plan.Sections[i]
		fmt.Fprintf(w, "Section %d/%d: %s\n", i+1, len(plan.Sections), sec.Title)

		if sec.NeedsResearch {
			sec.Content = e.researchSection(ctx, *sec, topic, w)
		} else {
			sec.Content = e.contextualSection(ctx, *sec, plan.Sections, topic, w)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Compile(plan, e.cfg.Template), nil
}

// generate runs a rate-limited generation call under the retry policy.
func (e *Engine) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return retry.Do(ctx, e.cfg.Retry, func(ctx context.Context) (string, error) {
		if err := e.limiter.Wait(ctx, ratelimit.Generation); err != nil {
			return "", err
		}
		return e.generator.Generate(ctx, prompt, maxTokens)
	})
}

// planReport asks the model for a report structure. Any failure falls back
// to a static plan for the configured template.
func (e *Engine) planReport(ctx context.Context, topic string, w io.Writer) *types.ReportPlan {
	text, err := e.generate(ctx, structurePrompt(e.cfg.Template, topic), planMaxTokens)
	if err == nil {
		if plan, ok := decodePlan(text); ok {
			return plan
		}
		err = fmt.Errorf("model output contained no usable plan")
	}
	fmt.Fprintf(w, "warning: planning failed (%v), using fallback plan\n", err)
	return fallbackPlan(e.cfg.Template, topic)
}

// decodePlan extracts and validates a plan object from model output.
func decodePlan(text string) (*types.ReportPlan, bool) {
	obj, ok := parse.ReportPlan(text)
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	var plan types.ReportPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, false
	}
	if plan.Title == "" || len(plan.Sections) == 0 {
		return nil, false
	}
	for _, s := range plan.Sections {
		if s.Title == "" {
			return nil, false
		}
	}
	return &plan, true
}

// fallbackPlan returns a fixed three-section plan for the template.
func fallbackPlan(template, topic string) *types.ReportPlan {
	switch template {
	case TemplateBusiness:
		return &types.ReportPlan{
			Title: fmt.Sprintf("Business Analysis: %s", topic),
			Sections: []types.Section{
				{Title: "Executive Summary", Description: fmt.Sprintf("Overview of %s", topic)},
				{Title: "Market Analysis", Description: fmt.Sprintf("Market analysis of %s", topic), NeedsResearch: true},
				{Title: "Strategic Recommendations", Description: "Recommendations"},
			},
		}
	case TemplateAcademic:
		return &types.ReportPlan{
			Title: fmt.Sprintf("Academic Review: %s", topic),
			Sections: []types.Section{
				{Title: "Abstract", Description: fmt.Sprintf("Abstract for %s", topic)},
				{Title: "Literature Review", Description: fmt.Sprintf("Literature review of %s", topic), NeedsResearch: true},
				{Title: "Conclusion", Description: "Conclusions"},
			},
		}
	default:
		return &types.ReportPlan{
			Title: fmt.Sprintf("Research Report: %s", topic),
			Sections: []types.Section{
				{Title: "Introduction", Description: fmt.Sprintf("Overview of %s", topic)},
				{Title: "Main Analysis", Description: fmt.Sprintf("Core analysis of %s", topic), NeedsResearch: true},
				{Title: "Conclusion", Description: "Summary and insights"},
			},
		}
	}
}

// researchSection generates queries, gathers sources, and writes the section.
func (e *Engine) researchSection(ctx context.Context, sec types.Section, topic string, w io.Writer) string {
	queries := e.searchQueries(ctx, sec, topic, w)
	sources := e.searchWeb(ctx, queries, topic, sectionType(sec.Title), w)
	return e.writeSection(ctx, sec, sources, topic, w)
}

// searchQueries asks the model for targeted queries, with a deterministic
// fallback when the output cannot be parsed.
func (e *Engine) searchQueries(ctx context.Context, sec types.Section, topic string, w io.Writer) []string {
	text, err := e.generate(ctx, queryPrompt(sec.Title, sec.Description, topic), queryMaxTokens)
	if err == nil {
		if queries, ok := parse.SearchQueries(text); ok {
			return queries
		}
		err = fmt.Errorf("model output contained no query list")
	}
	fmt.Fprintf(w, "warning: query generation failed (%v), using fallback queries\n", err)
	return []string{
		fmt.Sprintf("%s %s", topic, sec.Title),
		fmt.Sprintf("%s latest developments", sec.Description),
	}
}

// searchWeb runs the queries through the cache and the search API, then
// deduplicates by URL and applies the total source limit. Failed queries are
// skipped, not fatal.
func (e *Engine) searchWeb(ctx context.Context, queries []string, topic, secType string, w io.Writer) []types.SourceRecord {
	var all []types.SourceRecord
	for _, q := range queries {
		if e.cache != nil {
			if results, ok := e.cache.Lookup(q, topic, secType); ok {
				fmt.Fprintf(w, "Cache hit: %s\n", q)
				all = append(all, results...)
				continue
			}
		}

		fmt.Fprintf(w, "Searching: %s\n", q)
		results, err := retry.Do(ctx, e.cfg.Retry, func(ctx context.Context) ([]types.SourceRecord, error) {
			if err := e.limiter.Wait(ctx, ratelimit.Search); err != nil {
				return nil, err
			}
			return e.searcher.Search(ctx, q)
		})
		if err != nil {
			fmt.Fprintf(w, "warning: search failed for %q: %v\n", q, err)
			continue
		}

		if e.cache != nil {
			if err := e.cache.Store(q, results, topic, secType); err != nil {
				fmt.Fprintf(w, "warning: caching results for %q: %v\n", q, err)
			}
		}
		all = append(all, results...)
	}

	seen := make(map[string]bool)
	var unique []types.SourceRecord
	for _, r := range all {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		unique = append(unique, r)
	}

	limit := e.cfg.Search.TotalSourceLimit
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// writeSection writes a research-backed section, fitting the sources to the
// token budget first. A generation failure yields placeholder text.
func (e *Engine) writeSection(ctx context.Context, sec types.Section, sources []types.SourceRecord, topic string, w io.Writer) string {
	secType := sectionType(sec.Title)

	// Size the budget against the prompt without sources, then fill in
	// whatever fits.
	initial := sectionPrompt(e.cfg.Template, secType, sec.Title, sec.Description, topic, "")
	optimized, usage := e.optimizer.Optimize(sources, initial)
	sourcesText := tokens.FormatSources(optimized)
	fmt.Fprintf(w, "Token usage for %s: %.1f%%\n", sec.Title, usage.UsagePercentage)

	prompt := sectionPrompt(e.cfg.Template, secType, sec.Title, sec.Description, topic, sourcesText)
	text, err := e.generate(ctx, prompt, e.cfg.Generation.MaxTokens)
	if err != nil {
		fmt.Fprintf(w, "warning: writing %s failed: %v\n", sec.Title, err)
		return fmt.Sprintf("## %s\n\nContent for %s could not be generated due to an error.", sec.Title, sec.Description)
	}
	return text
}

// contextualSection writes an intro/conclusion style section from the plan
// context instead of research sources.
func (e *Engine) contextualSection(ctx context.Context, sec types.Section, all []types.Section, topic string, w io.Writer) string {
	var b strings.Builder
	for _, s := range all {
		if s.NeedsResearch {
			fmt.Fprintf(&b, "- %s: %s\n", s.Title, s.Description)
		}
	}

	prompt := contextualPrompt(e.cfg.Template, sectionType(sec.Title), sec.Title, sec.Description, topic, strings.TrimRight(b.String(), "\n"))
	text, err := e.generate(ctx, prompt, contextualMaxTokens)
	if err != nil {
		fmt.Fprintf(w, "warning: writing %s failed: %v\n", sec.Title, err)
		return fmt.Sprintf("## %s\n\nThis section could not be generated due to an error.", sec.Title)
	}
	return text
}

// CacheReport returns the cache performance summary, or an empty string when
// caching is disabled.
func (e *Engine) CacheReport() string {
	if e.cache == nil {
		return ""
	}
	return e.cache.Report()
}
