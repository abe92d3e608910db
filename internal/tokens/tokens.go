// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tokens fits variable-length retrieved content into a fixed model
// context budget. Token counts are heuristic estimates derived from
// character length, not tokenizer output; callers must treat every figure
// as approximate.
package tokens

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/report-engine/pkg/types"
)

// charsPerToken is the estimation ratio: one token per 3.5 characters.
const charsPerToken = 3.5

const (
	defaultContextLimit      = 200000
	defaultResponseBuffer    = 2000
	defaultSourcesPercentage = 0.6
	defaultMinSourceContent  = 200
	defaultMaxSourceContent  = 1000

	// minUsefulTokensPerSource is the per-source share below which the
	// optimizer narrows to fewer, more complete sources.
	minUsefulTokensPerSource = 50

	// narrowedSourceCount is the reduced candidate set used when the even
	// split is too thin.
	narrowedSourceCount = 3

	// truncationMargin leaves room for the ellipsis marker when
	// accumulating sentences or paragraphs.
	truncationMargin = 20

	// minUsableChars is the threshold under which a truncation strategy is
	// considered to have failed and the next one runs.
	minUsableChars = 50
)

// modelContextLimits maps known model names to their context window size.
var modelContextLimits = map[string]int{
	"claude-3-5-sonnet-20241022": 200000,
	"claude-3-5-haiku-20241022":  200000,
	"claude-3-opus-20240229":     200000,
	"gpt-4":                      8192,
	"gpt-4-turbo":                128000,
	"gpt-4o":                     128000,
}

// Usage reports how an optimization call spent the context budget. It is
// recomputed per call and never persisted.
type Usage struct {
	PromptTokens    int     `json:"prompt_tokens" yaml:"prompt_tokens"`
	SourcesTokens   int     `json:"sources_tokens" yaml:"sources_tokens"`
	TotalTokens     int     `json:"total_tokens" yaml:"total_tokens"`
	ContextLimit    int     `json:"context_limit" yaml:"context_limit"`
	UsagePercentage float64 `json:"usage_percentage" yaml:"usage_percentage"`
}

// Optimizer selects and truncates sources against a context limit.
type Optimizer struct {
	contextLimit      int
	responseBuffer    int
	sourcesPercentage float64
	minSourceContent  int
	maxSourceContent  int
}

// New creates an Optimizer from cfg. The context limit comes from the
// known-model table; unknown models get the default 200k window.
func New(cfg types.TokenConfig) *Optimizer {
	o := &Optimizer{
		contextLimit:      defaultContextLimit,
		responseBuffer:    cfg.ResponseBuffer,
		sourcesPercentage: cfg.SourcesPercentage,
		minSourceContent:  cfg.MinSourceContent,
		maxSourceContent:  cfg.MaxSourceContent,
	}
	if limit, ok := modelContextLimits[cfg.Model]; ok {
		o.contextLimit = limit
	}
	if o.responseBuffer <= 0 {
		o.responseBuffer = defaultResponseBuffer
	}
	if o.sourcesPercentage <= 0 {
		o.sourcesPercentage = defaultSourcesPercentage
	}
	if o.minSourceContent <= 0 {
		o.minSourceContent = defaultMinSourceContent
	}
	if o.maxSourceContent <= 0 {
		o.maxSourceContent = defaultMaxSourceContent
	}
	return o
}

// Estimate approximates the token count of text as len/3.5, rounded down.
func Estimate(text string) int {
	return int(float64(len(text)) / charsPerToken)
}

// ContextLimit returns the optimizer's context window size.
func (o *Optimizer) ContextLimit() int {
	return o.contextLimit
}

// Optimize decides how many sources and how much of each fit alongside the
// prompt. When the prompt alone exhausts the budget it returns no sources
// and a usage record at 100%, a degraded-but-defined result the caller
// detects through the usage report rather than an error.
func (o *Optimizer) Optimize(sources []types.SourceRecord, promptText string) ([]types.SourceRecord, Usage) {
	available := o.contextLimit - o.responseBuffer
	promptTokens := Estimate(promptText)
	remaining := available - promptTokens

	if remaining <= 0 {
		return nil, Usage{
			PromptTokens:    promptTokens,
			TotalTokens:     promptTokens,
			ContextLimit:    o.contextLimit,
			UsagePercentage: 100.0,
		}
	}

	budget := int(float64(available) * o.sourcesPercentage)
	if remaining < budget {
		budget = remaining
	}

	selected := o.fitSources(sources, budget)

	sourcesTokens := 0
	for _, src := range selected {
		sourcesTokens += Estimate(formatSource(src, 0))
	}
	total := promptTokens + sourcesTokens

	return selected, Usage{
		PromptTokens:    promptTokens,
		SourcesTokens:   sourcesTokens,
		TotalTokens:     total,
		ContextLimit:    o.contextLimit,
		UsagePercentage: float64(total) / float64(o.contextLimit) * 100,
	}
}

// fitSources splits the budget evenly across sources, narrowing to at most
// three when the even share is too thin to be useful, then truncates each
// source's content to its character share.
func (o *Optimizer) fitSources(sources []types.SourceRecord, budget int) []types.SourceRecord {
	if len(sources) == 0 {
		return nil
	}

	perSource := budget / len(sources)
	if perSource < minUsefulTokensPerSource {
		n := narrowedSourceCount
		if len(sources) < n {
			n = len(sources)
		}
		sources = sources[:n]
		perSource = budget / n
	}

	charBudget := int(float64(perSource) * charsPerToken)
	if charBudget > o.maxSourceContent {
		charBudget = o.maxSourceContent
	}
	if charBudget < o.minSourceContent {
		charBudget = o.minSourceContent
	}

	var selected []types.SourceRecord
	for _, src := range sources {
		content := src.Body()
		if content == "" {
			continue
		}
		src.Content = truncate(content, charBudget)
		selected = append(selected, src)
	}
	return selected
}

// truncate cuts content to at most limit characters, preferring whole
// sentences, then whole paragraphs, then a hard cut with an ellipsis.
func truncate(content string, limit int) string {
	if len(content) <= limit {
		return content
	}

	result := truncateSentences(content, limit)
	if len(strings.TrimSpace(result)) < minUsableChars {
		result = truncateParagraphs(content, limit)
	}
	if len(strings.TrimSpace(result)) < minUsableChars {
		result = hardCut(content, limit-3) + "..."
	}
	return strings.TrimSpace(result)
}

// hardCut slices content to at most n bytes without splitting a rune.
func hardCut(content string, n int) string {
	if n >= len(content) {
		return content
	}
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}
	return content[:n]
}

// truncateSentences accumulates whole sentences until the next one would
// overrun the limit minus the safety margin.
func truncateSentences(content string, limit int) string {
	var b strings.Builder
	for _, sentence := range splitSentences(content) {
		if b.Len()+len(sentence)+1 > limit-truncationMargin {
			break
		}
		b.WriteString(sentence)
		b.WriteString(". ")
	}
	return b.String()
}

// truncateParagraphs accumulates whole paragraphs, taking a partial final
// paragraph when at least minUsableChars of budget remain.
func truncateParagraphs(content string, limit int) string {
	var b strings.Builder
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if b.Len()+len(para) <= limit-truncationMargin {
			b.WriteString(para)
			b.WriteString("\n\n")
			continue
		}
		if room := limit - b.Len() - 3; room > minUsableChars {
			b.WriteString(hardCut(para, room))
			b.WriteString("...")
		}
		break
	}
	return b.String()
}

// splitSentences splits text on sentence-ending punctuation (. ! ?),
// dropping empty fragments.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}

// formatSource renders a source the way it appears in the prompt. A zero
// index omits numbering, which keeps token estimation consistent with the
// final prompt layout.
func formatSource(src types.SourceRecord, index int) string {
	label := "Source"
	if index > 0 {
		label = fmt.Sprintf("Source %d", index)
	}
	return fmt.Sprintf("%s: %s\nURL: %s\nContent: %s\n---", label, src.Title, src.URL, src.Content)
}

// FormatSources renders the selected sources for prompt inclusion.
func FormatSources(sources []types.SourceRecord) string {
	var b strings.Builder
	for i, src := range sources {
		b.WriteString("\n")
		b.WriteString(formatSource(src, i+1))
	}
	return b.String()
}

// UsageReport formats a human-readable budget summary.
func UsageReport(u Usage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Token usage: %d/%d (%.1f%%)\n", u.TotalTokens, u.ContextLimit, u.UsagePercentage)
	fmt.Fprintf(&b, "  prompt: %d, sources: %d", u.PromptTokens, u.SourcesTokens)
	if u.UsagePercentage > 95 {
		b.WriteString("\n  warning: near context limit, truncation likely")
	} else if u.UsagePercentage > 90 {
		b.WriteString("\n  warning: high context usage")
	}
	return b.String()
}
