// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the report-engine pipeline.
package types

// SourceRecord is a single retrieved web source. Records are immutable once
// fetched; cache entries hold their own copies.
type SourceRecord struct {
	// Title is the page or document title as returned by the search API.
	Title string `json:"title" yaml:"title"`

	// URL is the source location.
	URL string `json:"url" yaml:"url"`

	// Content is the extracted page content or summary.
	Content string `json:"content" yaml:"content"`

	// RawContent is the full page content when the search API provides it.
	RawContent string `json:"raw_content,omitempty" yaml:"raw_content,omitempty"`
}

// Body returns the usable text of the record: Content when present,
// otherwise RawContent.
func (s SourceRecord) Body() string {
	if s.Content != "" {
		return s.Content
	}
	return s.RawContent
}

// Section is one planned report section.
type Section struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Description says what the section should cover.
	Description string `json:"description" yaml:"description"`

	// NeedsResearch marks sections that require web research before writing.
	// Sections without research (intro, conclusion) are written from the plan context.
	NeedsResearch bool `json:"needs_research" yaml:"needs_research"`

	// Content holds the written section text after generation.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// ReportPlan is the planned report structure produced by the planning step.
type ReportPlan struct {
	// Title is the report title.
	Title string `json:"title" yaml:"title"`

	// Sections lists the planned sections in order.
	Sections []Section `json:"sections" yaml:"sections"`
}
