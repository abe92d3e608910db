// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
)

// Report templates.
const (
	TemplateStandard  = "standard"
	TemplateBusiness  = "business"
	TemplateAcademic  = "academic"
	TemplateTechnical = "technical"
)

// Templates lists the selectable report templates.
func Templates() []string {
	return []string{TemplateStandard, TemplateBusiness, TemplateAcademic, TemplateTechnical}
}

const standardStructurePrompt = `Plan a comprehensive research report on: %[1]s

Create a report structure with 4-6 sections following this template:
- Introduction (brief overview, no research needed)
- 2-4 main content sections (each needs research)
- Conclusion (summary and insights, no research needed)

Return ONLY valid JSON in this exact format:
{
    "title": "Professional report title for %[1]s",
    "sections": [
        {"title": "Introduction", "description": "Brief overview of the topic", "needs_research": false},
        {"title": "Section Name", "description": "What this section covers", "needs_research": true},
        {"title": "Conclusion", "description": "Summary and key insights", "needs_research": false}
    ]
}`

const businessStructurePrompt = `Plan a business analysis report on: %[1]s

Create a business-focused structure with these sections:
- Executive Summary (no research needed)
- Market Overview (needs research)
- Competitive Analysis (needs research)
- Key Trends & Opportunities (needs research)
- Strategic Recommendations (no research needed)

Return ONLY valid JSON in this exact format:
{
    "title": "Business Analysis: %[1]s",
    "sections": [
        {"title": "Executive Summary", "description": "High-level overview and key findings", "needs_research": false},
        {"title": "Market Overview", "description": "Current market size, growth, and dynamics", "needs_research": true},
        {"title": "Competitive Analysis", "description": "Key players and competitive landscape", "needs_research": true},
        {"title": "Key Trends & Opportunities", "description": "Emerging trends and market opportunities", "needs_research": true},
        {"title": "Strategic Recommendations", "description": "Actionable insights and next steps", "needs_research": false}
    ]
}`

const academicStructurePrompt = `Plan an academic research report on: %[1]s

Create an academic-style structure with these sections:
- Abstract (no research needed)
- Introduction & Background (needs research)
- Literature Review (needs research)
- Current Research & Findings (needs research)
- Discussion & Analysis (needs research)
- Conclusion & Future Directions (no research needed)

Return ONLY valid JSON in this exact format:
{
    "title": "Academic Review: %[1]s",
    "sections": [
        {"title": "Abstract", "description": "Summary of the research and key findings", "needs_research": false},
        {"title": "Introduction & Background", "description": "Context and foundational knowledge", "needs_research": true},
        {"title": "Literature Review", "description": "Review of existing research and publications", "needs_research": true},
        {"title": "Current Research & Findings", "description": "Latest research developments and discoveries", "needs_research": true},
        {"title": "Discussion & Analysis", "description": "Analysis of findings and implications", "needs_research": true},
        {"title": "Conclusion & Future Directions", "description": "Summary and future research directions", "needs_research": false}
    ]
}`

const queryGenerationPrompt = `Generate 3-4 specific web search queries for researching this section:

Section: %s
Description: %s
Overall Topic: %s

Requirements:
- Queries should be specific and targeted
- Include recent year where relevant
- Focus on authoritative sources
- Avoid overly broad queries

Return ONLY a JSON array of strings:
["query 1", "query 2", "query 3"]`

const sectionWriterPrompt = `Write a comprehensive section for a research report.

Section Title: %[1]s
Section Focus: %[2]s
Overall Report Topic: %[3]s

Guidelines:
- Write %[4]s words
- Use professional, informative tone
- Include specific details and examples from sources
- Use proper markdown formatting
- Start with ## %[1]s
- Include a "Sources" subsection at the end
- Cite sources as numbered references [1], [2], etc.

Available Research Sources:
%[5]s

Write the complete section now:`

const technicalWriterPrompt = `Write a technical overview section.

Section Title: %[1]s
Technical Focus: %[2]s
Overall Topic: %[3]s

Guidelines:
- Write %[4]s words
- Use ## %[1]s
- Include technical specifications and details
- Use precise terminology
- Focus on architecture and implementation
- Cite technical documentation and sources

Available Technical Sources:
%[5]s

Write the technical overview section now:`

const literatureReviewPrompt = `Write a literature review section for an academic report.

Section Title: %[1]s
Research Focus: %[2]s
Overall Topic: %[3]s

Guidelines:
- Write %[4]s words
- Use ## %[1]s
- Organize by themes or chronology
- Synthesize findings from multiple sources
- Identify gaps in current research
- Use formal academic language
- Include extensive citations [1], [2], etc.

Available Research Sources:
%[5]s

Write the literature review section now:`

const introductionPrompt = `Write an introduction section for a research report.

Report Topic: %[3]s
Section Title: %[1]s
Section Purpose: %[2]s

Main sections that will be covered:
%[4]s

Guidelines for introduction:
- Write 150-250 words
- Use professional tone
- Use markdown formatting with ## %[1]s
- Provide overview and context
- Set up the structure of the report
- No citations needed (this synthesizes the report)

Write the complete introduction section now:`

const conclusionPrompt = `Write a conclusion section for a research report.

Report Topic: %[3]s
Section Title: %[1]s
Section Purpose: %[2]s

Main sections that were covered:
%[4]s

Guidelines for conclusion:
- Write 150-250 words
- Use professional tone
- Use markdown formatting with ## %[1]s
- Summarize key insights and implications
- Provide actionable takeaways
- No citations needed (this synthesizes the report)

Write the complete conclusion section now:`

const executiveSummaryPrompt = `Write an executive summary for a business report.

Report Topic: %[3]s
Section Title: %[1]s
Key sections covered:
%[4]s

Guidelines:
- Write 200-300 words maximum
- Use ## %[1]s
- Lead with the most important insight
- Include 3-4 key findings
- End with primary recommendation
- Write for executives (concise, action-oriented)

Write the executive summary now:`

const recommendationsPrompt = `Write strategic recommendations for a business report.

Report Topic: %[3]s
Section Title: %[1]s
Based on analysis from:
%[4]s

Guidelines:
- Write 200-300 words
- Use ## %[1]s
- Provide 3-5 specific, actionable recommendations
- Prioritize recommendations by impact and feasibility
- Use numbered list format for clarity

Write the recommendations section now:`

const abstractPrompt = `Write an academic abstract for a research report.

Report Topic: %[3]s
Section Title: %[1]s
Sections covered:
%[4]s

Guidelines:
- Write 150-200 words
- Use ## %[1]s
- Cover background, approach, key findings, and implications
- Use formal academic tone
- No citations in the abstract

Write the academic abstract now:`

// structurePrompt returns the planning prompt for the template.
func structurePrompt(template, topic string) string {
	switch template {
	case TemplateBusiness:
		return fmt.Sprintf(businessStructurePrompt, topic)
	case TemplateAcademic:
		return fmt.Sprintf(academicStructurePrompt, topic)
	default:
		return fmt.Sprintf(standardStructurePrompt, topic)
	}
}

// queryPrompt returns the search query generation prompt for a section.
func queryPrompt(sectionTitle, sectionDescription, topic string) string {
	return fmt.Sprintf(queryGenerationPrompt, sectionTitle, sectionDescription, topic)
}

// sectionPrompt returns the research-backed writing prompt for a section.
// The sources argument may be empty when the prompt is used only to size
// the token budget.
func sectionPrompt(template, sectionType, title, description, topic, sources string) string {
	prompt := sectionWriterPrompt
	switch {
	case template == TemplateAcademic && sectionType == sectionLiteratureReview:
		prompt = literatureReviewPrompt
	case template == TemplateTechnical && sectionType == sectionTechnicalOverview:
		prompt = technicalWriterPrompt
	}
	return fmt.Sprintf(prompt, title, description, topic, wordCount(sectionType), sources)
}

// contextualPrompt returns the prompt for sections written from report
// context instead of research sources (intro, conclusion, summaries).
func contextualPrompt(template, sectionType, title, description, topic, contextSections string) string {
	prompt := introductionPrompt
	switch sectionType {
	case sectionIntroduction, sectionExecutiveSummary, sectionAbstract:
		switch template {
		case TemplateBusiness:
			prompt = executiveSummaryPrompt
		case TemplateAcademic:
			prompt = abstractPrompt
		}
	case sectionConclusion, sectionRecommendations:
		if template == TemplateBusiness {
			prompt = recommendationsPrompt
		} else {
			prompt = conclusionPrompt
		}
	}
	return fmt.Sprintf(prompt, title, description, topic, contextSections)
}

// Section types drive prompt and word count selection.
const (
	sectionIntroduction      = "introduction"
	sectionConclusion        = "conclusion"
	sectionExecutiveSummary  = "executive_summary"
	sectionLiteratureReview  = "literature_review"
	sectionAbstract          = "abstract"
	sectionRecommendations   = "recommendations"
	sectionTechnicalOverview = "technical_overview"
	sectionDefault           = "default"
)

// sectionType classifies a section from keywords in its title.
func sectionType(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "intro"):
		return sectionIntroduction
	case strings.Contains(t, "conclusion"):
		return sectionConclusion
	case strings.Contains(t, "executive"), strings.Contains(t, "summary"):
		return sectionExecutiveSummary
	case strings.Contains(t, "literature"), strings.Contains(t, "review"):
		return sectionLiteratureReview
	case strings.Contains(t, "abstract"):
		return sectionAbstract
	case strings.Contains(t, "recommendation"):
		return sectionRecommendations
	case strings.Contains(t, "technical"), strings.Contains(t, "architecture"):
		return sectionTechnicalOverview
	default:
		return sectionDefault
	}
}

// wordCount returns the target word count range for a section type.
func wordCount(secType string) string {
	switch secType {
	case sectionIntroduction, sectionConclusion:
		return "150-250"
	case sectionExecutiveSummary, sectionRecommendations:
		return "200-300"
	case sectionLiteratureReview:
		return "400-600"
	default:
		return "300-500"
	}
}
