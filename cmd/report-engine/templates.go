// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/report"
)

var templateDescriptions = map[string]string{
	report.TemplateStandard:  "Balanced report with intro, main sections, conclusion",
	report.TemplateBusiness:  "Executive summary, market analysis, strategic recommendations",
	report.TemplateAcademic:  "Abstract, literature review, analysis, conclusions",
	report.TemplateTechnical: "Technical overview, specifications, implementation details",
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available report templates",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range report.Templates() {
			fmt.Printf("%-12s %s\n", t, templateDescriptions[t])
		}
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
