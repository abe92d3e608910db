// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/report-engine/pkg/types"
)

// Compile assembles the written sections into a single Markdown document
// with a template footer. Sections that already start with their own heading
// are kept as-is; others get one.
func Compile(plan *types.ReportPlan, template string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", plan.Title)

	for _, sec := range plan.Sections {
		if strings.HasPrefix(sec.Content, "## "+sec.Title) {
			fmt.Fprintf(&b, "%s\n\n", sec.Content)
		} else {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.Title, sec.Content)
		}
	}

	fmt.Fprintf(&b, "\n---\n*%s report generated on %s*",
		capitalize(template), time.Now().Format("2006-01-02 15:04:05"))
	return b.String()
}

// Save writes the report under outputDir with a timestamped filename and a
// short run ID, creating the directory if needed. It returns the file path.
func Save(content, outputDir, template string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	runID := uuid.NewString()[:8]
	filename := fmt.Sprintf("%s_report_%s_%s.md",
		template, time.Now().Format("20060102_150405"), runID)
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
