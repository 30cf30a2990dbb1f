package rag

import (
	"fmt"
	"strings"
)

// FormatSummaryText renders a CVSummary into the single human-readable block
// that is embedded as the CV's summary document and shown by list_all_cvs.
// Field order is fixed; null/empty fields are omitted.
func FormatSummaryText(summary *CVSummary, filename string) string {
	parts := []string{fmt.Sprintf("CV Filename: %s", filename)}

	if summary.Name != "" {
		parts = append(parts, fmt.Sprintf("Candidate Name: %s", summary.Name))
	}
	if summary.CurrentTitle != "" {
		parts = append(parts, fmt.Sprintf("Current Title: %s", summary.CurrentTitle))
	}
	if summary.YearsExperience != nil {
		parts = append(parts, fmt.Sprintf("Years of Experience: %g", *summary.YearsExperience))
	}
	if len(summary.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Skills: %s", strings.Join(summary.Skills, ", ")))
	}
	if len(summary.Education) > 0 {
		parts = append(parts, fmt.Sprintf("Education: %s", strings.Join(summary.Education, " | ")))
	}
	if len(summary.Certifications) > 0 {
		parts = append(parts, fmt.Sprintf("Certifications: %s", strings.Join(summary.Certifications, ", ")))
	}
	if len(summary.WorkHistory) > 0 {
		parts = append(parts, fmt.Sprintf("Work History: %s", strings.Join(summary.WorkHistory, " | ")))
	}
	if len(summary.Emails) > 0 {
		parts = append(parts, fmt.Sprintf("Emails: %s", strings.Join(summary.Emails, " | ")))
	}

	return strings.Join(parts, "\n")
}
