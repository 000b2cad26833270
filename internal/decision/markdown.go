package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders a Result as a Markdown report.
func RenderMarkdown(result *Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Strategy Verdict: %s\n\n", result.Strategy))
	sb.WriteString(fmt.Sprintf("## Recommendation: %s\n\n", result.Recommendation))

	sb.WriteString("## Rule Checklist\n\n")
	sb.WriteString("| # | Rule | Threshold | Actual | Status |\n")
	sb.WriteString("|---|------|-----------|--------|--------|\n")
	for i, r := range result.Rules {
		status := "OK"
		if r.Triggered {
			status = "TRIGGERED"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, r.Name, r.Threshold, r.Actual, status))
	}
	sb.WriteString("\n")

	sb.WriteString("## Summary\n\n")
	if result.Recommendation == RecommendationApprove {
		sb.WriteString("No rules triggered.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Verdict is %s due to:\n", result.Recommendation))
		for _, r := range result.Rules {
			if r.Triggered {
				sb.WriteString(fmt.Sprintf("- %s (actual: %s)\n", r.Name, r.Actual))
			}
		}
	}

	return sb.String()
}
