package reporting

import (
	"fmt"
	"strings"
	"time"

	"intraday-strategy-lab/internal/decision"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Strategy Comparison\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	if len(r.Rows) == 0 {
		sb.WriteString("No strategy results available.\n")
		return sb.String()
	}

	sb.WriteString("| Strategy | Trades | Total PnL | Max DD | PF | Sharpe | Win Rate | Verdict |\n")
	sb.WriteString("|----------|--------|-----------|--------|----|--------|----------|--------|\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %s | %.2f | %.2f%% | %s |\n",
			row.Strategy, row.TotalTrades, row.TotalPnL, row.MaxDrawdown,
			formatProfitFactor(row.ProfitFactor), row.SharpeRatio,
			row.WinRate*100, row.Recommendation))
	}
	sb.WriteString("\n")

	for _, verdict := range r.Verdicts {
		sb.WriteString(decision.RenderMarkdown(verdict))
		sb.WriteString("\n")
	}

	return sb.String()
}
