package reporting

import (
	"fmt"
	"math"
	"strings"
)

// RenderCSV renders comparison rows as a CSV string.
func RenderCSV(rows []ComparisonRow) string {
	var sb strings.Builder

	sb.WriteString("strategy,total_trades,total_pnl,max_drawdown,profit_factor,sharpe_ratio,win_rate,recommendation\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.2f,%.2f,%s,%.4f,%.4f,%s\n",
			r.Strategy,
			r.TotalTrades,
			r.TotalPnL,
			r.MaxDrawdown,
			formatProfitFactor(r.ProfitFactor),
			r.SharpeRatio,
			r.WinRate,
			r.Recommendation,
		))
	}

	return sb.String()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", pf)
}
