// Package reporting produces strategy comparison reports from stored
// results.
package reporting

import (
	"sort"
	"time"

	"intraday-strategy-lab/internal/decision"
	"intraday-strategy-lab/internal/domain"
)

// ComparisonRow is one strategy's line in the comparison table.
type ComparisonRow struct {
	Strategy       string
	TotalTrades    int
	TotalPnL       float64
	MaxDrawdown    float64
	ProfitFactor   float64
	SharpeRatio    float64
	WinRate        float64
	Recommendation decision.Recommendation
}

// Report is a full comparison report across strategies.
type Report struct {
	GeneratedAt time.Time
	Rows        []ComparisonRow
	// Verdicts holds the full rule trace per strategy, in row order.
	Verdicts []*decision.Result
}

// Compare builds comparison rows from results, ranked by total pnl
// descending. Ties break by strategy name so output is deterministic.
func Compare(results []*domain.StrategyResult, evaluator *decision.Evaluator) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(results))
	for _, r := range results {
		row := ComparisonRow{
			Strategy:     r.StrategyName,
			TotalTrades:  r.TotalTrades,
			TotalPnL:     r.TotalPnL,
			MaxDrawdown:  r.MaxDrawdown,
			ProfitFactor: r.ProfitFactor,
			SharpeRatio:  r.SharpeRatio,
			WinRate:      r.WinRate(),
		}
		if evaluator != nil {
			row.Recommendation = evaluator.Evaluate(r).Recommendation
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalPnL != rows[j].TotalPnL {
			return rows[i].TotalPnL > rows[j].TotalPnL
		}
		return rows[i].Strategy < rows[j].Strategy
	})
	return rows
}
