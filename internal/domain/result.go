package domain

import "time"

// StrategyResult holds the aggregate performance metrics for one strategy
// over its full trade ledger. Produced once by the metrics engine and
// read-only afterwards. ProfitFactor may be +Inf when there are winning
// trades and zero gross loss.
type StrategyResult struct {
	StrategyName string

	TotalTrades   int
	WinningTrades int // pnl > 0
	LosingTrades  int // pnl < 0; pnl == 0 counted in neither

	TotalPnL     float64
	MaxDrawdown  float64 // most negative decline of cumulative pnl, <= 0
	ProfitFactor float64
	SharpeRatio  float64

	AvgTradeDurationMinutes float64

	// Breakdowns.
	Yearly   map[int]PeriodPerformance
	Monthly  map[time.Month]PeriodPerformance
	WinRates WinRateAnalysis
	Risk     RiskMetrics
}

// PeriodPerformance summarizes trades grouped by a calendar period.
type PeriodPerformance struct {
	Trades   int
	TotalPnL float64
	MeanPnL  float64
	Symbols  int // unique symbols traded in the period
}

// WinRateAnalysis breaks win rates down by dimension.
type WinRateAnalysis struct {
	Overall       float64
	SymbolAverage float64 // mean of per-symbol win rates
	ByExitReason  map[string]float64
}

// RiskMetrics holds tail-risk and streak statistics of the pnl distribution.
type RiskMetrics struct {
	VaR95                float64 // 5th percentile of pnl
	VaR99                float64 // 1st percentile of pnl
	MaxConsecutiveLosses int     // longest run of pnl < 0 in entry-time order
	AvgWin               float64
	AvgLoss              float64 // negative, 0 if no losses
	WinLossRatio         float64 // |AvgWin / AvgLoss|, 0 if no losses
}

// WinRate returns winning trades over total trades, 0 for an empty result.
func (r *StrategyResult) WinRate() float64 {
	if r.TotalTrades == 0 {
		return 0
	}
	return float64(r.WinningTrades) / float64(r.TotalTrades)
}
