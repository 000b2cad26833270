// Package metrics computes strategy performance results from trade
// ledgers.
package metrics

import (
	"math"
	"sort"
	"time"

	"intraday-strategy-lab/internal/domain"
)

// annualizationDays is the trading-day count used to annualize Sharpe.
const annualizationDays = 252

// Compute calculates the full result for a strategy from its trades.
// Trades are sorted by entry time ASC, symbol ASC before computing
// order-dependent metrics (MaxDrawdown, MaxConsecutiveLosses), so the
// result does not depend on ledger ordering. Open trades carry no pnl
// and are excluded, as is any trade missing its pnl (a malformed
// ledger row). An empty ledger yields a zero result.
func Compute(strategyName string, trades []*domain.Trade) *domain.StrategyResult {
	result := &domain.StrategyResult{
		StrategyName: strategyName,
		Yearly:       map[int]domain.PeriodPerformance{},
		Monthly:      map[time.Month]domain.PeriodPerformance{},
	}

	closed := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Closed() && t.PnL != nil {
			closed = append(closed, t)
		}
	}
	if len(closed) == 0 {
		return result
	}

	sort.Slice(closed, func(i, j int) bool {
		if !closed[i].EntryTime.Equal(closed[j].EntryTime) {
			return closed[i].EntryTime.Before(closed[j].EntryTime)
		}
		return closed[i].Symbol < closed[j].Symbol
	})

	pnls := make([]float64, len(closed))
	for i, t := range closed {
		pnls[i] = *t.PnL
	}

	result.TotalTrades = len(closed)
	for _, p := range pnls {
		result.TotalPnL += p
		if p > 0 {
			result.WinningTrades++
		} else if p < 0 {
			result.LosingTrades++
		}
	}

	result.ProfitFactor = computeProfitFactor(pnls)
	result.MaxDrawdown = computeMaxDrawdown(pnls)
	result.SharpeRatio = computeSharpeRatio(closed)
	result.AvgTradeDurationMinutes = computeAvgDuration(closed)
	result.Yearly = computeYearly(closed)
	result.Monthly = computeMonthly(closed)
	result.WinRates = computeWinRates(closed)
	result.Risk = computeRiskMetrics(closed)

	return result
}

// computeProfitFactor is gross profit over gross loss. With no losing
// trades it is +Inf if any trade won, 0 otherwise.
func computeProfitFactor(pnls []float64) float64 {
	var grossProfit, grossLoss float64
	var losses int
	for _, p := range pnls {
		if p > 0 {
			grossProfit += p
		} else if p < 0 {
			grossLoss += -p
			losses++
		}
	}
	if losses == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	if grossLoss == 0 {
		return 0
	}
	return grossProfit / grossLoss
}

// computeMaxDrawdown is the worst trough below the running equity peak,
// reported as a non-positive number. Pnls must be in entry-time order.
func computeMaxDrawdown(pnls []float64) float64 {
	var cumulative, runningMax, minDrawdown float64
	runningMax = math.Inf(-1)
	for _, p := range pnls {
		cumulative += p
		if cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := cumulative - runningMax; dd < minDrawdown {
			minDrawdown = dd
		}
	}
	return minDrawdown
}

// computeSharpeRatio annualizes mean/stddev of daily pnl, grouping
// trades by entry date. Fewer than two trades or two distinct days, or
// zero variance, yields 0.
func computeSharpeRatio(trades []*domain.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	dailyPnL := make(map[time.Time]float64)
	for _, t := range trades {
		y, m, d := t.EntryTime.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		dailyPnL[day] += *t.PnL
	}
	if len(dailyPnL) < 2 {
		return 0
	}

	daily := make([]float64, 0, len(dailyPnL))
	for _, p := range dailyPnL {
		daily = append(daily, p)
	}

	mean := computeMean(daily)
	stddev := computeStddev(daily, mean)
	if stddev == 0 {
		return 0
	}
	return mean / stddev * math.Sqrt(annualizationDays)
}

func computeAvgDuration(trades []*domain.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.DurationMinutes()
	}
	return sum / float64(len(trades))
}

func computeYearly(trades []*domain.Trade) map[int]domain.PeriodPerformance {
	out := make(map[int]domain.PeriodPerformance)
	symbols := make(map[int]map[string]bool)

	for _, t := range trades {
		year := t.EntryTime.Year()
		p := out[year]
		p.Trades++
		p.TotalPnL += *t.PnL
		out[year] = p

		if symbols[year] == nil {
			symbols[year] = make(map[string]bool)
		}
		symbols[year][t.Symbol] = true
	}

	for year, p := range out {
		p.MeanPnL = p.TotalPnL / float64(p.Trades)
		p.Symbols = len(symbols[year])
		out[year] = p
	}
	return out
}

// computeMonthly groups by calendar month across years.
func computeMonthly(trades []*domain.Trade) map[time.Month]domain.PeriodPerformance {
	out := make(map[time.Month]domain.PeriodPerformance)
	symbols := make(map[time.Month]map[string]bool)

	for _, t := range trades {
		month := t.EntryTime.Month()
		p := out[month]
		p.Trades++
		p.TotalPnL += *t.PnL
		out[month] = p

		if symbols[month] == nil {
			symbols[month] = make(map[string]bool)
		}
		symbols[month][t.Symbol] = true
	}

	for month, p := range out {
		p.MeanPnL = p.TotalPnL / float64(p.Trades)
		p.Symbols = len(symbols[month])
		out[month] = p
	}
	return out
}

func computeWinRates(trades []*domain.Trade) domain.WinRateAnalysis {
	analysis := domain.WinRateAnalysis{
		ByExitReason: make(map[string]float64),
	}

	var wins int
	bySymbol := make(map[string][2]int) // wins, total
	byReason := make(map[string][2]int)

	for _, t := range trades {
		won := *t.PnL > 0
		if won {
			wins++
		}

		s := bySymbol[t.Symbol]
		r := byReason[t.ExitReason]
		s[1]++
		r[1]++
		if won {
			s[0]++
			r[0]++
		}
		bySymbol[t.Symbol] = s
		byReason[t.ExitReason] = r
	}

	analysis.Overall = float64(wins) / float64(len(trades))

	var symbolRates float64
	for _, s := range bySymbol {
		symbolRates += float64(s[0]) / float64(s[1])
	}
	analysis.SymbolAverage = symbolRates / float64(len(bySymbol))

	for reason, r := range byReason {
		analysis.ByExitReason[reason] = float64(r[0]) / float64(r[1])
	}
	return analysis
}

// computeRiskMetrics needs trades in entry-time order for the
// consecutive-loss streak.
func computeRiskMetrics(trades []*domain.Trade) domain.RiskMetrics {
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = *t.PnL
	}

	sorted := make([]float64, len(pnls))
	copy(sorted, pnls)
	sort.Float64s(sorted)

	var risk domain.RiskMetrics
	risk.VaR95 = computePercentile(sorted, 0.05)
	risk.VaR99 = computePercentile(sorted, 0.01)

	var streak int
	for _, p := range pnls {
		if p < 0 {
			streak++
			if streak > risk.MaxConsecutiveLosses {
				risk.MaxConsecutiveLosses = streak
			}
		} else {
			streak = 0
		}
	}

	var winSum, lossSum float64
	var wins, losses int
	for _, p := range pnls {
		if p > 0 {
			winSum += p
			wins++
		} else if p < 0 {
			lossSum += p
			losses++
		}
	}
	if wins > 0 {
		risk.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		risk.AvgLoss = lossSum / float64(losses)
	}
	if risk.AvgLoss != 0 {
		risk.WinLossRatio = math.Abs(risk.AvgWin / risk.AvgLoss)
	}
	return risk
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC. p is the percentile (0.05 = 5th).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
