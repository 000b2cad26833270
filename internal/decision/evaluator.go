package decision

import (
	"fmt"
	"math"

	"intraday-strategy-lab/internal/domain"
)

// Evaluator applies the rule book to strategy results.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate runs every rule in order and returns the verdict of the
// first triggered rule, APPROVE if none fire. KILL rules come before
// MODIFY rules, so a strategy is never asked to be modified when it
// should be killed. The full trace is always recorded.
func (e *Evaluator) Evaluate(result *domain.StrategyResult) *Result {
	t := e.thresholds

	rules := []struct {
		rule    RuleResult
		verdict Recommendation
	}{
		{
			rule: RuleResult{
				Name:      "Minimum trades",
				Threshold: fmt.Sprintf(">= %d", t.MinTrades),
				Actual:    fmt.Sprintf("%d", result.TotalTrades),
				Triggered: result.TotalTrades < t.MinTrades,
			},
			verdict: RecommendationKill,
		},
		{
			rule: RuleResult{
				Name:      "Maximum drawdown",
				Threshold: fmt.Sprintf("|dd| <= %.2f", t.MaxDrawdown),
				Actual:    fmt.Sprintf("%.2f", result.MaxDrawdown),
				Triggered: math.Abs(result.MaxDrawdown) > t.MaxDrawdown,
			},
			verdict: RecommendationKill,
		},
		{
			rule: RuleResult{
				Name:      "Minimum profit factor",
				Threshold: fmt.Sprintf(">= %.2f", t.MinProfitFactor),
				Actual:    formatFloat(result.ProfitFactor),
				Triggered: result.ProfitFactor < t.MinProfitFactor,
			},
			verdict: RecommendationKill,
		},
		{
			rule: RuleResult{
				Name:      "Positive total pnl",
				Threshold: "> 0",
				Actual:    fmt.Sprintf("%.2f", result.TotalPnL),
				Triggered: result.TotalPnL <= 0,
			},
			verdict: RecommendationKill,
		},
		{
			rule: RuleResult{
				Name:      "Minimum Sharpe ratio",
				Threshold: fmt.Sprintf(">= %.2f", t.MinSharpe),
				Actual:    fmt.Sprintf("%.2f", result.SharpeRatio),
				Triggered: result.SharpeRatio < t.MinSharpe,
			},
			verdict: RecommendationModify,
		},
		{
			rule:    e.yearlyConsistencyRule(result),
			verdict: RecommendationModify,
		},
	}

	out := &Result{
		Strategy:       result.StrategyName,
		Recommendation: RecommendationApprove,
	}
	decided := false
	for _, r := range rules {
		out.Rules = append(out.Rules, r.rule)
		if r.rule.Triggered && !decided {
			out.Recommendation = r.verdict
			decided = true
		}
	}
	return out
}

// yearlyConsistencyRule requires profitability in at least
// MinProfitableYearFraction of years. Single-year ledgers pass
// trivially: one year is no evidence of consistency either way.
func (e *Evaluator) yearlyConsistencyRule(result *domain.StrategyResult) RuleResult {
	rule := RuleResult{
		Name:      "Yearly consistency",
		Threshold: fmt.Sprintf(">= %.0f%% profitable years", e.thresholds.MinProfitableYearFraction*100),
	}

	years := len(result.Yearly)
	if years <= 1 {
		rule.Actual = fmt.Sprintf("%d year(s)", years)
		return rule
	}

	profitable := 0
	for _, p := range result.Yearly {
		if p.TotalPnL > 0 {
			profitable++
		}
	}
	fraction := float64(profitable) / float64(years)
	rule.Actual = fmt.Sprintf("%d/%d profitable", profitable, years)
	rule.Triggered = fraction < e.thresholds.MinProfitableYearFraction
	return rule
}

// formatFloat renders +Inf profit factors readably.
func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
