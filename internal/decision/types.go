// Package decision evaluates strategy results against the keep/kill
// rule book.
package decision

// Recommendation is the verdict for a strategy.
type Recommendation string

const (
	RecommendationApprove Recommendation = "APPROVE"
	RecommendationModify  Recommendation = "MODIFY"
	RecommendationKill    Recommendation = "KILL"
)

// Thresholds are the rule-book limits a strategy is judged against.
type Thresholds struct {
	// MinTrades is the minimum sample size for a meaningful verdict.
	MinTrades int

	// MaxDrawdown is the largest tolerated drawdown magnitude, in the
	// same units as StrategyResult.MaxDrawdown.
	MaxDrawdown float64

	MinProfitFactor float64
	MinSharpe       float64

	// MinProfitableYearFraction applies only when the ledger spans more
	// than one calendar year.
	MinProfitableYearFraction float64
}

// DefaultThresholds returns the standard rule book.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTrades:                 50,
		MaxDrawdown:               0.20,
		MinProfitFactor:           1.2,
		MinSharpe:                 0.5,
		MinProfitableYearFraction: 0.6,
	}
}

// RuleResult records one rule's evaluation.
type RuleResult struct {
	Name      string
	Threshold string
	Actual    string
	// Triggered means the rule fired and forced its verdict.
	Triggered bool
}

// Result is the verdict plus the full rule trace. Every rule is
// evaluated and recorded even after one has already decided the
// verdict; the first triggered rule wins.
type Result struct {
	Strategy       string
	Recommendation Recommendation
	Rules          []RuleResult
}
