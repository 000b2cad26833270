package strategy

import (
	"context"

	"intraday-strategy-lab/internal/domain"
)

// Strategy generates trades from a single symbol's market series.
//
// GenerateSignals must be a pure function of its input: no cross-symbol
// or cross-call state. Implementations partition the series by calendar
// day and open at most one position per symbol per day; a day with no
// valid entry contributes zero trades.
type Strategy interface {
	// GenerateSignals evaluates the rule set over the series and returns
	// the closed trades it produced, in entry-time order.
	GenerateSignals(ctx context.Context, series *domain.MarketSeries) ([]*domain.Trade, error)

	// Config returns the strategy's immutable configuration.
	Config() domain.StrategyConfig
}
