package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"intraday-strategy-lab/internal/decision"
	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/observability"
	"intraday-strategy-lab/internal/storage"
)

// Generator produces comparison reports from stored results.
type Generator struct {
	resultStore storage.ResultStore
	evaluator   *decision.Evaluator
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(resultStore storage.ResultStore, evaluator *decision.Evaluator) *Generator {
	return &Generator{
		resultStore: resultStore,
		evaluator:   evaluator,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the comparison report for the named strategies. An
// empty names slice means every stored result. Strategies without a
// stored result are left out of the table rather than failing the
// whole report.
func (g *Generator) Generate(ctx context.Context, names []string) (*Report, error) {
	var results []*domain.StrategyResult

	if len(names) == 0 {
		all, err := g.resultStore.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load results: %w", err)
		}
		results = all
	} else {
		for _, name := range names {
			r, err := g.resultStore.GetByStrategy(ctx, name)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load result for %s: %w", name, err)
			}
			results = append(results, r)
		}
	}

	report := &Report{
		GeneratedAt: g.now(),
		Rows:        Compare(results, g.evaluator),
	}

	byName := make(map[string]*domain.StrategyResult, len(results))
	for _, r := range results {
		byName[r.StrategyName] = r
	}
	for _, row := range report.Rows {
		report.Verdicts = append(report.Verdicts, g.evaluator.Evaluate(byName[row.Strategy]))
	}

	observability.DefaultMetrics.ReportsGenerated.Inc()
	return report, nil
}
