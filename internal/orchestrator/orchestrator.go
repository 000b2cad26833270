// Package orchestrator coordinates a full lab run.
// Flow: backtest → metrics aggregation → evaluation.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"intraday-strategy-lab/internal/decision"
	"intraday-strategy-lab/internal/engine"
	"intraday-strategy-lab/internal/metrics"
	"intraday-strategy-lab/internal/storage"
	"intraday-strategy-lab/internal/strategy"
)

// Orchestrator runs a set of strategies end to end: generate ledgers,
// compute results, evaluate verdicts.
type Orchestrator struct {
	runner     *engine.Runner
	aggregator *metrics.Aggregator
	evaluator  *decision.Evaluator
	strategies []strategy.Strategy
	symbols    []string
	verbose    bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	SeriesStore storage.SeriesStore
	LedgerStore storage.LedgerStore
	ResultStore storage.ResultStore

	// Strategies to run. Empty means every registered strategy.
	Strategies []strategy.Strategy

	// Symbols to backtest. Empty means every symbol in the series store.
	Symbols []string

	// Evaluator for verdicts. Nil means default thresholds.
	Evaluator *decision.Evaluator

	// Engine tuning, passed through to engine.Options.
	BatchSize int
	Workers   int

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = strategy.All()
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = decision.NewEvaluator(decision.DefaultThresholds())
	}
	return &Orchestrator{
		runner: engine.NewRunner(engine.Options{
			SeriesStore: opts.SeriesStore,
			LedgerStore: opts.LedgerStore,
			BatchSize:   opts.BatchSize,
			Workers:     opts.Workers,
			Verbose:     opts.Verbose,
		}),
		aggregator: metrics.NewAggregator(opts.LedgerStore, opts.ResultStore),
		evaluator:  evaluator,
		strategies: strategies,
		symbols:    opts.Symbols,
		verbose:    opts.Verbose,
	}
}

// StrategyOutcome is one strategy's slice of a run.
type StrategyOutcome struct {
	Strategy string
	Run      *engine.RunResult
	Result   *decision.Result
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	StrategiesRun   int
	TradesGenerated int
	Outcomes        []StrategyOutcome
	Errors          []string
}

// Run executes every phase for every strategy. A phase failure for one
// strategy is recorded and does not stop the others; only context
// cancellation aborts the whole run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	for _, strat := range o.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strat.Config().Name

		o.log("Phase 1 (%s): backtesting...", name)
		runResult, err := o.runner.Run(ctx, strat, o.symbols)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("backtest %s: %v", name, err))
			continue
		}
		o.log("  %d symbols, %d trades", runResult.SymbolsProcessed, runResult.TradesGenerated)

		o.log("Phase 2 (%s): computing metrics...", name)
		sr, err := o.aggregator.ComputeAndStore(ctx, name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("metrics %s: %v", name, err))
			continue
		}

		o.log("Phase 3 (%s): evaluating...", name)
		verdict := o.evaluator.Evaluate(sr)
		o.log("  verdict: %s", verdict.Recommendation)

		result.StrategiesRun++
		result.TradesGenerated += runResult.TradesGenerated
		result.Outcomes = append(result.Outcomes, StrategyOutcome{
			Strategy: name,
			Run:      runResult,
			Result:   verdict,
		})
	}

	o.log("Run completed: %d strategies, %d trades, %d errors",
		result.StrategiesRun, result.TradesGenerated, len(result.Errors))

	return result, nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
