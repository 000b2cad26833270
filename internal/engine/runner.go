// Package engine drives strategy backtests over stored market data.
// It coordinates: load series → generate signals → checkpoint ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/observability"
	"intraday-strategy-lab/internal/storage"
	"intraday-strategy-lab/internal/strategy"
)

// DefaultBatchSize is the number of symbols between ledger checkpoints.
const DefaultBatchSize = 10

// Runner executes a strategy across symbols with periodic checkpoints.
// A run is resumable: symbols already present in the persisted ledger
// are not reprocessed.
type Runner struct {
	seriesStore storage.SeriesStore
	ledgerStore storage.LedgerStore
	batchSize   int
	workers     int
	verbose     bool
}

// Options for creating Runner.
type Options struct {
	// Required stores
	SeriesStore storage.SeriesStore
	LedgerStore storage.LedgerStore

	// BatchSize is the checkpoint interval in symbols. Defaults to
	// DefaultBatchSize.
	BatchSize int

	// Workers is the number of concurrent signal-generation workers
	// within a batch. Defaults to 1 (sequential).
	Workers int

	Verbose bool
}

// NewRunner creates a new Runner.
func NewRunner(opts Options) *Runner {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		seriesStore: opts.SeriesStore,
		ledgerStore: opts.LedgerStore,
		batchSize:   batchSize,
		workers:     workers,
		verbose:     opts.Verbose,
	}
}

// RunResult contains results from a backtest run.
type RunResult struct {
	SymbolsProcessed int
	SymbolsSkipped   int
	SymbolsFailed    int
	TradesGenerated  int
	Resumed          bool
	Errors           []string
}

// symbolOutcome is one worker's result for a single symbol.
type symbolOutcome struct {
	symbol  string
	trades  []*domain.Trade
	skipped bool
	err     error
}

// Run backtests the strategy over the given symbols. A nil or empty
// symbols slice means every symbol in the series store. The ledger is
// checkpointed after every batch; a checkpoint failure aborts the run
// so the persisted ledger never diverges from what was reported.
func (r *Runner) Run(ctx context.Context, strat strategy.Strategy, symbols []string) (*RunResult, error) {
	name := strat.Config().Name
	started := time.Now()

	if len(symbols) == 0 {
		var err error
		symbols, err = r.seriesStore.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("list symbols: %w", err)
		}
	}
	if len(symbols) == 0 {
		return nil, errors.New("no symbols to backtest")
	}

	// Resume: symbols already in the ledger are done.
	existing, err := r.ledgerStore.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", name, err)
	}
	done := make(map[string]bool)
	for _, t := range existing {
		done[t.Symbol] = true
	}

	result := &RunResult{Resumed: len(existing) > 0}
	allTrades := existing

	var remaining []string
	seen := make(map[string]bool)
	for _, s := range symbols {
		if !done[s] && !seen[s] {
			remaining = append(remaining, s)
			seen[s] = true
		}
	}
	sort.Strings(remaining)

	r.log("%s: %d symbols, %d already in ledger, %d to process",
		name, len(symbols), len(done), len(remaining))

	for start := 0; start < len(remaining); start += r.batchSize {
		end := start + r.batchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batch := remaining[start:end]

		outcomes := r.runBatch(ctx, strat, batch)
		for _, out := range outcomes {
			switch {
			case out.err != nil && errors.Is(out.err, context.Canceled):
				return nil, out.err
			case out.err != nil:
				result.SymbolsFailed++
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %v", out.symbol, out.err))
				observability.RecordSymbolFailed(name)
				r.log("%s: symbol %s failed: %v", name, out.symbol, out.err)
			case out.skipped:
				result.SymbolsSkipped++
				observability.RecordSymbolSkipped(name)
				r.log("%s: symbol %s has no data, skipping", name, out.symbol)
			default:
				result.SymbolsProcessed++
				result.TradesGenerated += len(out.trades)
				allTrades = append(allTrades, out.trades...)
				observability.RecordSymbolProcessed(name)
				observability.RecordTradesGenerated(name, len(out.trades))
			}
		}

		sortLedger(allTrades)
		if err := r.ledgerStore.Save(ctx, name, allTrades); err != nil {
			observability.RecordBacktestRun(name, "checkpoint_failed", time.Since(started).Seconds())
			return nil, fmt.Errorf("checkpoint ledger for %s: %w", name, err)
		}
		observability.RecordCheckpoint(name)
		r.log("%s: checkpoint at %d/%d symbols, %d trades",
			name, start+len(batch), len(remaining), len(allTrades))
	}

	observability.RecordBacktestRun(name, "ok", time.Since(started).Seconds())
	r.log("%s: done: %d processed, %d skipped, %d failed, %d trades generated",
		name, result.SymbolsProcessed, result.SymbolsSkipped,
		result.SymbolsFailed, result.TradesGenerated)

	return result, nil
}

// runBatch generates signals for a batch of symbols. Outcomes come back
// in batch order regardless of worker scheduling, so ledger contents
// do not depend on the worker count.
func (r *Runner) runBatch(ctx context.Context, strat strategy.Strategy, batch []string) []symbolOutcome {
	outcomes := make([]symbolOutcome, len(batch))

	workers := r.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.runSymbol(ctx, strat, batch[i])
			}
		}()
	}
	for i := range batch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (r *Runner) runSymbol(ctx context.Context, strat strategy.Strategy, symbol string) symbolOutcome {
	out := symbolOutcome{symbol: symbol}

	series, err := r.seriesStore.GetBySymbol(ctx, symbol)
	if errors.Is(err, storage.ErrNotFound) {
		out.skipped = true
		return out
	}
	if err != nil {
		out.err = fmt.Errorf("load series: %w", err)
		return out
	}

	trades, err := strat.GenerateSignals(ctx, series)
	if err != nil {
		out.err = fmt.Errorf("generate signals: %w", err)
		return out
	}
	out.trades = trades
	return out
}

// sortLedger orders trades by symbol, then entry time. Checkpoints are
// written in this order so ledgers are deterministic across runs and
// worker counts.
func sortLedger(trades []*domain.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].Symbol != trades[j].Symbol {
			return trades[i].Symbol < trades[j].Symbol
		}
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[engine] "+format, args...)
	}
}
