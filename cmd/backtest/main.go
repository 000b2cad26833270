// Package main runs one or more strategies across stored symbols and
// checkpoints trade ledgers.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"intraday-strategy-lab/internal/config"
	"intraday-strategy-lab/internal/decision"
	"intraday-strategy-lab/internal/observability"
	"intraday-strategy-lab/internal/orchestrator"
	"intraday-strategy-lab/internal/sampledata"
	"intraday-strategy-lab/internal/storage"
	chstore "intraday-strategy-lab/internal/storage/clickhouse"
	"intraday-strategy-lab/internal/storage/file"
	"intraday-strategy-lab/internal/storage/memory"
	"intraday-strategy-lab/internal/storage/migrations"
	pgstore "intraday-strategy-lab/internal/storage/postgres"
	"intraday-strategy-lab/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	backend := flag.String("backend", "", "Ledger/result backend: memory, file or postgres (overrides config)")
	series := flag.String("series", "", "Series source: sample or clickhouse (overrides config)")
	strategies := flag.String("strategies", "", "Comma-separated strategy names (default: all)")
	symbols := flag.String("symbols", "", "Comma-separated symbols (default: all in store)")
	batchSize := flag.Int("batch-size", 0, "Symbols per ledger checkpoint (overrides config)")
	workers := flag.Int("workers", 0, "Concurrent signal workers (overrides config)")
	sampleStart := flag.String("sample-start", "2023-01-01", "Sample data start date (YYYY-MM-DD)")
	sampleEnd := flag.String("sample-end", "2023-12-31", "Sample data end date (YYYY-MM-DD)")
	sampleSeed := flag.Int64("sample-seed", 42, "Sample data random seed")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (optional)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *series != "" {
		cfg.Series = *series
	}
	if *batchSize > 0 {
		cfg.Engine.BatchSize = *batchSize
	}
	if *workers > 0 {
		cfg.Engine.Workers = *workers
	}
	if *verbose {
		cfg.Engine.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling backtest...\n", sig)
		cancel()
	}()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	strats, err := resolveStrategies(*strategies, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Strategy error: %v\n", err)
		os.Exit(1)
	}

	seriesStore, closeSeries, err := openSeriesStore(ctx, cfg, *sampleStart, *sampleEnd, *sampleSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Series store error: %v\n", err)
		os.Exit(1)
	}
	defer closeSeries()

	ledgerStore, resultStore, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backend error: %v\n", err)
		os.Exit(1)
	}
	defer closeBackend()

	orch := orchestrator.New(orchestrator.Options{
		SeriesStore: seriesStore,
		LedgerStore: ledgerStore,
		ResultStore: resultStore,
		Strategies:  strats,
		Symbols:     splitList(*symbols),
		Evaluator: decision.NewEvaluator(decision.Thresholds{
			MinTrades:                 cfg.Evaluator.MinTrades,
			MaxDrawdown:               cfg.Evaluator.MaxDrawdown,
			MinProfitFactor:           cfg.Evaluator.MinProfitFactor,
			MinSharpe:                 cfg.Evaluator.MinSharpe,
			MinProfitableYearFraction: cfg.Evaluator.MinProfitableYearFraction,
		}),
		BatchSize: cfg.Engine.BatchSize,
		Workers:   cfg.Engine.Workers,
		Verbose:   cfg.Engine.Verbose,
	})

	fmt.Println("=== Backtest ===")
	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run error: %v\n", err)
		os.Exit(1)
	}

	for _, outcome := range result.Outcomes {
		fmt.Printf("\n%s:\n", outcome.Strategy)
		fmt.Printf("  Symbols processed: %d\n", outcome.Run.SymbolsProcessed)
		fmt.Printf("  Symbols skipped:   %d\n", outcome.Run.SymbolsSkipped)
		fmt.Printf("  Symbols failed:    %d\n", outcome.Run.SymbolsFailed)
		fmt.Printf("  Trades generated:  %d\n", outcome.Run.TradesGenerated)
		if outcome.Run.Resumed {
			fmt.Println("  (resumed from existing ledger)")
		}
		for _, e := range outcome.Run.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		fmt.Printf("  Verdict: %s\n", outcome.Result.Recommendation)
	}

	fmt.Printf("\nCompleted: %d strategies, %d trades, %d errors\n",
		result.StrategiesRun, result.TradesGenerated, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// resolveStrategies builds the requested strategies with the configured
// risk sizing applied to each.
func resolveStrategies(names string, cfg *config.Config) ([]strategy.Strategy, error) {
	risk := map[string]float64{
		"capital":       cfg.Risk.Capital,
		"risk_fraction": cfg.Risk.RiskFraction,
	}
	list := splitList(names)
	if len(list) == 0 {
		return strategy.AllWithParams(risk), nil
	}
	strats := make([]strategy.Strategy, 0, len(list))
	for _, name := range list {
		s, err := strategy.FromNameWithParams(name, risk)
		if err != nil {
			return nil, err
		}
		strats = append(strats, s)
	}
	return strats, nil
}

// openSeriesStore returns bars from ClickHouse, or an in-memory store
// seeded with generated sample data.
func openSeriesStore(ctx context.Context, cfg *config.Config, start, end string, seed int64) (storage.SeriesStore, func(), error) {
	if cfg.Series == "clickhouse" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, err
		}
		return chstore.NewBarStore(conn), func() { conn.Close() }, nil
	}

	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, nil, fmt.Errorf("parse sample-start: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, nil, fmt.Errorf("parse sample-end: %w", err)
	}

	store := memory.NewSeriesStore()
	gen := sampledata.New(sampledata.Options{Seed: seed})
	total, err := gen.Seed(ctx, store, startDate, endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("seed sample data: %w", err)
	}
	fmt.Printf("Seeded %d sample bars for %d symbols\n", total, len(gen.Symbols()))
	return store, func() {}, nil
}

// openBackend returns the ledger and result stores for the configured
// backend.
func openBackend(ctx context.Context, cfg *config.Config) (storage.LedgerStore, storage.ResultStore, func(), error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewLedgerStore(), memory.NewResultStore(), func() {}, nil
	case "file":
		ledgers, err := file.NewLedgerStore(cfg.Storage.ResultsDir)
		if err != nil {
			return nil, nil, nil, err
		}
		results, err := file.NewResultStore(cfg.Storage.ResultsDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return ledgers, results, func() {}, nil
	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return pgstore.NewLedgerStore(pool), pgstore.NewResultStore(pool), pool.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "Metrics server error: %v\n", err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
