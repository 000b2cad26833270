// Package main analyzes persisted ledgers and renders a strategy
// comparison report with verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"intraday-strategy-lab/internal/config"
	"intraday-strategy-lab/internal/decision"
	"intraday-strategy-lab/internal/metrics"
	"intraday-strategy-lab/internal/reporting"
	"intraday-strategy-lab/internal/storage"
	"intraday-strategy-lab/internal/storage/file"
	"intraday-strategy-lab/internal/storage/memory"
	"intraday-strategy-lab/internal/storage/migrations"
	pgstore "intraday-strategy-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	backend := flag.String("backend", "", "Ledger/result backend: file or postgres (overrides config)")
	strategies := flag.String("strategies", "", "Comma-separated strategy names (default: all with results)")
	format := flag.String("format", "markdown", "Output format: markdown, csv or both")
	outDir := flag.String("out", "", "Directory to write report files to (default: stdout)")
	recompute := flag.Bool("recompute", false, "Recompute results from ledgers before reporting")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	switch *format {
	case "markdown", "csv", "both":
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q\n", *format)
		os.Exit(2)
	}

	ctx := context.Background()

	ledgerStore, resultStore, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backend error: %v\n", err)
		os.Exit(1)
	}
	defer closeBackend()

	if *recompute {
		results, err := metrics.NewAggregator(ledgerStore, resultStore).ComputeAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recompute error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Recomputed %d results from ledgers\n", len(results))
	}

	evaluator := decision.NewEvaluator(decision.Thresholds{
		MinTrades:                 cfg.Evaluator.MinTrades,
		MaxDrawdown:               cfg.Evaluator.MaxDrawdown,
		MinProfitFactor:           cfg.Evaluator.MinProfitFactor,
		MinSharpe:                 cfg.Evaluator.MinSharpe,
		MinProfitableYearFraction: cfg.Evaluator.MinProfitableYearFraction,
	})

	report, err := reporting.NewGenerator(resultStore, evaluator).Generate(ctx, splitList(*strategies))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
		os.Exit(1)
	}
	if len(report.Rows) == 0 {
		fmt.Fprintln(os.Stderr, "No results to report; run a backtest first")
		os.Exit(1)
	}

	if err := emit(report, *format, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
}

func emit(report *reporting.Report, format, outDir string) error {
	if outDir == "" {
		if format == "markdown" || format == "both" {
			fmt.Print(reporting.RenderMarkdown(report))
		}
		if format == "csv" || format == "both" {
			fmt.Print(reporting.RenderCSV(report.Rows))
		}
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if format == "markdown" || format == "both" {
		path := filepath.Join(outDir, "strategy_report.md")
		if err := os.WriteFile(path, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	if format == "csv" || format == "both" {
		path := filepath.Join(outDir, "strategy_comparison.csv")
		if err := os.WriteFile(path, []byte(reporting.RenderCSV(report.Rows)), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

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
