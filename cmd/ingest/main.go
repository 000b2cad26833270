// Package main loads minute bars into the ClickHouse series store,
// either from CSV files or by synthesizing sample data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intraday-strategy-lab/internal/config"
	"intraday-strategy-lab/internal/ingestion"
	"intraday-strategy-lab/internal/sampledata"
	"intraday-strategy-lab/internal/storage"
	chstore "intraday-strategy-lab/internal/storage/clickhouse"
	"intraday-strategy-lab/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	dsn := flag.String("dsn", "", "ClickHouse DSN (overrides config)")
	dir := flag.String("dir", "", "Directory of <SYMBOL>.csv bar files to ingest")
	csvFile := flag.String("file", "", "Single CSV bar file to ingest")
	symbol := flag.String("symbol", "", "Symbol for -file (default: file name without extension)")
	sample := flag.Bool("sample", false, "Synthesize sample data instead of reading CSV")
	sampleStart := flag.String("sample-start", "2023-01-01", "Sample data start date (YYYY-MM-DD)")
	sampleEnd := flag.String("sample-end", "2023-12-31", "Sample data end date (YYYY-MM-DD)")
	sampleSeed := flag.Int64("sample-seed", 42, "Sample data random seed")
	verbose := flag.Bool("verbose", false, "Verbose output")
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
	if *dsn != "" {
		cfg.Storage.ClickhouseDSN = *dsn
	}

	if !*sample && *dir == "" && *csvFile == "" {
		fmt.Fprintln(os.Stderr, "Nothing to do: pass -dir, -file or -sample")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling ingest...\n", sig)
		cancel()
	}()

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ClickHouse error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	store := chstore.NewBarStore(conn)

	switch {
	case *sample:
		err = ingestSample(ctx, store, *sampleStart, *sampleEnd, *sampleSeed)
	case *dir != "":
		err = ingestDir(ctx, store, *dir, *verbose)
	default:
		err = ingestFile(ctx, store, *csvFile, *symbol, *verbose)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest error: %v\n", err)
		os.Exit(1)
	}
}

func ingestSample(ctx context.Context, store storage.SeriesStore, start, end string, seed int64) error {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return fmt.Errorf("parse sample-start: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return fmt.Errorf("parse sample-end: %w", err)
	}

	gen := sampledata.New(sampledata.Options{Seed: seed})
	fmt.Printf("Synthesizing sample data %s..%s for %d symbols\n",
		start, end, len(gen.Symbols()))

	total, err := gen.Seed(ctx, store, startDate, endDate)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d sample bars\n", total)
	return nil
}

func ingestDir(ctx context.Context, store storage.SeriesStore, dir string, verbose bool) error {
	in := ingestion.New(ingestion.Options{Store: store, Verbose: verbose})
	summary, err := in.IngestDir(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d bars from %d files\n", summary.Bars, summary.Files)
	return nil
}

func ingestFile(ctx context.Context, store storage.SeriesStore, path, symbol string, verbose bool) error {
	in := ingestion.New(ingestion.Options{Store: store, Verbose: verbose})
	n, err := in.IngestFile(ctx, path, symbol)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d bars\n", n)
	return nil
}
