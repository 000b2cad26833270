// Package ingestion loads minute bars from CSV files into a series
// store, validating each series before it reaches storage.
package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/observability"
	"intraday-strategy-lab/internal/storage"
)

// Header expected on every bar CSV file.
var barHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Ingestor reads CSV bar files and inserts them into a series store.
type Ingestor struct {
	store   storage.SeriesStore
	verbose bool
}

// Options for creating Ingestor.
type Options struct {
	Store   storage.SeriesStore
	Verbose bool
}

// New creates a new Ingestor.
func New(opts Options) *Ingestor {
	return &Ingestor{store: opts.Store, verbose: opts.Verbose}
}

// Summary reports what an ingest run touched.
type Summary struct {
	Files int
	Bars  int
}

// IngestDir ingests every *.csv file in the directory, symbol taken
// from the file name. Files are processed in name order; the first
// failure aborts.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in %s", dir)
	}

	summary := &Summary{}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		n, err := in.IngestFile(ctx, filepath.Join(dir, name), "")
		if err != nil {
			return summary, err
		}
		summary.Files++
		summary.Bars += n
	}
	return summary, nil
}

// IngestFile ingests one CSV file. An empty symbol defaults to the
// file name without its extension.
func (in *Ingestor) IngestFile(ctx context.Context, path, symbol string) (int, error) {
	if symbol == "" {
		symbol = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	// Reject files the core would refuse before touching the store.
	if _, err := domain.NewMarketSeries(symbol, bars); err != nil {
		return 0, err
	}

	if err := in.store.InsertBars(ctx, symbol, bars); err != nil {
		return 0, fmt.Errorf("insert %s: %w", symbol, err)
	}
	observability.RecordBarsIngested(symbol, len(bars))
	in.log("ingested %d bars for %s", len(bars), symbol)
	return len(bars), nil
}

// ReadBars parses CSV with a timestamp,open,high,low,close,volume
// header. Timestamps are RFC3339.
func ReadBars(r io.Reader) ([]domain.Bar, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars in file")
	}
	return bars, nil
}

func checkHeader(header []string) error {
	if len(header) != len(barHeader) {
		return fmt.Errorf("expected header %v, got %v", barHeader, header)
	}
	for i, col := range barHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return fmt.Errorf("expected header %v, got %v", barHeader, header)
		}
	}
	return nil
}

func parseBar(rec []string) (domain.Bar, error) {
	if len(rec) != len(barHeader) {
		return domain.Bar{}, fmt.Errorf("expected %d fields, got %d", len(barHeader), len(rec))
	}

	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return domain.Bar{}, fmt.Errorf("timestamp: %w", err)
	}

	fields := make([]float64, 5)
	for i, name := range barHeader[1:] {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s: %w", name, err)
		}
		fields[i] = v
	}

	return domain.Bar{
		Timestamp: ts.UTC(),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

func (in *Ingestor) log(format string, args ...interface{}) {
	if in.verbose {
		log.Printf("[ingestion] "+format, args...)
	}
}
