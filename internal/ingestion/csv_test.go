package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
	"intraday-strategy-lab/internal/storage/memory"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2023-01-02T09:15:00Z,100,101,99.5,100.5,1200
2023-01-02T09:16:00Z,100.5,102,100,101.5,900
2023-01-02T09:17:00Z,101.5,101.8,100.9,101,1100
`

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBars(t *testing.T) {
	bars, err := ReadBars(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.True(t, bars[0].Timestamp.Equal(time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)))
	assert.InDelta(t, 100, bars[0].Open, 1e-9)
	assert.InDelta(t, 101.5, bars[1].Close, 1e-9)
	assert.InDelta(t, 1100, bars[2].Volume, 1e-9)
}

func TestReadBars_BadHeader(t *testing.T) {
	_, err := ReadBars(strings.NewReader("time,o,h,l,c,v\n"))
	assert.ErrorContains(t, err, "expected header")
}

func TestReadBars_BadTimestamp(t *testing.T) {
	csv := "timestamp,open,high,low,close,volume\nyesterday,1,1,1,1,1\n"
	_, err := ReadBars(strings.NewReader(csv))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadBars_Empty(t *testing.T) {
	_, err := ReadBars(strings.NewReader("timestamp,open,high,low,close,volume\n"))
	assert.ErrorContains(t, err, "no bars")
}

func TestIngestFile_SymbolFromFileName(t *testing.T) {
	store := memory.NewSeriesStore()
	in := New(Options{Store: store})
	path := writeCSV(t, t.TempDir(), "RELIANCE.csv", sampleCSV)

	n, err := in.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	series, err := store.GetBySymbol(context.Background(), "RELIANCE")
	require.NoError(t, err)
	assert.Len(t, series.Bars, 3)
}

func TestIngestFile_RejectsUnsortedSeries(t *testing.T) {
	store := memory.NewSeriesStore()
	in := New(Options{Store: store})

	backwards := `timestamp,open,high,low,close,volume
2023-01-02T09:16:00Z,100,101,99,100,1000
2023-01-02T09:15:00Z,100,101,99,100,1000
`
	path := writeCSV(t, t.TempDir(), "X.csv", backwards)

	_, err := in.IngestFile(context.Background(), path, "")
	require.ErrorIs(t, err, domain.ErrInvalidSeries)

	// Nothing reached the store.
	_, err = store.GetBySymbol(context.Background(), "X")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAA.csv", sampleCSV)
	writeCSV(t, dir, "BBB.csv", sampleCSV)
	writeCSV(t, dir, "notes.txt", "ignore me")

	store := memory.NewSeriesStore()
	in := New(Options{Store: store})

	summary, err := in.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 6, summary.Bars)

	symbols, err := store.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, symbols)
}

func TestIngestDir_EmptyDir(t *testing.T) {
	in := New(Options{Store: memory.NewSeriesStore()})
	_, err := in.IngestDir(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no CSV files")
}
