package file

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

const resultSuffix = "_result.json"

// ResultStore persists strategy results as <strategy>_result.json under
// a results directory, written with the same temp-file-and-rename
// discipline as the ledger store.
type ResultStore struct {
	dir string
}

// NewResultStore creates the results directory if needed.
func NewResultStore(dir string) (*ResultStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty results dir", storage.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &ResultStore{dir: dir}, nil
}

var _ storage.ResultStore = (*ResultStore)(nil)

// jsonFloat carries a float64 through JSON; +Inf round-trips as the
// string "inf", which json numbers cannot represent.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(f), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(f))
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*f = jsonFloat(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// resultDocument is the on-disk shape of a StrategyResult.
type resultDocument struct {
	StrategyName            string                                  `json:"strategy_name"`
	TotalTrades             int                                     `json:"total_trades"`
	WinningTrades           int                                     `json:"winning_trades"`
	LosingTrades            int                                     `json:"losing_trades"`
	TotalPnL                float64                                 `json:"total_pnl"`
	MaxDrawdown             float64                                 `json:"max_drawdown"`
	ProfitFactor            jsonFloat                               `json:"profit_factor"`
	SharpeRatio             float64                                 `json:"sharpe_ratio"`
	AvgTradeDurationMinutes float64                                 `json:"avg_trade_duration_minutes"`
	Yearly                  map[int]domain.PeriodPerformance        `json:"yearly,omitempty"`
	Monthly                 map[time.Month]domain.PeriodPerformance `json:"monthly,omitempty"`
	WinRates                domain.WinRateAnalysis                  `json:"win_rates"`
	Risk                    domain.RiskMetrics                      `json:"risk"`
}

func toDocument(r *domain.StrategyResult) resultDocument {
	return resultDocument{
		StrategyName:            r.StrategyName,
		TotalTrades:             r.TotalTrades,
		WinningTrades:           r.WinningTrades,
		LosingTrades:            r.LosingTrades,
		TotalPnL:                r.TotalPnL,
		MaxDrawdown:             r.MaxDrawdown,
		ProfitFactor:            jsonFloat(r.ProfitFactor),
		SharpeRatio:             r.SharpeRatio,
		AvgTradeDurationMinutes: r.AvgTradeDurationMinutes,
		Yearly:                  r.Yearly,
		Monthly:                 r.Monthly,
		WinRates:                r.WinRates,
		Risk:                    r.Risk,
	}
}

func (d resultDocument) toResult() *domain.StrategyResult {
	return &domain.StrategyResult{
		StrategyName:            d.StrategyName,
		TotalTrades:             d.TotalTrades,
		WinningTrades:           d.WinningTrades,
		LosingTrades:            d.LosingTrades,
		TotalPnL:                d.TotalPnL,
		MaxDrawdown:             d.MaxDrawdown,
		ProfitFactor:            float64(d.ProfitFactor),
		SharpeRatio:             d.SharpeRatio,
		AvgTradeDurationMinutes: d.AvgTradeDurationMinutes,
		Yearly:                  d.Yearly,
		Monthly:                 d.Monthly,
		WinRates:                d.WinRates,
		Risk:                    d.Risk,
	}
}

// Save inserts or fully overwrites the result for a strategy.
func (s *ResultStore) Save(_ context.Context, r *domain.StrategyResult) error {
	if r == nil || r.StrategyName == "" {
		return storage.ErrInvalidInput
	}

	data, err := json.MarshalIndent(toDocument(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, r.StrategyName+".tmp")
	if err != nil {
		return fmt.Errorf("create temp result: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp result: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(r.StrategyName)); err != nil {
		return fmt.Errorf("replace result: %w", err)
	}
	return nil
}

// GetByStrategy retrieves the result for a strategy.
func (s *ResultStore) GetByStrategy(_ context.Context, strategy string) (*domain.StrategyResult, error) {
	if strategy == "" {
		return nil, storage.ErrInvalidInput
	}

	data, err := os.ReadFile(s.path(strategy))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	var doc resultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse result %s: %w", s.path(strategy), err)
	}
	return doc.toResult(), nil
}

// GetAll retrieves all results, sorted by strategy name.
func (s *ResultStore) GetAll(ctx context.Context) ([]*domain.StrategyResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), resultSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), resultSuffix))
	}
	sort.Strings(names)

	results := make([]*domain.StrategyResult, 0, len(names))
	for _, name := range names {
		r, err := s.GetByStrategy(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *ResultStore) path(strategy string) string {
	return filepath.Join(s.dir, strategy+resultSuffix)
}
