package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"TSNiSAM/internal/cache"
	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/collector"
	"TSNiSAM/internal/config"
	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/recorder"
)

type fakeRecorder struct {
	mu          sync.Mutex
	analysis    []recorder.AnalysisRun
	simulations []recorder.SimulationRun
	digests     []recorder.DigestRun
}

func (f *fakeRecorder) RecordAnalysis(run *recorder.AnalysisRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analysis = append(f.analysis, *run)
	return nil
}

func (f *fakeRecorder) RecordSimulation(run *recorder.SimulationRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulations = append(f.simulations, *run)
	return nil
}

func (f *fakeRecorder) RecordDigest(run *recorder.DigestRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests = append(f.digests, *run)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

var fixedNow = time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*AnalysisService, *collector.MockFetcher, *fakeRecorder) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.DataSource.Provider = "mock"
	cfg.DataSource.DefaultStart = "2023-01-01"

	mock := &collector.MockFetcher{}
	coll := collector.NewCollector(mock, cache.NewMemoryCache(time.Minute), cfg.Tickers, metrics.New())
	rec := &fakeRecorder{}
	svc, err := New(cfg, coll, rec, metrics.New())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, rec
}

func ptr[T any](v T) *T { return &v }

func TestIndicatorsAndSignal(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	start, end := svc.DefaultRange()

	res, err := svc.Indicators(ctx, "TCS.NS", start, end, nil)
	if err != nil {
		t.Fatalf("Indicators: %v", err)
	}
	for _, name := range []string{"MA20", "MA50", "RSI14", "MACD", "MACD_SIGNAL", "BB_UPPER"} {
		s, ok := res.Indicators[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if len(s) != len(res.Close) {
			t.Errorf("%s length %d, want %d", name, len(s), len(res.Close))
		}
	}

	sig, err := svc.Signal(ctx, "TCS.NS", start, end)
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if sig.Symbol != "TCS.NS" || len(sig.Factors) != 4 {
		t.Errorf("signal = %+v", sig)
	}
	if len(rec.analysis) != 2 || rec.analysis[1].Kind != "signal" || rec.analysis[1].Label == "" {
		t.Errorf("journal = %+v", rec.analysis)
	}
}

func TestIndicatorsCustomParamsInsufficient(t *testing.T) {
	svc, _, rec := newTestService(t)
	p := calculator.DefaultParams()
	p.SMAWindows = []int{2000}
	start, end := svc.DefaultRange()
	_, err := svc.Indicators(context.Background(), "TCS.NS", start, end, &p)
	if !errors.Is(err, customerrors.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
	if len(rec.analysis) != 1 || rec.analysis[0].Err == "" {
		t.Errorf("failed run not journaled: %+v", rec.analysis)
	}
}

func TestSimulate(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	start, end := svc.DefaultRange()

	res, err := svc.Simulate(ctx, SimulationRequest{
		Symbol: "INFY.NS", Start: start, End: end,
		Paths: ptr(100), Days: ptr(30), Drift: ptr(0.0), Volatility: ptr(0.0), Seed: ptr(uint64(7)),
	})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Estimated {
		t.Error("explicit drift/volatility reported as estimated")
	}
	if len(res.Paths.Paths) != 100 || len(res.Paths.Paths[0]) != 30 {
		t.Fatalf("shape %dx%d", len(res.Paths.Paths), len(res.Paths.Paths[0]))
	}
	start0 := res.Paths.StartPrice
	for _, v := range res.Paths.Paths[99] {
		if v != start0 {
			t.Fatalf("zero-volatility path moved: %v != %v", v, start0)
		}
	}
	if len(rec.simulations) != 1 || rec.simulations[0].P50 != start0 {
		t.Errorf("journal = %+v", rec.simulations)
	}

	est, err := svc.Simulate(ctx, SimulationRequest{Symbol: "INFY.NS", Start: start, End: end, Seed: ptr(uint64(1))})
	if err != nil {
		t.Fatalf("Simulate with defaults: %v", err)
	}
	if !est.Estimated || len(est.Paths.Paths) != 500 || est.Paths.HorizonDays != 100 {
		t.Errorf("defaults not applied: estimated=%v paths=%d days=%d",
			est.Estimated, len(est.Paths.Paths), est.Paths.HorizonDays)
	}
}

func TestSimulateRejectsOutOfBounds(t *testing.T) {
	svc, _, rec := newTestService(t)
	start, end := svc.DefaultRange()
	_, err := svc.Simulate(context.Background(), SimulationRequest{Symbol: "INFY.NS", Start: start, End: end, Paths: ptr(5), Days: ptr(30)})
	if !errors.Is(err, customerrors.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if len(rec.simulations) != 1 || rec.simulations[0].Err == "" {
		t.Errorf("failed simulation not journaled: %+v", rec.simulations)
	}
}

func TestSimulateExplicitZeroIsNotDefault(t *testing.T) {
	svc, _, _ := newTestService(t)
	start, end := svc.DefaultRange()
	tests := []struct {
		name  string
		paths *int
		days  *int
	}{
		{"zero paths", ptr(0), nil},
		{"zero days", nil, ptr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Simulate(context.Background(), SimulationRequest{
				Symbol: "INFY.NS", Start: start, End: end, Paths: tt.paths, Days: tt.days,
			})
			if !errors.Is(err, customerrors.ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}

	res, err := svc.Simulate(context.Background(), SimulationRequest{Symbol: "INFY.NS", Start: start, End: end})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if got, want := len(res.Paths.Paths), svc.defaultPaths; got != want {
		t.Errorf("default paths = %d, want %d", got, want)
	}
}

func TestPricesWeekly(t *testing.T) {
	svc, _, _ := newTestService(t)
	start, end := svc.DefaultRange()
	daily, err := svc.Prices(context.Background(), "TCS.NS", start, end, false)
	if err != nil {
		t.Fatal(err)
	}
	weekly, err := svc.Prices(context.Background(), "TCS.NS", start, end, true)
	if err != nil {
		t.Fatal(err)
	}
	if weekly.Len() == 0 || weekly.Len()*4 > daily.Len() {
		t.Errorf("weekly %d bars vs daily %d", weekly.Len(), daily.Len())
	}
}

func TestFundamentals(t *testing.T) {
	svc, _, _ := newTestService(t)

	f, err := svc.Fundamentals("RELIANCE.NS")
	if err != nil {
		t.Fatalf("Fundamentals: %v", err)
	}
	if f.Piotroski != 7 || f.MaxScore != 9 || f.Rating != "strong" {
		t.Errorf("got %+v", f)
	}
	if _, err := svc.Fundamentals("TCS.NS"); !errors.Is(err, customerrors.ErrDataUnavailable) {
		t.Errorf("TCS.NS err = %v, want ErrDataUnavailable", err)
	}
	if _, err := svc.Fundamentals("NOPE"); !errors.Is(err, customerrors.ErrUnknownTicker) {
		t.Errorf("NOPE err = %v, want ErrUnknownTicker", err)
	}
}

func TestRecommendations(t *testing.T) {
	svc, _, _ := newTestService(t)
	rows := svc.Recommendations()
	if len(rows) != 3 || rows[0].Stock != "Reliance Industries" {
		t.Fatalf("rows = %+v", rows)
	}
	rows[0].Stock = "mutated"
	if svc.Recommendations()[0].Stock != "Reliance Industries" {
		t.Error("Recommendations exposes internal slice")
	}
}

func TestWarmCacheThenDigest(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.WarmCache(ctx); err != nil {
		t.Fatalf("WarmCache: %v", err)
	}
	if mock.Calls() != 5 {
		t.Errorf("fetches after warm = %d, want 5", mock.Calls())
	}

	entries := svc.Digest(ctx)
	if len(entries) != 5 {
		t.Fatalf("digest entries = %d", len(entries))
	}
	for _, e := range entries {
		if e.Error != "" || e.Signal == nil {
			t.Errorf("%s: %+v", e.Ticker.Symbol, e)
		}
	}
	if mock.Calls() != 5 {
		t.Errorf("digest refetched: calls = %d, want 5", mock.Calls())
	}
}

func TestWarmCacheReportsFailures(t *testing.T) {
	svc, mock, _ := newTestService(t)
	mock.Err = errors.New("down")
	err := svc.WarmCache(context.Background())
	if !errors.Is(err, customerrors.ErrDataUnavailable) {
		t.Errorf("err = %v, want ErrDataUnavailable", err)
	}

	entries := svc.Digest(context.Background())
	for _, e := range entries {
		if e.Error == "" {
			t.Errorf("%s: expected error entry", e.Ticker.Symbol)
		}
	}
}
