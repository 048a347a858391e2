package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
	"time"

	"TSNiSAM/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With no DailyData it generates a deterministic weekday series per symbol.
type MockFetcher struct {
	Price     float64 // base price; derived from the symbol when zero
	DailyData []model.OHLCV
	Err       error
	calls     atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchDailyBars ran.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	base := m.Price
	if base == 0 {
		h := fnv.New32a()
		h.Write([]byte(symbol))
		base = 100 + float64(h.Sum32()%2900)
	}
	return generateMockBars(base, dayOf(start), dayOf(end)), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + 0.0004*float64(i) + 0.06*math.Sin(float64(i)/9))
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000 + float64(i%7)*50000,
		})
		i++
	}
	return bars
}
