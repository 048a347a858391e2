package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TSNiSAM/internal/model"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
)

// PolygonFetcher implements Fetcher using Polygon.io daily aggregates.
type PolygonFetcher struct {
	client *polygon.Client
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey string) *PolygonFetcher {
	return &PolygonFetcher{client: polygon.New(apiKey)}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

// polygonTicker strips exchange suffixes such as ".NS", which Polygon does not use.
func polygonTicker(symbol string) string {
	if i := strings.LastIndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

func (f *PolygonFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	params := models.ListAggsParams{
		Ticker:     polygonTicker(symbol),
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(dayOf(start)),
		To:         models.Millis(dayOf(end)),
	}.
		WithAdjusted(true).
		WithOrder(models.Asc).
		WithLimit(50000)

	it := f.client.ListAggs(ctx, params)

	var bars []model.OHLCV
	for it.Next() {
		agg := it.Item()
		bars = append(bars, model.OHLCV{
			Time:   dayOf(time.Time(agg.Timestamp).UTC()),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs: %w", err)
	}
	return bars, nil
}
