package cache

import (
	"context"
	"strings"
	"time"

	"TSNiSAM/internal/model"
)

// DefaultTTL is how long a fetched series stays fresh.
const DefaultTTL = time.Hour

// SeriesCache stores fetched price series keyed by symbol and date range.
type SeriesCache interface {
	Get(ctx context.Context, key string) (model.PriceSeries, bool)
	Set(ctx context.Context, key string, series model.PriceSeries)
	// InvalidateSymbol drops every range cached for symbol and returns how many entries went.
	InvalidateSymbol(ctx context.Context, symbol string) int
	Flush(ctx context.Context)
}

// Key builds the cache key for a symbol and date range at day precision.
func Key(symbol string, start, end time.Time) string {
	return symbol + "|" + start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)
}

func symbolPrefix(symbol string) string { return symbol + "|" }

func keyHasSymbol(key, symbol string) bool {
	return strings.HasPrefix(key, symbolPrefix(symbol))
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (model.PriceSeries, bool) {
	return model.PriceSeries{}, false
}
func (NoopCache) Set(context.Context, string, model.PriceSeries) {}
func (NoopCache) InvalidateSymbol(context.Context, string) int   { return 0 }
func (NoopCache) Flush(context.Context)                          {}
