package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"TSNiSAM/internal/cache"
	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/model"

	"github.com/rs/zerolog/log"
)

// Collector resolves price series for catalog symbols through the cache and a Fetcher.
type Collector struct {
	fetcher Fetcher
	cache   cache.SeriesCache
	metrics *metrics.Metrics
	tickers []model.TickerInfo
	known   map[string]bool
}

// NewCollector creates a Collector. A nil cache disables caching; nil metrics records nothing.
func NewCollector(fetcher Fetcher, c cache.SeriesCache, tickers []model.TickerInfo, m *metrics.Metrics) *Collector {
	if c == nil {
		c = cache.NoopCache{}
	}
	known := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		known[t.Symbol] = true
	}
	return &Collector{fetcher: fetcher, cache: c, metrics: m, tickers: tickers, known: known}
}

// Source names the underlying data provider.
func (c *Collector) Source() string { return c.fetcher.Name() }

// Tickers returns the configured catalog in display order.
func (c *Collector) Tickers() []model.TickerInfo {
	out := make([]model.TickerInfo, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// CheckSymbol returns ErrUnknownTicker for symbols outside the catalog.
func (c *Collector) CheckSymbol(symbol string) error {
	if !c.known[symbol] {
		return fmt.Errorf("%w: %s", customerrors.ErrUnknownTicker, symbol)
	}
	return nil
}

// Series returns the daily bars for symbol over [start, end].
func (c *Collector) Series(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	if err := c.CheckSymbol(symbol); err != nil {
		return model.PriceSeries{}, err
	}
	start, end = dayOf(start), dayOf(end)
	if !start.Before(end) {
		return model.PriceSeries{}, fmt.Errorf("%w: start %s must be before end %s", customerrors.ErrInvalidParameter,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	key := cache.Key(symbol, start, end)
	if s, ok := c.cache.Get(ctx, key); ok {
		c.metrics.CacheLookup(true)
		return s, nil
	}
	c.metrics.CacheLookup(false)

	t0 := time.Now()
	bars, err := c.fetcher.FetchDailyBars(ctx, symbol, start, end)
	c.metrics.ObserveFetch(c.fetcher.Name(), time.Since(t0), err)
	if err != nil {
		log.Warn().Str("component", "collector").Str("symbol", symbol).Str("source", c.fetcher.Name()).
			Err(err).Msg("fetch failed")
		return model.PriceSeries{}, fmt.Errorf("%w: %s via %s: %w", customerrors.ErrDataUnavailable, symbol, c.fetcher.Name(), err)
	}

	series := model.PriceSeries{
		Symbol:    symbol,
		Start:     start,
		End:       end,
		Bars:      normalize(bars, start, end),
		FetchedAt: time.Now().UTC(),
	}
	if err := series.Validate(); err != nil {
		return model.PriceSeries{}, err
	}
	log.Debug().Str("component", "collector").Str("symbol", symbol).Int("bars", series.Len()).
		Dur("took", time.Since(t0)).Msg("series fetched")

	c.cache.Set(ctx, key, series)
	return series, nil
}

// Invalidate drops every cached range for symbol.
func (c *Collector) Invalidate(ctx context.Context, symbol string) (int, error) {
	if err := c.CheckSymbol(symbol); err != nil {
		return 0, err
	}
	n := c.cache.InvalidateSymbol(ctx, symbol)
	log.Info().Str("component", "collector").Str("symbol", symbol).Int("entries", n).Msg("cache invalidated")
	return n, nil
}

// Flush empties the series cache.
func (c *Collector) Flush(ctx context.Context) {
	c.cache.Flush(ctx)
}

// normalize sorts bars by day, keeps the last bar for a repeated day and drops bars outside [start, end].
func normalize(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		b.Time = dayOf(b.Time)
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}
