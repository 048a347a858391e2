package cache

import (
	"context"
	"time"

	"TSNiSAM/internal/model"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process SeriesCache with TTL expiry.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl.
// A non-positive ttl uses DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (model.PriceSeries, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return model.PriceSeries{}, false
	}
	series, ok := v.(model.PriceSeries)
	return series, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, series model.PriceSeries) {
	m.c.Set(key, series, gocache.DefaultExpiration)
}

func (m *MemoryCache) InvalidateSymbol(_ context.Context, symbol string) int {
	n := 0
	for key := range m.c.Items() {
		if keyHasSymbol(key, symbol) {
			m.c.Delete(key)
			n++
		}
	}
	return n
}

func (m *MemoryCache) Flush(context.Context) {
	m.c.Flush()
}

// Len reports the number of unexpired entries.
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}
