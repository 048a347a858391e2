package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TSNiSAM/internal/model"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "tsnisam:series:"

// RedisConfig configures the Redis-backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache shares fetched series between processes. Values are JSON encoded.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	log.Info().Str("component", "cache").Str("addr", cfg.Addr).Dur("ttl", ttl).Msg("redis cache connected")
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (model.PriceSeries, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Warn().Str("component", "cache").Err(err).Str("key", key).Msg("redis get failed")
		}
		return model.PriceSeries{}, false
	}
	var series model.PriceSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		log.Warn().Str("component", "cache").Err(err).Str("key", key).Msg("dropping undecodable entry")
		r.client.Del(ctx, redisKeyPrefix+key)
		return model.PriceSeries{}, false
	}
	return series, true
}

func (r *RedisCache) Set(ctx context.Context, key string, series model.PriceSeries) {
	raw, err := json.Marshal(series)
	if err != nil {
		log.Warn().Str("component", "cache").Err(err).Str("key", key).Msg("encode series")
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		log.Warn().Str("component", "cache").Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (r *RedisCache) InvalidateSymbol(ctx context.Context, symbol string) int {
	return r.deleteMatching(ctx, redisKeyPrefix+symbolPrefix(symbol)+"*")
}

func (r *RedisCache) Flush(ctx context.Context) {
	r.deleteMatching(ctx, redisKeyPrefix+"*")
}

// deleteMatching removes every key matching pattern, walking the keyspace with SCAN.
func (r *RedisCache) deleteMatching(ctx context.Context, pattern string) int {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Warn().Str("component", "cache").Err(err).Str("pattern", pattern).Msg("redis scan failed")
			return deleted
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				log.Warn().Str("component", "cache").Err(err).Msg("redis del failed")
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
