package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"TSNiSAM/internal/cache"
	"TSNiSAM/internal/collector"
	"TSNiSAM/internal/config"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/notifier"
	"TSNiSAM/internal/recorder"
	"TSNiSAM/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	service  *service.AnalysisService
	source   string
	recorder recorder.Recorder
	closers  []func() error
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	setupLogging(cfg)

	a := &app{cfg: cfg, metrics: metrics.New()}

	fetcher := newFetcher(cfg)

	seriesCache, err := a.newCache()
	if err != nil {
		return nil, err
	}

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Str("component", "main").Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	coll := collector.NewCollector(fetcher, seriesCache, cfg.Tickers, a.metrics)
	a.source = coll.Source()
	log.Info().Str("component", "main").Str("source", a.source).Msg("data source selected")
	a.service, err = service.New(cfg, coll, a.recorder, a.metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init service: %w", err)
	}
	return a, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "polygon":
		return collector.NewPolygonFetcher(cfg.DataSource.PolygonAPIKey)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher("", cfg.Proxy, cfg.FetchTimeout())
	}
}

func (a *app) newCache() (cache.SeriesCache, error) {
	switch a.cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     a.cfg.Cache.RedisAddr,
			Password: a.cfg.Cache.RedisPassword,
			DB:       a.cfg.Cache.RedisDB,
			TTL:      a.cfg.CacheTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return rc, nil
	case "none":
		return cache.NoopCache{}, nil
	default:
		return cache.NewMemoryCache(a.cfg.CacheTTL()), nil
	}
}

func (a *app) notifier() notifier.Notifier {
	if a.cfg.Telegram.BotToken == "" || a.cfg.Telegram.ChatID == "" {
		return notifier.NoopNotifier{}
	}
	return notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, "")
}

// Close releases the recorder and cache connections.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Str("component", "main").Err(err).Msg("close resources")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
}
