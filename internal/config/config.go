package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/model"
	"TSNiSAM/internal/montecarlo"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		GinMode     string   `yaml:"gin_mode"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	DataSource struct {
		Provider       string `yaml:"provider"` // yahoo, polygon or mock
		PolygonAPIKey  string `yaml:"polygon_api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		DefaultStart   string `yaml:"default_start"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string `yaml:"backend"` // memory, redis or none
		TTLMinutes    int    `yaml:"ttl_minutes"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"cache"`
	Indicators calculator.Params `yaml:"indicators"`
	Simulation struct {
		Limits       montecarlo.Limits `yaml:"limits"`
		DefaultPaths int               `yaml:"default_paths"`
		DefaultDays  int               `yaml:"default_days"`
	} `yaml:"simulation"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		DigestCron  string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`

	Tickers         []model.TickerInfo    `yaml:"tickers"`
	Recommendations []RecommendationEntry `yaml:"recommendations"`
	// Fundamentals maps symbol to Piotroski score (0-9).
	Fundamentals map[string]int `yaml:"fundamentals"`
}

// RecommendationEntry is one configured row of the recommendations table.
// Returns are written as percentages, e.g. "23.58%".
type RecommendationEntry struct {
	Stock     string `yaml:"stock"`
	Symbol    string `yaml:"symbol"`
	Return1Y  string `yaml:"return_1y"`
	Return3Y  string `yaml:"return_3y"`
	Piotroski int    `yaml:"piotroski"`
}

// Load reads .env, then the YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.GinMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.DataSource.PolygonAPIKey = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.TTLMinutes = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 30
	}
	if c.DataSource.DefaultStart == "" {
		c.DataSource.DefaultStart = "2020-01-01"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 60
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	p := c.Indicators
	if len(p.SMAWindows) == 0 && len(p.EMAWindows) == 0 && p.RSIWindow == 0 && p.MACDSlow == 0 && p.BBWindow == 0 {
		c.Indicators = calculator.DefaultParams()
	}
	if c.Simulation.Limits == (montecarlo.Limits{}) {
		c.Simulation.Limits = montecarlo.UILimits
	}
	if c.Simulation.DefaultPaths == 0 {
		c.Simulation.DefaultPaths = 500
	}
	if c.Simulation.DefaultDays == 0 {
		c.Simulation.DefaultDays = 100
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 16 * * 1-5"
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 30 16 * * 1-5"
	}
	if len(c.Tickers) == 0 {
		c.Tickers = []model.TickerInfo{
			{Symbol: "RELIANCE.NS", Name: "Reliance Industries", Sector: "Energy"},
			{Symbol: "TCS.NS", Name: "Tata Consultancy Services", Sector: "Information Technology"},
			{Symbol: "HDFCBANK.NS", Name: "HDFC Bank", Sector: "Financials"},
			{Symbol: "INFY.NS", Name: "Infosys", Sector: "Information Technology"},
			{Symbol: "HINDUNILVR.NS", Name: "Hindustan Unilever", Sector: "Consumer Staples"},
		}
	}
	if len(c.Recommendations) == 0 {
		c.Recommendations = []RecommendationEntry{
			{Stock: "Reliance Industries", Symbol: "RELIANCE.NS", Return1Y: "23.58%", Return3Y: "53.74%", Piotroski: 7},
			{Stock: "Tata Motors", Symbol: "TATAMOTORS.NS", Return1Y: "103.82%", Return3Y: "217.44%", Piotroski: 6},
			{Stock: "SBI", Symbol: "SBIN.NS", Return1Y: "37.23%", Return3Y: "123.9%", Piotroski: 5},
		}
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode %q is not one of debug, release, test", c.Server.GinMode)
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "polygon":
		if c.DataSource.PolygonAPIKey == "" {
			return errors.New("data_source.polygon_api_key is required for the polygon provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, polygon, mock", c.DataSource.Provider)
	}
	if _, err := time.Parse(time.DateOnly, c.DataSource.DefaultStart); err != nil {
		return fmt.Errorf("data_source.default_start: %w", err)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTLMinutes < 0 {
		return errors.New("cache.ttl_minutes must not be negative")
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	lim := c.Simulation.Limits
	if lim.MinPaths <= 0 || lim.MaxPaths < lim.MinPaths || lim.MinHorizon <= 0 || lim.MaxHorizon < lim.MinHorizon {
		return fmt.Errorf("simulation.limits are inconsistent: %+v", lim)
	}

	seen := make(map[string]bool, len(c.Tickers))
	for _, t := range c.Tickers {
		if t.Symbol == "" {
			return errors.New("tickers: symbol is required")
		}
		if seen[t.Symbol] {
			return fmt.Errorf("tickers: duplicate symbol %s", t.Symbol)
		}
		seen[t.Symbol] = true
	}
	for sym, score := range c.Fundamentals {
		if score < 0 || score > 9 {
			return fmt.Errorf("fundamentals.%s: piotroski score %d outside 0-9", sym, score)
		}
	}
	if _, err := c.RecommendationRows(); err != nil {
		return err
	}
	return nil
}

// FetchTimeout returns the data source timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// CacheTTL returns the series cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// RecommendationRows parses the configured recommendations table.
func (c *Config) RecommendationRows() ([]model.Recommendation, error) {
	rows := make([]model.Recommendation, 0, len(c.Recommendations))
	for _, r := range c.Recommendations {
		r1, err := parsePercent(r.Return1Y)
		if err != nil {
			return nil, fmt.Errorf("recommendations.%s.return_1y: %w", r.Stock, err)
		}
		r3, err := parsePercent(r.Return3Y)
		if err != nil {
			return nil, fmt.Errorf("recommendations.%s.return_3y: %w", r.Stock, err)
		}
		if r.Piotroski < 0 || r.Piotroski > 9 {
			return nil, fmt.Errorf("recommendations.%s: piotroski score %d outside 0-9", r.Stock, r.Piotroski)
		}
		rows = append(rows, model.Recommendation{
			Stock:     r.Stock,
			Symbol:    r.Symbol,
			Return1Y:  r1,
			Return3Y:  r3,
			Piotroski: r.Piotroski,
		})
	}
	return rows, nil
}

// PiotroskiScore looks up the fundamentals map first, then the recommendations table.
func (c *Config) PiotroskiScore(symbol string) (int, bool) {
	if s, ok := c.Fundamentals[symbol]; ok {
		return s, true
	}
	for _, r := range c.Recommendations {
		if r.Symbol == symbol {
			return r.Piotroski, true
		}
	}
	return 0, false
}

// parsePercent turns "23.58%" into the fraction 0.2358.
func parsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	pct := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, err
	}
	if pct {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d, nil
}
