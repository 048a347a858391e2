package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/collector"
	"TSNiSAM/internal/config"
	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/model"
	"TSNiSAM/internal/montecarlo"
	"TSNiSAM/internal/recorder"
	"TSNiSAM/internal/strategy"

	"github.com/rs/zerolog/log"
)

// AnalysisService ties the collector to the indicator engine, the path
// simulator and signal scoring, and journals every run.
type AnalysisService struct {
	collector       *collector.Collector
	params          calculator.Params
	engine          *strategy.Engine
	limits          montecarlo.Limits
	defaultPaths    int
	defaultDays     int
	defaultStart    time.Time
	recommendations []model.Recommendation
	cfg             *config.Config
	recorder        recorder.Recorder
	metrics         *metrics.Metrics

	now func() time.Time
}

// New builds the service from validated configuration.
func New(cfg *config.Config, coll *collector.Collector, rec recorder.Recorder, m *metrics.Metrics) (*AnalysisService, error) {
	rows, err := cfg.RecommendationRows()
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(time.DateOnly, cfg.DataSource.DefaultStart)
	if err != nil {
		return nil, fmt.Errorf("default start: %w", err)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &AnalysisService{
		collector:       coll,
		params:          cfg.Indicators,
		engine:          strategy.NewEngine(cfg.Indicators),
		limits:          cfg.Simulation.Limits,
		defaultPaths:    cfg.Simulation.DefaultPaths,
		defaultDays:     cfg.Simulation.DefaultDays,
		defaultStart:    start,
		recommendations: rows,
		cfg:             cfg,
		recorder:        rec,
		metrics:         m,
		now:             time.Now,
	}, nil
}

// DefaultRange is the configured start date through today.
func (s *AnalysisService) DefaultRange() (start, end time.Time) {
	return s.defaultStart, s.now().UTC()
}

// Params returns the configured indicator parameters.
func (s *AnalysisService) Params() calculator.Params { return s.params }

// Limits returns the simulation bounds applied to requests.
func (s *AnalysisService) Limits() montecarlo.Limits { return s.limits }

// Tickers returns the configured catalog.
func (s *AnalysisService) Tickers() []model.TickerInfo {
	return s.collector.Tickers()
}

// Prices returns the daily series, or ISO-week bars when weekly is set.
func (s *AnalysisService) Prices(ctx context.Context, symbol string, start, end time.Time, weekly bool) (model.PriceSeries, error) {
	t0 := time.Now()
	series, err := s.collector.Series(ctx, symbol, start, end)
	s.journalAnalysis("prices", symbol, start, end, series.Len(), nil, time.Since(t0), err)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if weekly {
		series.Bars = collector.AggregateWeekly(series.Bars)
	}
	return series, nil
}

// IndicatorResult is an indicator set aligned with its source dates and closes.
type IndicatorResult struct {
	Symbol     string             `json:"symbol"`
	Params     calculator.Params  `json:"params"`
	Dates      []time.Time        `json:"dates"`
	Close      []float64          `json:"close"`
	Indicators model.IndicatorSet `json:"indicators"`
}

// Indicators computes the indicator set. A nil params uses the configured parameters.
func (s *AnalysisService) Indicators(ctx context.Context, symbol string, start, end time.Time, params *calculator.Params) (*IndicatorResult, error) {
	p := s.params
	if params != nil {
		p = *params
	}
	t0 := time.Now()
	series, set, err := s.indicators(ctx, symbol, start, end, p)
	s.journalAnalysis("indicators", symbol, start, end, series.Len(), nil, time.Since(t0), err)
	if err != nil {
		return nil, err
	}
	return &IndicatorResult{
		Symbol:     symbol,
		Params:     p,
		Dates:      series.Dates(),
		Close:      series.Closes(),
		Indicators: set,
	}, nil
}

func (s *AnalysisService) indicators(ctx context.Context, symbol string, start, end time.Time, p calculator.Params) (model.PriceSeries, model.IndicatorSet, error) {
	if err := p.Validate(); err != nil {
		return model.PriceSeries{}, nil, err
	}
	series, err := s.collector.Series(ctx, symbol, start, end)
	if err != nil {
		return model.PriceSeries{}, nil, err
	}
	t0 := time.Now()
	set, err := calculator.ComputeIndicators(series, p)
	s.metrics.ObserveCompute("indicators", time.Since(t0))
	if err != nil {
		return series, nil, err
	}
	return series, set, nil
}

// Signal scores the latest indicator values for symbol.
func (s *AnalysisService) Signal(ctx context.Context, symbol string, start, end time.Time) (*model.Signal, error) {
	t0 := time.Now()
	series, set, err := s.indicators(ctx, symbol, start, end, s.params)
	var sig *model.Signal
	if err == nil {
		t1 := time.Now()
		sig = s.engine.Evaluate(series, set)
		s.metrics.ObserveCompute("signal", time.Since(t1))
	}
	s.journalAnalysis("signal", symbol, start, end, series.Len(), sig, time.Since(t0), err)
	return sig, err
}

// SimulationRequest describes one simulation. Nil Paths/Days use the configured
// defaults; nil Drift/Volatility are estimated from the series.
type SimulationRequest struct {
	Symbol     string
	Start      time.Time
	End        time.Time
	Paths      *int
	Days       *int
	Drift      *float64
	Volatility *float64
	Seed       *uint64
}

// SimulationResult is a path set with its summary bands.
type SimulationResult struct {
	Symbol    string                 `json:"symbol"`
	Estimated bool                   `json:"estimated"`
	Paths     model.SimulatedPathSet `json:"simulation"`
	Summary   model.PathSummary      `json:"summary"`
}

// Simulate runs the path simulator from the last close of the series.
func (s *AnalysisService) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	t0 := time.Now()
	res, params, err := s.simulate(ctx, req)
	run := &recorder.SimulationRun{
		Symbol:      req.Symbol,
		StartPrice:  params.StartPrice,
		HorizonDays: params.HorizonDays,
		NumPaths:    params.NumPaths,
		Drift:       params.Drift,
		Volatility:  params.Volatility,
		Seed:        params.Seed,
		Duration:    time.Since(t0),
	}
	if err != nil {
		run.Err = err.Error()
	} else if n := len(res.Summary.P50); n > 0 {
		run.P5, run.P50, run.P95 = res.Summary.P5[n-1], res.Summary.P50[n-1], res.Summary.P95[n-1]
	}
	if rerr := s.recorder.RecordSimulation(run); rerr != nil {
		log.Warn().Str("component", "service").Err(rerr).Msg("journal simulation run")
	}
	return res, err
}

func (s *AnalysisService) simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, montecarlo.Params, error) {
	p := montecarlo.Params{
		HorizonDays: s.defaultDays,
		NumPaths:    s.defaultPaths,
		Seed:        req.Seed,
		Limits:      s.limits,
	}
	if req.Days != nil {
		p.HorizonDays = *req.Days
	}
	if req.Paths != nil {
		p.NumPaths = *req.Paths
	}

	series, err := s.collector.Series(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		return nil, p, err
	}
	p.StartPrice, _ = series.LastClose()

	estimated := req.Drift == nil || req.Volatility == nil
	if estimated {
		drift, vol, err := montecarlo.EstimateParams(series.Closes())
		if err != nil {
			return nil, p, err
		}
		p.Drift, p.Volatility = drift, vol
	}
	if req.Drift != nil {
		p.Drift = *req.Drift
	}
	if req.Volatility != nil {
		p.Volatility = *req.Volatility
	}

	t0 := time.Now()
	set, err := montecarlo.SimulatePaths(p)
	if err != nil {
		return nil, p, err
	}
	summary := montecarlo.Summarize(set)
	s.metrics.ObserveCompute("simulation", time.Since(t0))
	s.metrics.AddPaths(len(set.Paths))

	return &SimulationResult{
		Symbol:    req.Symbol,
		Estimated: estimated,
		Paths:     set,
		Summary:   summary,
	}, p, nil
}

// Recommendations returns the configured recommendations table.
func (s *AnalysisService) Recommendations() []model.Recommendation {
	out := make([]model.Recommendation, len(s.recommendations))
	copy(out, s.recommendations)
	return out
}

// Fundamentals returns the Piotroski gauge value for symbol.
func (s *AnalysisService) Fundamentals(symbol string) (model.Fundamentals, error) {
	score, ok := s.cfg.PiotroskiScore(symbol)
	if !ok {
		if err := s.collector.CheckSymbol(symbol); err != nil {
			return model.Fundamentals{}, err
		}
		return model.Fundamentals{}, fmt.Errorf("%w: no fundamentals configured for %s", customerrors.ErrDataUnavailable, symbol)
	}
	return model.Fundamentals{
		Symbol:    symbol,
		Piotroski: score,
		MaxScore:  9,
		Rating:    piotroskiRating(score),
	}, nil
}

func piotroskiRating(score int) string {
	switch {
	case score >= 7:
		return "strong"
	case score >= 4:
		return "average"
	default:
		return "weak"
	}
}

// InvalidateCache drops the cached series for symbol.
func (s *AnalysisService) InvalidateCache(ctx context.Context, symbol string) (int, error) {
	return s.collector.Invalidate(ctx, symbol)
}

// WarmCache flushes the cache and fetches every catalog ticker for the default range.
func (s *AnalysisService) WarmCache(ctx context.Context) error {
	s.collector.Flush(ctx)
	start, end := s.DefaultRange()

	var errs []error
	for _, t := range s.collector.Tickers() {
		if _, err := s.collector.Series(ctx, t.Symbol, start, end); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Symbol, err))
		}
	}
	log.Info().Str("component", "service").Int("tickers", len(s.collector.Tickers())).
		Int("failed", len(errs)).Msg("cache warmed")
	return errors.Join(errs...)
}

// Digest computes the signal for every catalog ticker over the default range.
// Per-ticker failures are reported in the entry, not returned.
func (s *AnalysisService) Digest(ctx context.Context) []model.DigestEntry {
	start, end := s.DefaultRange()
	tickers := s.collector.Tickers()
	entries := make([]model.DigestEntry, 0, len(tickers))
	for _, t := range tickers {
		entry := model.DigestEntry{Ticker: t}
		sig, err := s.Signal(ctx, t.Symbol, start, end)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Signal = sig
		}
		entries = append(entries, entry)
	}
	return entries
}

// RecordDigest journals a digest delivery.
func (s *AnalysisService) RecordDigest(trigger string, tickers int, sendErr error) {
	run := &recorder.DigestRun{Trigger: trigger, Tickers: tickers, Sent: sendErr == nil}
	if sendErr != nil {
		run.Err = sendErr.Error()
	}
	if err := s.recorder.RecordDigest(run); err != nil {
		log.Warn().Str("component", "service").Err(err).Msg("journal digest run")
	}
}

func (s *AnalysisService) journalAnalysis(kind, symbol string, start, end time.Time, bars int, sig *model.Signal, d time.Duration, err error) {
	run := &recorder.AnalysisRun{
		Kind:     kind,
		Symbol:   symbol,
		Start:    start,
		End:      end,
		Bars:     bars,
		Duration: d,
	}
	if sig != nil {
		run.Label = string(sig.Label)
		run.TotalScore = sig.TotalScore
	}
	if err != nil {
		run.Err = err.Error()
	}
	if rerr := s.recorder.RecordAnalysis(run); rerr != nil {
		log.Warn().Str("component", "service").Err(rerr).Msg("journal analysis run")
	}
}
