package montecarlo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"
)

// Limits bounds the size of a simulation request.
type Limits struct {
	MinPaths   int `yaml:"min_paths" json:"min_paths"`
	MaxPaths   int `yaml:"max_paths" json:"max_paths"`
	MinHorizon int `yaml:"min_horizon" json:"min_horizon"`
	MaxHorizon int `yaml:"max_horizon" json:"max_horizon"`
	// MaxCells caps HorizonDays*NumPaths.
	MaxCells int `yaml:"max_cells" json:"max_cells"`
}

var (
	// DefaultLimits applies when Params.Limits is the zero value.
	DefaultLimits = Limits{MinPaths: 1, MaxPaths: 10000, MinHorizon: 1, MaxHorizon: 3650, MaxCells: 5_000_000}
	// UILimits mirrors the dashboard sliders: 100-1000 simulations over 30-365 days.
	UILimits = Limits{MinPaths: 100, MaxPaths: 1000, MinHorizon: 30, MaxHorizon: 365, MaxCells: 365_000}
)

// Params describes one geometric random walk simulation.
type Params struct {
	StartPrice  float64
	HorizonDays int
	NumPaths    int
	Drift       float64
	Volatility  float64
	// Seed makes the output reproducible; nil draws fresh randomness.
	Seed   *uint64
	Limits Limits
}

// Validate checks the parameters against p.Limits (or DefaultLimits).
func (p Params) Validate() error {
	lim := p.Limits
	if lim == (Limits{}) {
		lim = DefaultLimits
	}
	switch {
	case !(p.StartPrice > 0) || math.IsInf(p.StartPrice, 0):
		return invalid("start price must be positive and finite, got %v", p.StartPrice)
	case math.IsNaN(p.Drift) || math.IsInf(p.Drift, 0):
		return invalid("drift must be finite, got %v", p.Drift)
	case !(p.Volatility >= 0) || math.IsInf(p.Volatility, 0):
		return invalid("volatility must be non-negative and finite, got %v", p.Volatility)
	case p.NumPaths < max(lim.MinPaths, 1) || p.NumPaths > lim.MaxPaths:
		return invalid("num_paths must be within [%d, %d], got %d", max(lim.MinPaths, 1), lim.MaxPaths, p.NumPaths)
	case p.HorizonDays < max(lim.MinHorizon, 1) || p.HorizonDays > lim.MaxHorizon:
		return invalid("horizon_days must be within [%d, %d], got %d", max(lim.MinHorizon, 1), lim.MaxHorizon, p.HorizonDays)
	case lim.MaxCells > 0 && p.HorizonDays > lim.MaxCells/p.NumPaths:
		return invalid("horizon_days x num_paths = %d exceeds %d", p.HorizonDays*p.NumPaths, lim.MaxCells)
	}
	return nil
}

// SimulatePaths draws p.NumPaths independent price paths of p.HorizonDays points.
// Every path starts at p.StartPrice and compounds path[t] = path[t-1]*(1+r_t)
// with r_t ~ Normal(p.Drift, p.Volatility) drawn independently per step.
// The step is not clamped: a draw below -1 takes the path to zero or below, which
// becomes likely once Volatility approaches 0.3 or more.
func SimulatePaths(p Params) (model.SimulatedPathSet, error) {
	if err := p.Validate(); err != nil {
		return model.SimulatedPathSet{}, err
	}

	rng := newRand(p.Seed)
	paths := make([][]float64, p.NumPaths)
	for i := range paths {
		path := make([]float64, p.HorizonDays)
		path[0] = p.StartPrice
		for t := 1; t < p.HorizonDays; t++ {
			r := p.Drift + p.Volatility*rng.NormFloat64()
			path[t] = path[t-1] * (1 + r)
		}
		paths[i] = path
	}

	set := model.SimulatedPathSet{
		StartPrice:  p.StartPrice,
		HorizonDays: p.HorizonDays,
		Drift:       p.Drift,
		Volatility:  p.Volatility,
		Paths:       paths,
	}
	if p.Seed != nil {
		seed := *p.Seed
		set.Seed = &seed
	}
	return set, nil
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", customerrors.ErrInvalidParameter, fmt.Sprintf(format, args...))
}
