package calculator

import (
	"fmt"
	"math"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"
)

// BollingerResult holds the aligned band series.
type BollingerResult struct {
	Upper  model.Series
	Middle model.Series
	Lower  model.Series
}

// CalculateBollinger computes middle = SMA(period) and upper/lower = middle ± k·σ,
// σ being the population standard deviation of the same window.
func CalculateBollinger(closes []float64, period int, k float64) (*BollingerResult, error) {
	if err := checkPeriod("Bollinger", period); err != nil {
		return nil, err
	}
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%w: Bollinger k must be positive, got %v", customerrors.ErrInvalidParameter, k)
	}
	if len(closes) < period {
		return nil, insufficient("Bollinger", period, len(closes))
	}

	n := len(closes)
	res := &BollingerResult{
		Upper:  model.NewSeries(n),
		Middle: model.NewSeries(n),
		Lower:  model.NewSeries(n),
	}
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		m := mean(window)
		sd := stdDev(window, m)
		res.Middle[i] = model.Some(m)
		res.Upper[i] = model.Some(m + k*sd)
		res.Lower[i] = model.Some(m - k*sd)
	}
	return res, nil
}

func stdDev(xs []float64, m float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
