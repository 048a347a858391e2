package calculator

import (
	"fmt"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"
)

// CalculateSMA computes the simple moving average of closes over the given period.
// Index i holds the mean of closes[i-period+1..i]; the first period-1 points are undefined.
func CalculateSMA(closes []float64, period int) (model.Series, error) {
	if err := checkPeriod("SMA", period); err != nil {
		return nil, err
	}
	if len(closes) < period {
		return nil, insufficient("SMA", period, len(closes))
	}
	out := model.NewSeries(len(closes))
	for i := period - 1; i < len(closes); i++ {
		out[i] = model.Some(mean(closes[i-period+1 : i+1]))
	}
	return out, nil
}

// CalculateEMA computes an exponential moving average seeded with the SMA of
// the first period closes. Points before index period-1 are undefined.
func CalculateEMA(closes []float64, period int) (model.Series, error) {
	if err := checkPeriod("EMA", period); err != nil {
		return nil, err
	}
	if len(closes) < period {
		return nil, insufficient("EMA", period, len(closes))
	}
	return emaFrom(closes, 0, period), nil
}

// emaFrom runs an SMA-seeded EMA over values[from:], writing results at the
// original indices. Callers guarantee len(values)-from >= period.
func emaFrom(values []float64, from, period int) model.Series {
	out := model.NewSeries(len(values))
	seed := from + period - 1
	if seed >= len(values) {
		return out
	}
	k := 2.0 / float64(period+1)
	ema := mean(values[from : seed+1])
	out[seed] = model.Some(ema)
	for i := seed + 1; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = model.Some(ema)
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// MaxWindow bounds every indicator period, about 40 years of daily bars.
const MaxWindow = 10000

func checkPeriod(name string, period int) error {
	if period <= 0 || period > MaxWindow {
		return fmt.Errorf("%w: %s period must be within [1, %d], got %d",
			customerrors.ErrInvalidParameter, name, MaxWindow, period)
	}
	return nil
}

func insufficient(name string, need, have int) error {
	return fmt.Errorf("%w: %s needs %d bars, have %d", customerrors.ErrInsufficientData, name, need, have)
}
