package calculator

import (
	"fmt"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"
)

// MACDResult holds the three aligned MACD series.
type MACDResult struct {
	Line      model.Series
	Signal    model.Series
	Histogram model.Series
}

// MACDRequiredLength is the shortest series that yields one signal value.
func MACDRequiredLength(slow, signal int) int { return slow + signal - 1 }

// CalculateMACD computes EMA(fast) - EMA(slow) of closes and the EMA(signal) of that line.
// The line is defined from index slow-1, the signal and histogram from slow+signal-2.
func CalculateMACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	for _, c := range []struct {
		name   string
		period int
	}{{"MACD fast", fast}, {"MACD slow", slow}, {"MACD signal", signal}} {
		if err := checkPeriod(c.name, c.period); err != nil {
			return nil, err
		}
	}
	if fast >= slow {
		return nil, fmt.Errorf("%w: MACD fast period %d must be below slow period %d",
			customerrors.ErrInvalidParameter, fast, slow)
	}
	need := MACDRequiredLength(slow, signal)
	if len(closes) < need {
		return nil, insufficient("MACD", need, len(closes))
	}

	fastEMA := emaFrom(closes, 0, fast)
	slowEMA := emaFrom(closes, 0, slow)

	n := len(closes)
	res := &MACDResult{
		Line:      model.NewSeries(n),
		Histogram: model.NewSeries(n),
	}
	line := make([]float64, n)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i].V - slowEMA[i].V
		res.Line[i] = model.Some(line[i])
	}

	res.Signal = emaFrom(line, slow-1, signal)
	for i := range res.Signal {
		if res.Signal[i].Valid && res.Line[i].Valid {
			res.Histogram[i] = model.Some(res.Line[i].V - res.Signal[i].V)
		}
	}
	return res, nil
}
