package calculator

import (
	"TSNiSAM/internal/model"
)

// CalculateRSI computes the RSI series over the given period using simple
// trailing averages of day-over-day gains and losses.
// Requires at least period+1 closes; the first period points are undefined.
// A point whose average loss is zero is undefined rather than 100.
func CalculateRSI(closes []float64, period int) (model.Series, error) {
	if err := checkPeriod("RSI", period); err != nil {
		return nil, err
	}
	if len(closes) < period+1 {
		return nil, insufficient("RSI", period+1, len(closes))
	}

	out := model.NewSeries(len(closes))
	p := float64(period)
	for i := period; i < len(closes); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change // make positive
			}
		}
		out[i] = rsiPoint(gain/p, loss/p)
	}
	return out, nil
}

// CalculateWilderRSI computes the Wilder-smoothed RSI over the given period.
// The first value uses simple averages of the first period changes; later
// values apply avg = (prev*(period-1) + current) / period.
func CalculateWilderRSI(closes []float64, period int) (model.Series, error) {
	if err := checkPeriod("RSI", period); err != nil {
		return nil, err
	}
	if len(closes) < period+1 {
		return nil, insufficient("RSI", period+1, len(closes))
	}

	out := model.NewSeries(len(closes))
	p := float64(period)

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= p
	avgLoss /= p
	out[period] = rsiPoint(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiPoint(avgGain, avgLoss)
	}
	return out, nil
}

func rsiPoint(avgGain, avgLoss float64) model.Value {
	if avgLoss == 0 {
		return model.Value{}
	}
	rs := avgGain / avgLoss
	return model.Some(100.0 - 100.0/(1.0+rs))
}
