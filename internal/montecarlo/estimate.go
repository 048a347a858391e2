package montecarlo

import (
	"fmt"
	"math"

	"TSNiSAM/internal/customerrors"
)

// EstimateParams estimates daily drift and volatility as the mean and sample
// standard deviation of simple daily returns of closes.
func EstimateParams(closes []float64) (drift, volatility float64, err error) {
	if len(closes) < 3 {
		return 0, 0, fmt.Errorf("%w: need at least 3 closes to estimate volatility, have %d",
			customerrors.ErrInsufficientData, len(closes))
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			return 0, 0, invalid("close at index %d is not positive", i-1)
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	drift = sum / float64(len(returns))

	var ss float64
	for _, r := range returns {
		d := r - drift
		ss += d * d
	}
	volatility = math.Sqrt(ss / float64(len(returns)-1))
	return drift, volatility, nil
}
