package strategy

import (
	"fmt"
	"math"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/model"
)

const (
	weightRSI       = 0.35
	weightMACD      = 0.25
	weightBollinger = 0.20
	weightTrend     = 0.20
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

func unavailable(name string, weight float64) model.FactorScore {
	return factor(name, 0, weight, "n/a")
}

// scoreRSI scores the latest RSI against the 30/70 zones.
// Weight: 0.35
func scoreRSI(rsi float64, ok bool) model.FactorScore {
	const name = "RSI Zone"
	if !ok {
		return unavailable(name, weightRSI)
	}
	var score float64
	switch {
	case rsi <= 30:
		score = 2.0
	case rsi <= 40:
		score = 1.0
	case rsi < 60:
		score = 0
	case rsi < 70:
		score = -1.0
	default:
		score = -2.0
	}
	return factor(name, score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreMACD scores the histogram sign, its direction and zero crosses.
// Weight: 0.25
func scoreMACD(hist model.Series) model.FactorScore {
	const name = "MACD Momentum"
	n := len(hist)
	if n < 2 || !hist[n-1].Valid || !hist[n-2].Valid {
		return unavailable(name, weightMACD)
	}
	cur, prev := hist[n-1].V, hist[n-2].V

	var score float64
	var commentary string
	switch {
	case prev <= 0 && cur > 0:
		score, commentary = 2.0, "bullish cross"
	case prev >= 0 && cur < 0:
		score, commentary = -2.0, "bearish cross"
	case cur > 0 && cur >= prev:
		score, commentary = 1.0, "positive, rising"
	case cur > 0:
		score, commentary = 0.5, "positive, fading"
	case cur < 0 && cur <= prev:
		score, commentary = -1.0, "negative, falling"
	case cur < 0:
		score, commentary = -0.5, "negative, recovering"
	default:
		commentary = "flat"
	}
	return factor(name, score, weightMACD, fmt.Sprintf("hist=%.2f %s", cur, commentary))
}

// scoreBollinger scores where the last close sits relative to the bands.
// Weight: 0.20
func scoreBollinger(price float64, set model.IndicatorSet) model.FactorScore {
	const name = "Bollinger Position"
	upper, okU := latest(set, model.IndicatorBBUpper)
	lower, okL := latest(set, model.IndicatorBBLower)
	if !okU || !okL || price <= 0 {
		return unavailable(name, weightBollinger)
	}
	if price < lower {
		return factor(name, 2.0, weightBollinger, "below lower band")
	}
	if price > upper {
		return factor(name, -2.0, weightBollinger, "above upper band")
	}

	pctB, _ := calculator.CalculatePosition(price, upper, lower)
	var score float64
	switch {
	case pctB <= 0.2:
		score = 1.0
	case pctB >= 0.8:
		score = -1.0
	}
	return factor(name, score, weightBollinger, fmt.Sprintf("%%B=%.2f", pctB))
}

// scoreTrend scores MA alignment and proximity to the 30-day extremes.
// Weight: 0.20
// Bull alignment: price > fast MA > slow MA
// Bear alignment: price < fast MA < slow MA
func (e *Engine) scoreTrend(series model.PriceSeries, price float64, set model.IndicatorSet) model.FactorScore {
	const name = "Trend Alignment"
	fast, okF := latest(set, e.fastMAName)
	slow, okS := latest(set, e.slowMAName)
	if !okF || !okS || price <= 0 {
		return unavailable(name, weightTrend)
	}

	bullish := price > fast && fast > slow
	bearish := price < fast && fast < slow

	var near30dHigh, near30dLow bool
	if high, low, err := calculator.CalculateRange(series.Bars, calculator.Lookback30Day); err == nil {
		near30dHigh = math.Abs(price-high)/high < 0.01
		near30dLow = math.Abs(price-low)/low < 0.01
	}

	var score float64
	var commentary string
	switch {
	case bullish && near30dHigh:
		score, commentary = 1.5, "bull alignment at 30-day high"
	case bullish:
		score, commentary = 1.0, "bull alignment"
	case bearish && near30dLow:
		score, commentary = -1.5, "bear alignment at 30-day low"
	case bearish:
		score, commentary = -1.0, "bear alignment"
	default:
		commentary = "range-bound"
	}

	if high, low, err := calculator.CalculateRange(series.Bars, calculator.Lookback52Week); err == nil {
		if pos, err := calculator.CalculatePosition(price, high, low); err == nil {
			commentary += fmt.Sprintf(", 52w position %.0f%%", pos*100)
		}
	}
	return factor(name, score, weightTrend, commentary)
}
