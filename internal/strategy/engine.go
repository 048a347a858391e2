package strategy

import (
	"fmt"
	"slices"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/model"
)

// mapLabel maps a total score to a SignalLabel.
func mapLabel(totalScore float64) model.SignalLabel {
	switch {
	case totalScore >= 1.0:
		return model.SignalStrongBuy
	case totalScore >= 0.3:
		return model.SignalBuy
	case totalScore > -0.3:
		return model.SignalHold
	case totalScore > -1.0:
		return model.SignalSell
	default:
		return model.SignalStrongSell
	}
}

// Engine scores indicator sets computed with a fixed parameter set.
type Engine struct {
	rsiName    string
	fastMAName string
	slowMAName string
}

// NewEngine resolves which indicator series the factors read.
// Trend alignment uses the two shortest SMA windows.
func NewEngine(params calculator.Params) *Engine {
	e := &Engine{}
	if params.RSIWindow > 0 {
		e.rsiName = calculator.RSIName(params.RSIWindow)
	}
	windows := slices.Clone(params.SMAWindows)
	slices.Sort(windows)
	windows = slices.Compact(windows)
	if len(windows) >= 2 {
		e.fastMAName = calculator.MAName(windows[0])
		e.slowMAName = calculator.MAName(windows[1])
	}
	return e
}

// Evaluate computes the trade signal from the latest values of set.
func (e *Engine) Evaluate(series model.PriceSeries, set model.IndicatorSet) *model.Signal {
	price, _ := series.LastClose()

	rsi, rsiOK := latest(set, e.rsiName)
	factors := []model.FactorScore{
		scoreRSI(rsi, rsiOK),
		scoreMACD(set[model.IndicatorMACDHist]),
		scoreBollinger(price, set),
		e.scoreTrend(series, price, set),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.Signal{
		Symbol:     series.Symbol,
		LastClose:  price,
		Factors:    factors,
		TotalScore: total,
		Label:      mapLabel(total),
	}

	switch {
	case rsiOK && rsi >= 80:
		signal.WarningMsg = fmt.Sprintf("RSI %.0f: extremely overbought, consider taking partial profit", rsi)
	case rsiOK && rsi <= 20:
		signal.WarningMsg = fmt.Sprintf("RSI %.0f: extremely oversold, watch for capitulation", rsi)
	}
	return signal
}

func latest(set model.IndicatorSet, name string) (float64, bool) {
	if name == "" {
		return 0, false
	}
	s, ok := set[name]
	if !ok || len(s) == 0 || !s[len(s)-1].Valid {
		return 0, false
	}
	return s[len(s)-1].V, true
}
