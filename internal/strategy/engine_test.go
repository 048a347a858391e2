package strategy

import (
	"math"
	"strings"
	"testing"
	"time"

	"TSNiSAM/internal/calculator"
	"TSNiSAM/internal/model"
)

func flatSeries(price, high, low float64) model.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 30)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: price, High: high, Low: low, Close: price}
	}
	return model.PriceSeries{Symbol: "TEST.NS", Bars: bars}
}

func last(vals ...float64) model.Series {
	s := model.Series{{}}
	for _, v := range vals {
		s = append(s, model.Some(v))
	}
	return s
}

func TestEvaluate_Oversold(t *testing.T) {
	set := model.IndicatorSet{
		"RSI14":                   last(18),
		model.IndicatorMACDHist:   last(-0.5, 0.2),
		model.IndicatorBBUpper:    last(110),
		model.IndicatorBBLower:    last(95),
		calculator.MAName(20):     last(95),
		calculator.MAName(50):     last(100),
		model.IndicatorBBMiddle:   last(102),
		model.IndicatorMACD:       last(-1),
		model.IndicatorMACDSignal: last(-1.2),
	}
	sig := NewEngine(calculator.DefaultParams()).Evaluate(flatSeries(90, 100, 89), set)

	if len(sig.Factors) != 4 {
		t.Fatalf("expected 4 factors, got %d", len(sig.Factors))
	}
	// 0.35*2 + 0.25*2 + 0.20*2 + 0.20*(-1)
	if math.Abs(sig.TotalScore-1.4) > 1e-9 {
		t.Errorf("TotalScore = %.4f, want 1.4", sig.TotalScore)
	}
	if sig.Label != model.SignalStrongBuy {
		t.Errorf("Label = %s, want STRONG_BUY", sig.Label)
	}
	if !strings.Contains(sig.WarningMsg, "oversold") {
		t.Errorf("WarningMsg = %q", sig.WarningMsg)
	}
	if sig.Symbol != "TEST.NS" || sig.LastClose != 90 {
		t.Errorf("symbol/close = %s/%v", sig.Symbol, sig.LastClose)
	}
}

func TestEvaluate_Overbought(t *testing.T) {
	set := model.IndicatorSet{
		"RSI14":                 last(85),
		model.IndicatorMACDHist: last(0.3, -0.1),
		model.IndicatorBBUpper:  last(115),
		model.IndicatorBBLower:  last(100),
		calculator.MAName(20):   last(110),
		calculator.MAName(50):   last(100),
	}
	sig := NewEngine(calculator.DefaultParams()).Evaluate(flatSeries(120, 121, 100), set)

	// 0.35*(-2) + 0.25*(-2) + 0.20*(-2) + 0.20*1.5
	if math.Abs(sig.TotalScore-(-1.3)) > 1e-9 {
		t.Errorf("TotalScore = %.4f, want -1.3", sig.TotalScore)
	}
	if sig.Label != model.SignalStrongSell {
		t.Errorf("Label = %s, want STRONG_SELL", sig.Label)
	}
	if !strings.Contains(sig.WarningMsg, "overbought") {
		t.Errorf("WarningMsg = %q", sig.WarningMsg)
	}
}

func TestEvaluate_UndefinedInputsScoreZero(t *testing.T) {
	set := model.IndicatorSet{
		"RSI14":                 {{}, {}},
		model.IndicatorMACDHist: {{}, model.Some(1)},
	}
	sig := NewEngine(calculator.DefaultParams()).Evaluate(flatSeries(100, 101, 99), set)
	if sig.TotalScore != 0 || sig.Label != model.SignalHold {
		t.Errorf("got %.2f %s, want 0 HOLD", sig.TotalScore, sig.Label)
	}
	for _, f := range sig.Factors {
		if f.Commentary != "n/a" {
			t.Errorf("%s commentary = %q, want n/a", f.Name, f.Commentary)
		}
	}
	if sig.WarningMsg != "" {
		t.Errorf("unexpected warning: %s", sig.WarningMsg)
	}
}

func TestEvaluate_FromComputedIndicators(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/6) + 0.1*float64(i)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := model.PriceSeries{Symbol: "TCS.NS"}
	for i, c := range closes {
		series.Bars = append(series.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), High: c + 1, Low: c - 1, Close: c})
	}

	params := calculator.DefaultParams()
	set, err := calculator.ComputeIndicators(series, params)
	if err != nil {
		t.Fatalf("ComputeIndicators: %v", err)
	}
	sig := NewEngine(params).Evaluate(series, set)
	for _, f := range sig.Factors {
		if f.Commentary == "n/a" {
			t.Errorf("factor %s unavailable on a full series", f.Name)
		}
		if math.Abs(f.Weighted-f.RawScore*f.Weight) > 1e-12 {
			t.Errorf("factor %s weighted mismatch", f.Name)
		}
	}
	if sig.Label == "" {
		t.Error("empty label")
	}
}

func TestMapLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  model.SignalLabel
	}{
		{2.0, model.SignalStrongBuy},
		{1.0, model.SignalStrongBuy},
		{0.99, model.SignalBuy},
		{0.3, model.SignalBuy},
		{0.29, model.SignalHold},
		{-0.29, model.SignalHold},
		{-0.3, model.SignalSell},
		{-0.99, model.SignalSell},
		{-1.0, model.SignalStrongSell},
		{-2.0, model.SignalStrongSell},
	}
	for _, tt := range tests {
		if got := mapLabel(tt.score); got != tt.want {
			t.Errorf("mapLabel(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestNewEngine_TrendNeedsTwoWindows(t *testing.T) {
	params := calculator.DefaultParams()
	params.SMAWindows = []int{50}
	set := model.IndicatorSet{calculator.MAName(50): last(100)}
	sig := NewEngine(params).Evaluate(flatSeries(100, 101, 99), set)
	if sig.Factors[3].Commentary != "n/a" {
		t.Errorf("trend commentary = %q, want n/a", sig.Factors[3].Commentary)
	}
}
