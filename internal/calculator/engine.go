package calculator

import (
	"fmt"
	"math"
	"strconv"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"
)

// Params selects the indicators ComputeIndicators produces.
// A zero RSIWindow, MACDSlow or BBWindow disables that indicator.
type Params struct {
	SMAWindows []int   `yaml:"sma_windows" json:"sma_windows"`
	EMAWindows []int   `yaml:"ema_windows" json:"ema_windows"`
	RSIWindow  int     `yaml:"rsi_window" json:"rsi_window"`
	RSIWilder  bool    `yaml:"rsi_wilder" json:"rsi_wilder"`
	MACDFast   int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow   int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal int     `yaml:"macd_signal" json:"macd_signal"`
	BBWindow   int     `yaml:"bb_window" json:"bb_window"`
	BBK        float64 `yaml:"bb_k" json:"bb_k"`
}

// DefaultParams returns MA20/MA50, RSI14, MACD 12/26/9 and Bollinger 20/2.
func DefaultParams() Params {
	return Params{
		SMAWindows: []int{20, 50},
		RSIWindow:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BBWindow:   20,
		BBK:        2,
	}
}

// Validate checks every enabled window and the Bollinger multiplier.
func (p Params) Validate() error {
	for _, w := range p.SMAWindows {
		if err := checkPeriod("SMA", w); err != nil {
			return err
		}
	}
	for _, w := range p.EMAWindows {
		if err := checkPeriod("EMA", w); err != nil {
			return err
		}
	}
	if p.RSIWindow != 0 {
		if err := checkPeriod("RSI", p.RSIWindow); err != nil {
			return err
		}
	}
	if p.MACDSlow != 0 {
		for _, w := range []int{p.MACDFast, p.MACDSlow, p.MACDSignal} {
			if err := checkPeriod("MACD", w); err != nil {
				return err
			}
		}
		if p.MACDFast >= p.MACDSlow {
			return fmt.Errorf("%w: MACD periods %d/%d/%d", customerrors.ErrInvalidParameter,
				p.MACDFast, p.MACDSlow, p.MACDSignal)
		}
	}
	if p.BBWindow != 0 {
		if err := checkPeriod("Bollinger", p.BBWindow); err != nil {
			return err
		}
	}
	if p.BBWindow > 0 && (p.BBK <= 0 || math.IsNaN(p.BBK) || math.IsInf(p.BBK, 0)) {
		return fmt.Errorf("%w: Bollinger k must be positive, got %v", customerrors.ErrInvalidParameter, p.BBK)
	}
	return nil
}

// RequiredLength is the largest minimum series length over the enabled indicators.
func (p Params) RequiredLength() int {
	need := 0
	for _, w := range p.SMAWindows {
		need = max(need, w)
	}
	for _, w := range p.EMAWindows {
		need = max(need, w)
	}
	if p.RSIWindow > 0 {
		need = max(need, p.RSIWindow+1)
	}
	if p.MACDSlow > 0 {
		need = max(need, MACDRequiredLength(p.MACDSlow, p.MACDSignal))
	}
	if p.BBWindow > 0 {
		need = max(need, p.BBWindow)
	}
	return need
}

// MAName returns the IndicatorSet key of the SMA with window w.
func MAName(w int) string { return "MA" + strconv.Itoa(w) }

// EMAName returns the IndicatorSet key of the EMA with window w.
func EMAName(w int) string { return "EMA" + strconv.Itoa(w) }

// RSIName returns the IndicatorSet key of the RSI with window w.
func RSIName(w int) string { return "RSI" + strconv.Itoa(w) }

// ComputeIndicators derives every indicator selected by params from the series closes.
// When the series is shorter than params.RequiredLength it fails with
// ErrInsufficientData and returns no partial set.
func ComputeIndicators(series model.PriceSeries, params Params) (model.IndicatorSet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if need := params.RequiredLength(); series.Len() < need {
		return nil, fmt.Errorf("%w: %s has %d bars, indicators need %d",
			customerrors.ErrInsufficientData, series.Symbol, series.Len(), need)
	}

	closes := series.Closes()
	set := make(model.IndicatorSet)

	for _, w := range params.SMAWindows {
		s, err := CalculateSMA(closes, w)
		if err != nil {
			return nil, err
		}
		set[MAName(w)] = s
	}
	for _, w := range params.EMAWindows {
		s, err := CalculateEMA(closes, w)
		if err != nil {
			return nil, err
		}
		set[EMAName(w)] = s
	}

	if params.RSIWindow > 0 {
		rsi := CalculateRSI
		if params.RSIWilder {
			rsi = CalculateWilderRSI
		}
		s, err := rsi(closes, params.RSIWindow)
		if err != nil {
			return nil, err
		}
		set[RSIName(params.RSIWindow)] = s
	}

	if params.MACDSlow > 0 {
		m, err := CalculateMACD(closes, params.MACDFast, params.MACDSlow, params.MACDSignal)
		if err != nil {
			return nil, err
		}
		set[model.IndicatorMACD] = m.Line
		set[model.IndicatorMACDSignal] = m.Signal
		set[model.IndicatorMACDHist] = m.Histogram
	}

	if params.BBWindow > 0 {
		bb, err := CalculateBollinger(closes, params.BBWindow, params.BBK)
		if err != nil {
			return nil, err
		}
		set[model.IndicatorBBUpper] = bb.Upper
		set[model.IndicatorBBMiddle] = bb.Middle
		set[model.IndicatorBBLower] = bb.Lower
	}

	return set, nil
}
