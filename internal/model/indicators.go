package model

import (
	"encoding/json"
	"sort"
)

// Indicator names used as IndicatorSet keys.
const (
	IndicatorMACD       = "MACD"
	IndicatorMACDSignal = "MACD_SIGNAL"
	IndicatorMACDHist   = "MACD_HIST"
	IndicatorBBUpper    = "BB_UPPER"
	IndicatorBBMiddle   = "BB_MIDDLE"
	IndicatorBBLower    = "BB_LOWER"
)

// Value is one point of a derived series. Points inside an indicator's
// warm-up window, or where the formula is undefined, have Valid=false.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON decodes null as an undefined value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Series is a derived sequence aligned index-for-index with a PriceSeries.
type Series []Value

// NewSeries returns a series of n undefined values.
func NewSeries(n int) Series { return make(Series, n) }

// Latest returns the last defined value.
func (s Series) Latest() (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return s[i].V, true
		}
	}
	return 0, false
}

// FirstValid returns the index of the first defined value, or -1.
func (s Series) FirstValid() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return -1
}

// IndicatorSet maps indicator names (MA20, RSI14, MACD, ...) to derived series.
type IndicatorSet map[string]Series

// Names returns the indicator names in sorted order.
func (s IndicatorSet) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
