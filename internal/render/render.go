package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"TSNiSAM/internal/customerrors"
	"TSNiSAM/internal/model"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Width  = 1024
	Height = 480

	// MaxDrawnPaths caps how many simulated paths are drawn.
	MaxDrawnPaths = 50
)

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

var (
	colorClose = drawing.ColorFromHex("333333")
	colorGuide = drawing.ColorFromHex("999999")
)

// yRange tracks the drawn value extent so flat series still get a valid axis.
type yRange struct {
	min, max float64
}

func newYRange() *yRange { return &yRange{min: math.Inf(1), max: math.Inf(-1)} }

func (r *yRange) add(v float64) {
	r.min = math.Min(r.min, v)
	r.max = math.Max(r.max, v)
}

func (r *yRange) empty() bool { return r.min > r.max }

func (r *yRange) axis() *chart.ContinuousRange {
	pad := (r.max - r.min) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(r.max)*0.01, 1)
	}
	return &chart.ContinuousRange{Min: r.min - pad, Max: r.max + pad}
}

func dateFormatter(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return time.Unix(0, int64(t)).UTC().Format("2006-01-02")
	case time.Time:
		return t.Format("2006-01-02")
	}
	return ""
}

func valueFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

// definedSeries keeps only the defined points of s, aligned with dates.
func definedSeries(name string, dates []time.Time, s model.Series, style chart.Style, yr *yRange) (chart.TimeSeries, bool) {
	ts := chart.TimeSeries{Name: name, Style: style}
	for i, v := range s {
		if i >= len(dates) || !v.Valid {
			continue
		}
		ts.XValues = append(ts.XValues, dates[i])
		ts.YValues = append(ts.YValues, v.V)
		yr.add(v.V)
	}
	return ts, len(ts.XValues) >= 2
}

func closeSeries(dates []time.Time, closes []float64, yr *yRange) chart.TimeSeries {
	s := make(model.Series, len(closes))
	for i, c := range closes {
		s[i] = model.Some(c)
	}
	ts, _ := definedSeries("Close", dates, s, chart.Style{StrokeColor: colorClose, StrokeWidth: 1.5}, yr)
	return ts
}

func line(i int) chart.Style {
	return chart.Style{StrokeColor: palette[i%len(palette)], StrokeWidth: 1.2}
}

func dashed(c drawing.Color) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: 1, StrokeDashArray: []float64{5.0, 5.0}}
}

func guide(name string, dates []time.Time, y float64) chart.TimeSeries {
	return chart.TimeSeries{
		Name:    name,
		XValues: []time.Time{dates[0], dates[len(dates)-1]},
		YValues: []float64{y, y},
		Style:   dashed(colorGuide),
	}
}

func timeChart(title, yName string, series []chart.Series, yr *yRange) chart.Chart {
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: dateFormatter,
		},
		YAxis: chart.YAxis{
			Name:           yName,
			ValueFormatter: valueFormatter,
			Range:          yr.axis(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func noData(what, symbol string) error {
	return fmt.Errorf("%w: nothing to draw for %s %s", customerrors.ErrInsufficientData, symbol, what)
}

func checkAligned(dates []time.Time, closes []float64) error {
	if len(dates) < 2 || len(dates) != len(closes) {
		return fmt.Errorf("%w: need at least 2 aligned points, have %d dates and %d closes",
			customerrors.ErrInsufficientData, len(dates), len(closes))
	}
	return nil
}

// Price draws the close with every moving average in set.
func Price(w io.Writer, symbol string, dates []time.Time, closes []float64, set model.IndicatorSet) error {
	if err := checkAligned(dates, closes); err != nil {
		return err
	}
	yr := newYRange()
	series := []chart.Series{closeSeries(dates, closes, yr)}
	i := 0
	for _, name := range set.Names() {
		if !strings.HasPrefix(name, "MA") && !strings.HasPrefix(name, "EMA") {
			continue
		}
		if ts, ok := definedSeries(name, dates, set[name], line(i), yr); ok {
			series = append(series, ts)
			i++
		}
	}
	graph := timeChart(symbol+" Price", "Price", series, yr)
	return graph.Render(chart.PNG, w)
}

// RSI draws the RSI with dashed 30/70 guides.
func RSI(w io.Writer, symbol string, dates []time.Time, set model.IndicatorSet) error {
	var name string
	for _, n := range set.Names() {
		if strings.HasPrefix(n, "RSI") {
			name = n
			break
		}
	}
	if name == "" || len(dates) < 2 {
		return noData("RSI", symbol)
	}
	yr := &yRange{min: 0, max: 100}
	ts, ok := definedSeries(name, dates, set[name], line(4), yr)
	if !ok {
		return noData("RSI", symbol)
	}
	series := []chart.Series{ts, guide("Overbought (70)", dates, 70), guide("Oversold (30)", dates, 30)}
	graph := timeChart(symbol+" "+name, "RSI", series, yr)
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 100}
	return graph.Render(chart.PNG, w)
}

// MACD draws the MACD line, its signal line and the histogram.
func MACD(w io.Writer, symbol string, dates []time.Time, set model.IndicatorSet) error {
	yr := newYRange()
	var series []chart.Series
	for i, name := range []string{model.IndicatorMACD, model.IndicatorMACDSignal} {
		if ts, ok := definedSeries(name, dates, set[name], line(i), yr); ok {
			series = append(series, ts)
		}
	}
	if len(series) == 0 {
		return noData("MACD", symbol)
	}
	if ts, ok := definedSeries(model.IndicatorMACDHist, dates, set[model.IndicatorMACDHist], dashed(palette[2]), yr); ok {
		series = append(series, ts)
	}
	graph := timeChart(symbol+" MACD", "MACD", series, yr)
	return graph.Render(chart.PNG, w)
}

// Bollinger draws the bands over the close.
func Bollinger(w io.Writer, symbol string, dates []time.Time, closes []float64, set model.IndicatorSet) error {
	if err := checkAligned(dates, closes); err != nil {
		return err
	}
	yr := newYRange()
	series := []chart.Series{closeSeries(dates, closes, yr)}
	bands := []struct {
		name  string
		style chart.Style
	}{
		{model.IndicatorBBUpper, line(3)},
		{model.IndicatorBBMiddle, dashed(palette[0])},
		{model.IndicatorBBLower, line(2)},
	}
	drawn := 0
	for _, b := range bands {
		if ts, ok := definedSeries(b.name, dates, set[b.name], b.style, yr); ok {
			series = append(series, ts)
			drawn++
		}
	}
	if drawn == 0 {
		return noData("Bollinger bands", symbol)
	}
	graph := timeChart(symbol+" Bollinger Bands", "Price", series, yr)
	return graph.Render(chart.PNG, w)
}

// Simulation draws up to MaxDrawnPaths paths with the P5/P50/P95 bands.
func Simulation(w io.Writer, symbol string, set model.SimulatedPathSet, summary model.PathSummary) error {
	if len(set.Paths) == 0 || set.HorizonDays < 2 {
		return noData("simulation", symbol)
	}
	xs := make([]float64, set.HorizonDays)
	for i := range xs {
		xs[i] = float64(i)
	}

	yr := newYRange()
	var series []chart.Series
	faint := chart.Style{StrokeColor: palette[0].WithAlpha(60), StrokeWidth: 0.8}
	for i, p := range set.Paths {
		if i == MaxDrawnPaths {
			break
		}
		for _, v := range p {
			yr.add(v)
		}
		series = append(series, chart.ContinuousSeries{XValues: xs, YValues: p, Style: faint})
	}
	bands := []struct {
		name   string
		values []float64
		style  chart.Style
	}{
		{"P95", summary.P95, chart.Style{StrokeColor: palette[2], StrokeWidth: 2}},
		{"P50", summary.P50, chart.Style{StrokeColor: colorClose, StrokeWidth: 2}},
		{"P5", summary.P5, chart.Style{StrokeColor: palette[3], StrokeWidth: 2}},
	}
	for _, b := range bands {
		if len(b.values) != len(xs) {
			continue
		}
		for _, v := range b.values {
			yr.add(v)
		}
		series = append(series, chart.ContinuousSeries{Name: b.name, XValues: xs, YValues: b.values, Style: b.style})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Monte Carlo (%d paths, %d days)", symbol, len(set.Paths), set.HorizonDays),
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{Name: "Day"},
		YAxis: chart.YAxis{
			Name:           "Price",
			ValueFormatter: valueFormatter,
			Range:          yr.axis(),
		},
		Series: series,
	}
	return graph.Render(chart.PNG, w)
}
