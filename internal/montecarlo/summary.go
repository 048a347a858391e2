package montecarlo

import (
	"math"
	"sort"

	"TSNiSAM/internal/model"
)

// Summarize computes per-step P5/P50/P95 bands and mean, plus terminal statistics.
func Summarize(set model.SimulatedPathSet) model.PathSummary {
	n := len(set.Paths)
	if n == 0 {
		return model.PathSummary{}
	}
	steps := len(set.Paths[0])
	sum := model.PathSummary{
		P5:   make([]float64, steps),
		P50:  make([]float64, steps),
		P95:  make([]float64, steps),
		Mean: make([]float64, steps),
	}

	column := make([]float64, n)
	for t := 0; t < steps; t++ {
		total := 0.0
		for i, path := range set.Paths {
			column[i] = path[t]
			total += path[t]
		}
		sort.Float64s(column)
		sum.P5[t] = percentile(column, 0.05)
		sum.P50[t] = percentile(column, 0.50)
		sum.P95[t] = percentile(column, 0.95)
		sum.Mean[t] = total / float64(n)
	}

	sum.TerminalMin = math.Inf(1)
	sum.TerminalMax = math.Inf(-1)
	above := 0
	for _, path := range set.Paths {
		last := path[steps-1]
		sum.TerminalMin = math.Min(sum.TerminalMin, last)
		sum.TerminalMax = math.Max(sum.TerminalMax, last)
		if last > set.StartPrice {
			above++
		}
	}
	sum.TerminalMean = sum.Mean[steps-1]
	sum.ProbAboveStart = float64(above) / float64(n)
	return sum
}

// percentile interpolates linearly between closest ranks of sorted data.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
