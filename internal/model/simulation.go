package model

// SimulatedPathSet holds independent simulated price paths sharing one start price.
type SimulatedPathSet struct {
	StartPrice  float64     `json:"start_price"`
	HorizonDays int         `json:"horizon_days"`
	Drift       float64     `json:"drift"`
	Volatility  float64     `json:"volatility"`
	Seed        *uint64     `json:"seed,omitempty"`
	Paths       [][]float64 `json:"paths"`
}

// PathSummary condenses a path set into per-step bands and the terminal distribution.
type PathSummary struct {
	P5             []float64 `json:"p5"`
	P50            []float64 `json:"p50"`
	P95            []float64 `json:"p95"`
	Mean           []float64 `json:"mean"`
	TerminalMin    float64   `json:"terminal_min"`
	TerminalMax    float64   `json:"terminal_max"`
	TerminalMean   float64   `json:"terminal_mean"`
	ProbAboveStart float64   `json:"prob_above_start"`
}
