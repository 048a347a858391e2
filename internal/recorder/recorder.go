package recorder

import "time"

// AnalysisRun journals one price, indicator or signal request.
type AnalysisRun struct {
	Kind       string // "prices", "indicators" or "signal"
	Symbol     string
	Start      time.Time
	End        time.Time
	Bars       int
	Label      string // signal label, empty for other kinds
	TotalScore float64
	Duration   time.Duration
	Err        string
}

// SimulationRun journals one Monte Carlo request.
type SimulationRun struct {
	Symbol      string
	StartPrice  float64
	HorizonDays int
	NumPaths    int
	Drift       float64
	Volatility  float64
	Seed        *uint64
	P5          float64
	P50         float64
	P95         float64
	Duration    time.Duration
	Err         string
}

// DigestRun journals one digest delivery.
type DigestRun struct {
	Trigger string // "cron", "manual" or "telegram"
	Tickers int
	Sent    bool
	Err     string
}

// Recorder journals completed runs. Nothing is ever read back by the application.
type Recorder interface {
	RecordAnalysis(run *AnalysisRun) error
	RecordSimulation(run *SimulationRun) error
	RecordDigest(run *DigestRun) error
	Close() error
}
