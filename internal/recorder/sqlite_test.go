package recorder

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLiteRecorder_Analysis(t *testing.T) {
	r := openTemp(t)
	run := &AnalysisRun{
		Kind:       "signal",
		Symbol:     "TCS.NS",
		Start:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Bars:       990,
		Label:      "BUY",
		TotalScore: 0.45,
		Duration:   12 * time.Millisecond,
	}
	if err := r.RecordAnalysis(run); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if err := r.RecordAnalysis(&AnalysisRun{Kind: "prices", Symbol: "INFY.NS", Err: "upstream down"}); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if n := count(t, r, "analysis_runs"); n != 2 {
		t.Fatalf("analysis_runs = %d, want 2", n)
	}

	var label, start string
	var ms int64
	err := r.db.QueryRow(`SELECT label, range_start, duration_ms FROM analysis_runs WHERE symbol = ?`, "TCS.NS").
		Scan(&label, &start, &ms)
	if err != nil {
		t.Fatal(err)
	}
	if label != "BUY" || start != "2020-01-01" || ms != 12 {
		t.Errorf("row = %s %s %d", label, start, ms)
	}
}

func TestSQLiteRecorder_SimulationAndDigest(t *testing.T) {
	r := openTemp(t)
	seed := uint64(1) << 63
	if err := r.RecordSimulation(&SimulationRun{
		Symbol: "TCS.NS", StartPrice: 3500, HorizonDays: 100, NumPaths: 500,
		Drift: 0.0005, Volatility: 0.015, Seed: &seed, P5: 3000, P50: 3600, P95: 4200,
	}); err != nil {
		t.Fatalf("RecordSimulation: %v", err)
	}
	if err := r.RecordSimulation(&SimulationRun{Symbol: "INFY.NS", Err: "invalid parameter"}); err != nil {
		t.Fatalf("RecordSimulation without seed: %v", err)
	}
	if err := r.RecordDigest(&DigestRun{Trigger: "cron", Tickers: 5, Sent: true}); err != nil {
		t.Fatalf("RecordDigest: %v", err)
	}

	var stored string
	if err := r.db.QueryRow(`SELECT seed FROM simulation_runs WHERE symbol = 'TCS.NS'`).Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored != "9223372036854775808" {
		t.Errorf("seed = %s", stored)
	}
	if n := count(t, r, "digest_runs"); n != 1 {
		t.Errorf("digest_runs = %d, want 1", n)
	}
}

func TestSQLiteRecorder_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RecordDigest(&DigestRun{Trigger: "manual"}); err != nil {
		t.Fatal(err)
	}
	r.Close()

	r2, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	if n := count(t, r2, "digest_runs"); n != 1 {
		t.Errorf("digest_runs after reopen = %d, want 1", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordAnalysis(&AnalysisRun{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordSimulation(&SimulationRun{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordDigest(&DigestRun{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
