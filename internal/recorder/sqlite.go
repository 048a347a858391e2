package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read the journal while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("component", "recorder").Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			symbol      TEXT NOT NULL,
			range_start TEXT,
			range_end   TEXT,
			bars        INTEGER,
			label       TEXT,
			total_score REAL,
			duration_ms INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol ON analysis_runs(symbol)`,

		`CREATE TABLE IF NOT EXISTS simulation_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			start_price  REAL,
			horizon_days INTEGER,
			num_paths    INTEGER,
			drift        REAL,
			volatility   REAL,
			seed         TEXT,
			p5           REAL,
			p50          REAL,
			p95          REAL,
			duration_ms  INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulation_ts ON simulation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS digest_runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			tickers   INTEGER,
			sent      INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_digest_ts ON digest_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func dateOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateOnly)
}

func (r *SQLiteRecorder) RecordAnalysis(run *AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(timestamp, kind, symbol, range_start, range_end, bars, label, total_score, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Kind, run.Symbol, dateOrNil(run.Start), dateOrNil(run.End),
		run.Bars, run.Label, run.TotalScore, run.Duration.Milliseconds(), run.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordSimulation(run *SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// uint64 seeds overflow INTEGER, so they are stored as text
	var seed any
	if run.Seed != nil {
		seed = fmt.Sprintf("%d", *run.Seed)
	}
	_, err := r.db.Exec(`INSERT INTO simulation_runs
		(timestamp, symbol, start_price, horizon_days, num_paths, drift, volatility, seed,
		 p5, p50, p95, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Symbol, run.StartPrice, run.HorizonDays, run.NumPaths,
		run.Drift, run.Volatility, seed, run.P5, run.P50, run.P95,
		run.Duration.Milliseconds(), run.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordDigest(run *DigestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO digest_runs (timestamp, source, tickers, sent, error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), run.Trigger, run.Tickers, run.Sent, run.Err,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Str("component", "recorder").Msg("closing sqlite recorder")
	return r.db.Close()
}
