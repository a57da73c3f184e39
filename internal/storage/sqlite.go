// Package storage provides SQLite-based persistence for harness runs and
// their bit dumps. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/twinworld/internal/harness"
)

// DefaultPath is where runs are stored unless --db says otherwise.
const DefaultPath = "~/.twinworld/runs.db"

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is the summary of one headless harness run.
type Run struct {
	ID              string
	Scenario        string
	Variant         string
	LeftSchedule    string
	RightSchedule   string
	Policy          string // attraction policy
	ClearPolicy     string
	Frames          int
	BitWidth        int
	FinalDiffY      float64
	MaxDiffY        float64
	FirstDivergence int // -1 when no dump was taken or every bucket matched
	CreatedAt       time.Time
}

// Diverged reports whether the run's dump had a mismatching bucket.
func (r Run) Diverged() bool { return r.FirstDivergence >= 0 }

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			variant TEXT NOT NULL,
			left_schedule TEXT NOT NULL,
			right_schedule TEXT NOT NULL,
			policy TEXT NOT NULL,
			clear_policy TEXT NOT NULL,
			frames INTEGER NOT NULL,
			bit_width INTEGER NOT NULL,
			final_diff_y REAL NOT NULL DEFAULT 0,
			max_diff_y REAL NOT NULL DEFAULT 0,
			first_divergence INTEGER NOT NULL DEFAULT -1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);

		CREATE TABLE IF NOT EXISTS dump_rows (
			run_id TEXT NOT NULL REFERENCES runs(id),
			bucket INTEGER NOT NULL,
			left_bits INTEGER NOT NULL,
			right_bits INTEGER NOT NULL,
			PRIMARY KEY (run_id, bucket)
		);

		CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(id),
			frame INTEGER NOT NULL,
			diff_x REAL NOT NULL,
			diff_y REAL NOT NULL,
			car_diff REAL NOT NULL,
			PRIMARY KEY (run_id, frame)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run and, when dump is non-nil, its bucket rows.
// A run without an ID gets a fresh UUID. Returns the run ID.
func (s *Store) SaveRun(run Run, dump *harness.Dump) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if dump != nil {
		run.FirstDivergence = dump.FirstDivergence
		run.BitWidth = dump.BitWidth
	} else {
		run.FirstDivergence = -1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs
		 (id, scenario, variant, left_schedule, right_schedule, policy, clear_policy,
		  frames, bit_width, final_diff_y, max_diff_y, first_divergence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Scenario,
		run.Variant,
		run.LeftSchedule,
		run.RightSchedule,
		run.Policy,
		run.ClearPolicy,
		run.Frames,
		run.BitWidth,
		run.FinalDiffY,
		run.MaxDiffY,
		run.FirstDivergence,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	if dump != nil {
		stmt, err := tx.Prepare(
			"INSERT INTO dump_rows (run_id, bucket, left_bits, right_bits) VALUES (?, ?, ?, ?)",
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot prepare dump insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range dump.Rows {
			if _, err := stmt.Exec(run.ID, r.Index, r.Left, r.Right); err != nil {
				return "", fmt.Errorf("storage: cannot save dump row %d: %w", r.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, scenario, variant, left_schedule, right_schedule, policy, clear_policy,
	frames, bit_width, final_diff_y, max_diff_y, first_divergence, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var createdAt any
	err := sc.Scan(
		&r.ID,
		&r.Scenario,
		&r.Variant,
		&r.LeftSchedule,
		&r.RightSchedule,
		&r.Policy,
		&r.ClearPolicy,
		&r.Frames,
		&r.BitWidth,
		&r.FinalDiffY,
		&r.MaxDiffY,
		&r.FirstDivergence,
		&createdAt,
	)
	if err != nil {
		return r, err
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			r.CreatedAt = parsed
		}
	}
	return r, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves a run. Returns nil, nil if it does not exist.
func (s *Store) RunByID(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// ErrAmbiguousID is returned by FindRun when a prefix matches several runs.
var ErrAmbiguousID = errors.New("storage: ambiguous run id prefix")

// FindRun resolves a full run ID or a unique prefix of one, as shown by the
// runs table. Returns nil, nil if nothing matches.
func (s *Store) FindRun(prefix string) (*Run, error) {
	if run, err := s.RunByID(prefix); err != nil || run != nil {
		return run, err
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, prefix)
}

// DumpRows retrieves the stored bucket rows of a run in bucket order.
func (s *Store) DumpRows(runID string) ([]harness.DumpRow, error) {
	rows, err := s.db.Query(
		`SELECT bucket, left_bits, right_bits
		 FROM dump_rows
		 WHERE run_id = ?
		 ORDER BY bucket`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query dump rows: %w", err)
	}
	defer rows.Close()

	var out []harness.DumpRow
	for rows.Next() {
		var r harness.DumpRow
		if err := rows.Scan(&r.Index, &r.Left, &r.Right); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// Sample is one frame's divergence between the compared sides.
type Sample struct {
	Frame   int
	DiffX   float64
	DiffY   float64
	CarDiff float64
}

// SaveSamples records per-frame divergence samples of a stored run.
func (s *Store) SaveSamples(runID string, samples []Sample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO samples (run_id, frame, diff_x, diff_y, car_diff) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		if _, err := stmt.Exec(runID, smp.Frame, smp.DiffX, smp.DiffY, smp.CarDiff); err != nil {
			return fmt.Errorf("storage: cannot save sample %d: %w", smp.Frame, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit samples: %w", err)
	}
	return nil
}

// Samples retrieves a run's divergence samples in frame order.
func (s *Store) Samples(runID string) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT frame, diff_x, diff_y, car_diff FROM samples WHERE run_id = ? ORDER BY frame`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(&smp.Frame, &smp.DiffX, &smp.DiffY, &smp.CarDiff); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

// ErrRunNotFound is returned by DeleteRun for an unknown run ID.
var ErrRunNotFound = errors.New("storage: run not found")

// DeleteRun removes a run with its dump rows and samples in one transaction.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM dump_rows WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete dump rows: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM samples WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete samples: %w", err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("storage: cannot count deleted runs: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// ScenarioStats contains aggregated statistics for one scenario.
type ScenarioStats struct {
	Scenario  string
	Runs      int
	Diverged  int
	MaxDiffY  float64
	LastRunAt time.Time
}

// AllScenarioStats retrieves statistics for every scenario that has runs.
func (s *Store) AllScenarioStats() (map[string]*ScenarioStats, error) {
	rows, err := s.db.Query(
		`SELECT scenario, COUNT(*), SUM(CASE WHEN first_divergence >= 0 THEN 1 ELSE 0 END),
		        MAX(max_diff_y), MAX(created_at)
		 FROM runs
		 GROUP BY scenario`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scenario stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScenarioStats)
	for rows.Next() {
		var st ScenarioStats
		var lastRun any
		if err := rows.Scan(&st.Scenario, &st.Runs, &st.Diverged, &st.MaxDiffY, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}

		switch v := lastRun.(type) {
		case time.Time:
			st.LastRunAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				st.LastRunAt = parsed
			}
		}

		stats[st.Scenario] = &st
	}

	return stats, rows.Err()
}
