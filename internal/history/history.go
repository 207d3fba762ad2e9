// Package history persists evaluation runs to a local SQLite database so
// successive model versions can be compared without re-reading artifact
// directories.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sireval/internal/evalmerge"
	"sireval/internal/metrics"
	"sireval/internal/resist"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at      TEXT NOT NULL,
	predictions_src TEXT NOT NULL,
	reference_src   TEXT NOT NULL,
	mapping_policy  TEXT NOT NULL,
	n_predictions   INTEGER NOT NULL,
	n_reference     INTEGER NOT NULL,
	n_matched       INTEGER NOT NULL,
	accuracy        REAL NOT NULL,
	macro_f1        REAL NOT NULL,
	micro_f1        REAL NOT NULL,
	weighted_f1     REAL NOT NULL,
	cohen_kappa     REAL NOT NULL,
	top_2_accuracy  REAL
);`

// Run is one persisted evaluation run.
type Run struct {
	ID             int64
	CreatedAt      time.Time
	PredictionsSrc string
	ReferenceSrc   string
	Policy         resist.Policy
	Counts         evalmerge.Counts
	Accuracy       float64
	MacroF1        float64
	MicroF1        float64
	WeightedF1     float64
	CohenKappa     float64
	Top2Accuracy   *float64
}

// Store is the SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun appends one evaluation run and returns its assigned ID.
func (s *Store) SaveRun(predictionsSrc, referenceSrc string, policy resist.Policy, counts evalmerge.Counts, rep *metrics.Report) (int64, error) {
	var top2 sql.NullFloat64
	if rep.Top2Accuracy != nil {
		top2 = sql.NullFloat64{Float64: *rep.Top2Accuracy, Valid: true}
	}

	res, err := s.db.Exec(`
		INSERT INTO runs (
			created_at, predictions_src, reference_src, mapping_policy,
			n_predictions, n_reference, n_matched,
			accuracy, macro_f1, micro_f1, weighted_f1, cohen_kappa, top_2_accuracy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		predictionsSrc, referenceSrc, string(policy),
		counts.Predictions, counts.Reference, counts.Matched,
		rep.Accuracy, rep.MacroF1, rep.MicroF1, rep.WeightedF1, rep.CohenKappa, top2,
	)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(selectColumns + " FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads one run by ID.
func (s *Store) GetRun(id int64) (Run, error) {
	row := s.db.QueryRow(selectColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return run, err
}

const selectColumns = `SELECT id, created_at, predictions_src, reference_src, mapping_policy,
	n_predictions, n_reference, n_matched,
	accuracy, macro_f1, micro_f1, weighted_f1, cohen_kappa, top_2_accuracy`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run     Run
		created string
		policy  string
		top2    sql.NullFloat64
	)
	err := s.Scan(
		&run.ID, &created, &run.PredictionsSrc, &run.ReferenceSrc, &policy,
		&run.Counts.Predictions, &run.Counts.Reference, &run.Counts.Matched,
		&run.Accuracy, &run.MacroF1, &run.MicroF1, &run.WeightedF1, &run.CohenKappa, &top2,
	)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, created)
	run.Policy = resist.Policy(policy)
	if top2.Valid {
		v := top2.Float64
		run.Top2Accuracy = &v
	}
	return run, nil
}
