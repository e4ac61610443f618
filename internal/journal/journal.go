// Package journal records script runs in a SQLite database so they can be
// listed and inspected after the fact.
package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cellref/internal/script"
)

//go:embed schema.sql
var schemaSQL string

// FileName is the database file created inside the data directory.
const FileName = "journal.db"

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Journal errors.
var (
	ErrClosed      = errors.New("journal is closed")
	ErrRunNotFound = errors.New("run not found")
)

// Run is a recorded script run.
type Run struct {
	RunID      string    `json:"run_id"`
	Script     string    `json:"script"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Steps      int       `json:"steps"`
	Failures   int       `json:"failures"`
}

// Step is a recorded step of a run.
type Step struct {
	RunID  string `json:"run_id"`
	Seq    int    `json:"seq"`
	Cell   string `json:"cell"`
	Op     string `json:"op"`
	Result string `json:"result"`
	Expect string `json:"expect,omitempty"`
	OK     bool   `json:"ok"`
}

// Journal is an open run journal.
type Journal struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
	log  logrus.FieldLogger
}

// Open opens the journal in dataDir, creating the directory, the database
// file and the schema as needed. Existing runs are kept.
func Open(dataDir string, log logrus.FieldLogger) (*Journal, error) {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.WithField("path", path).Debug("opened journal")
	return &Journal{db: db, path: path, log: log}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// Close releases the database. It is idempotent; after Close every other
// method returns ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Record stores a run report and its steps in one transaction and returns
// the new run ID, a UUID v7.
func (j *Journal) Record(r *script.Report) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return "", ErrClosed
	}

	runID := generateUUID()
	tx, err := j.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, script, started_at, finished_at, steps, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, r.Script, formatTime(r.StartedAt), formatTime(r.FinishedAt), len(r.Steps), r.Failures,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO steps (run_id, seq, cell, op, result, expect, ok) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare steps: %w", err)
	}
	defer stmt.Close()

	for _, st := range r.Steps {
		var expect sql.NullString
		if st.Expect != "" {
			expect = sql.NullString{String: st.Expect, Valid: true}
		}
		if _, err := stmt.Exec(runID, st.Seq, st.Cell, string(st.Op), st.Result, expect, st.OK); err != nil {
			return "", fmt.Errorf("insert step %d: %w", st.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	j.log.WithFields(logrus.Fields{"run": runID, "script": r.Script, "steps": len(r.Steps)}).Debug("recorded run")
	return runID, nil
}

// Runs returns recorded runs, most recent first. A limit of zero or less
// returns every run.
func (j *Journal) Runs(limit int) ([]Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, ErrClosed
	}

	query := `SELECT run_id, script, started_at, finished_at, steps, failures FROM runs ORDER BY started_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.RunID, &r.Script, &started, &finished, &r.Steps, &r.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Steps returns the steps of a run in order. Returns ErrRunNotFound if no
// run has the given ID.
func (j *Journal) Steps(runID string) ([]Step, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, ErrClosed
	}

	var exists int
	err := j.db.QueryRow(`SELECT 1 FROM runs WHERE run_id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := j.db.Query(
		`SELECT run_id, seq, cell, op, result, expect, ok FROM steps WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var (
			s      Step
			expect sql.NullString
		)
		if err := rows.Scan(&s.RunID, &s.Seq, &s.Cell, &s.Op, &s.Result, &expect, &s.OK); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		s.Expect = expect.String
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// generateUUID generates a UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
