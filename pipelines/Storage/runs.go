package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord summarizes one completed training run
type RunRecord struct {
	ID                 string    `json:"id"`
	StartedAt          time.Time `json:"started_at"`
	DatasetPath        string    `json:"dataset_path"`
	TrainRows          int       `json:"train_rows"`
	ValidationRows     int       `json:"validation_rows"`
	TestRows           int       `json:"test_rows"`
	CropAccuracy       float64   `json:"crop_accuracy"`
	FertilizerAccuracy float64   `json:"fertilizer_accuracy"`
	ArtifactsDir       string    `json:"artifacts_dir"`
}

// RunHistory keeps an append-only log of training runs in SQLite so
// accuracy drift across retrains stays visible.
type RunHistory struct {
	db *sql.DB
}

// OpenRunHistory opens (creating if necessary) the run history
// database at path.
func OpenRunHistory(path string) (*RunHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure run history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS training_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		dataset_path TEXT NOT NULL,
		train_rows INTEGER NOT NULL,
		validation_rows INTEGER NOT NULL,
		test_rows INTEGER NOT NULL,
		crop_accuracy REAL NOT NULL,
		fertilizer_accuracy REAL NOT NULL,
		artifacts_dir TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create run history schema: %w", err)
	}

	return &RunHistory{db: db}, nil
}

// Record appends one run. An empty ID gets a fresh UUID; the assigned
// ID is returned.
func (h *RunHistory) Record(r RunRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}

	_, err := h.db.Exec(
		`INSERT INTO training_runs
		(id, started_at, dataset_path, train_rows, validation_rows, test_rows, crop_accuracy, fertilizer_accuracy, artifacts_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.DatasetPath,
		r.TrainRows,
		r.ValidationRows,
		r.TestRows,
		r.CropAccuracy,
		r.FertilizerAccuracy,
		r.ArtifactsDir,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record training run: %w", err)
	}
	return r.ID, nil
}

// List returns all recorded runs, newest first
func (h *RunHistory) List() ([]RunRecord, error) {
	rows, err := h.db.Query(
		`SELECT id, started_at, dataset_path, train_rows, validation_rows, test_rows, crop_accuracy, fertilizer_accuracy, artifacts_dir
		FROM training_runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		if err := rows.Scan(
			&r.ID, &startedAt, &r.DatasetPath,
			&r.TrainRows, &r.ValidationRows, &r.TestRows,
			&r.CropAccuracy, &r.FertilizerAccuracy, &r.ArtifactsDir,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp %q: %w", startedAt, err)
		}
		r.StartedAt = t
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training runs: %w", err)
	}
	return records, nil
}

// Close releases the underlying database handle
func (h *RunHistory) Close() error {
	return h.db.Close()
}
