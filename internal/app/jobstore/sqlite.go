package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

const createJobsTableSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	state      TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStore is the durable Store. Jobs survive process restarts so a caller
// can keep polling after a redeploy. Optimistic state checks on update give
// compare-and-set semantics on top of SQLite's single-writer model.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the job database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open job database: %w", err)
	}
	if _, err := db.Exec(createJobsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Put stores a job, overwriting any previous record with the same id.
func (s *SQLiteStore) Put(ctx context.Context, job model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, kind, state, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			state = excluded.state,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		job.ID, string(job.Kind), string(job.State), string(data))
	if err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns the job or ErrJobNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Job, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM jobs WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return model.Job{}, ErrJobNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return decodeJob(id, data)
}

// Update applies fn inside a transaction. The UPDATE carries the previous
// state in its WHERE clause, so a concurrent transition makes the write a
// no-op and the caller re-reads the winner's value.
func (s *SQLiteStore) Update(ctx context.Context, id string, fn Mutator) (model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to begin job update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM jobs WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return model.Job{}, ErrJobNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	job, err := decodeJob(id, data)
	if err != nil {
		return model.Job{}, err
	}

	next, changed, err := guardTerminal(job, fn)
	if err != nil {
		return model.Job{}, err
	}
	if !changed {
		return job, nil
	}

	next.ID = job.ID
	encoded, err := json.Marshal(next)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to encode job %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE jobs SET state = ?, data = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND state = ?`,
		string(next.State), string(encoded), id, string(job.State))
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to update job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Lost the race: another poller already transitioned this job.
		return s.Get(ctx, id)
	}
	if err := tx.Commit(); err != nil {
		return model.Job{}, fmt.Errorf("failed to commit job update %s: %w", id, err)
	}
	return next, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeJob(id, data string) (model.Job, error) {
	var job model.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return model.Job{}, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return job, nil
}
