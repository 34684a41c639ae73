package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/okato-places/pkg/okato"
)

// Run statuses.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

// Run is a row of the okato_import_runs journal.
type Run struct {
	ID          string      `json:"id"`
	Input       string      `json:"input"`
	InputDigest string      `json:"input_digest"`
	StartedAt   int64       `json:"started_at"`
	FinishedAt  *int64      `json:"finished_at,omitempty"`
	Status      string      `json:"status"`
	Stats       okato.Stats `json:"stats"`
	LastError   *string     `json:"last_error,omitempty"`
}

var runsDDL = []string{`CREATE TABLE IF NOT EXISTS okato_import_runs (
		id           VARCHAR(36) PRIMARY KEY,
		input        TEXT NOT NULL,
		input_digest VARCHAR(64) NOT NULL DEFAULT '',
		started_at   BIGINT NOT NULL,
		finished_at  BIGINT,
		status       VARCHAR(16) NOT NULL,
		processed    BIGINT NOT NULL DEFAULT 0,
		skipped      BIGINT NOT NULL DEFAULT 0,
		inserted     BIGINT NOT NULL DEFAULT 0,
		roots        BIGINT NOT NULL DEFAULT 0,
		last_error   TEXT
	)`}

// BeginRun records the start of an import of input.
func (s *Store) BeginRun(ctx context.Context, input, digest string) (*Run, error) {
	r := &Run{
		ID:          uuid.NewString(),
		Input:       input,
		InputDigest: digest,
		StartedAt:   time.Now().Unix(),
		Status:      RunRunning,
	}
	q := fmt.Sprintf(`INSERT INTO okato_import_runs (id, input, input_digest, started_at, status)
		VALUES (%s)`, s.dialect.Placeholders(1, 5))
	if _, err := s.db.ExecContext(ctx, q, r.ID, r.Input, r.InputDigest, r.StartedAt, r.Status); err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return r, nil
}

// FinishRun stores the final counters of r. A non-nil runErr marks the run
// failed.
func (s *Store) FinishRun(ctx context.Context, r *Run, st okato.Stats, runErr error) error {
	now := time.Now().Unix()
	r.FinishedAt = &now
	r.Stats = st
	r.Status = RunOK
	r.LastError = nil
	if runErr != nil {
		msg := runErr.Error()
		r.Status = RunFailed
		r.LastError = &msg
	}

	d := s.dialect
	q := fmt.Sprintf(`UPDATE okato_import_runs
		SET finished_at = %s, status = %s, processed = %s, skipped = %s, inserted = %s, roots = %s, last_error = %s
		WHERE id = %s`,
		d.Param(1), d.Param(2), d.Param(3), d.Param(4), d.Param(5), d.Param(6), d.Param(7), d.Param(8))
	res, err := s.db.ExecContext(ctx, q,
		now, r.Status, st.Processed, st.Skipped, st.Inserted, st.Roots, nullString(r.LastError), r.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s not found in okato_import_runs", r.ID)
	}
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, input, input_digest, started_at, finished_at, status,
		processed, skipped, inserted, roots, last_error
		FROM okato_import_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += " LIMIT " + s.dialect.Param(1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r        Run
			finished sql.NullInt64
			lastErr  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Input, &r.InputDigest, &r.StartedAt, &finished, &r.Status,
			&r.Stats.Processed, &r.Stats.Skipped, &r.Stats.Inserted, &r.Stats.Roots, &lastErr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = &finished.Int64
		}
		if lastErr.Valid {
			r.LastError = &lastErr.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
