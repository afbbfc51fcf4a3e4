// Package store persists terminal generation outcomes to SQLite for
// auditing. The store is write-mostly; reads exist for operator inspection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"lessonforge/internal/generation"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_records (
	id           TEXT PRIMARY KEY,
	family       TEXT NOT NULL,
	tier         TEXT NOT NULL,
	intent       TEXT NOT NULL,
	domain       TEXT NOT NULL,
	confidence   REAL NOT NULL,
	overlay      INTEGER NOT NULL,
	state        TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	content      TEXT,
	critical     TEXT,
	warnings     TEXT,
	duration_ms  INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_records_family ON generation_records(family);
CREATE INDEX IF NOT EXISTS idx_generation_records_state  ON generation_records(state);
`

// RecordStore writes generation outcomes to SQLite.
type RecordStore struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, log *zap.Logger) (*RecordStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &RecordStore{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *RecordStore) Close() error { return s.db.Close() }

// Record implements generation.Recorder.
func (s *RecordStore) Record(ctx context.Context, res *generation.Result) error {
	critical, err := json.Marshal(res.Critical)
	if err != nil {
		return fmt.Errorf("failed to encode critical errors: %w", err)
	}
	warnings, err := json.Marshal(res.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generation_records
			(id, family, tier, intent, domain, confidence, overlay, state,
			 attempts, content, critical, warnings, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Request.ID,
		res.Request.Family.Name,
		res.Request.Tier.String(),
		res.Request.Intent,
		string(res.Routing.Domain),
		res.Routing.Confidence,
		boolToInt(res.Routing.ApplyOverlay),
		string(res.State),
		len(res.Attempts),
		res.Content,
		string(critical),
		string(warnings),
		res.Duration.Milliseconds(),
		res.Request.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

// RecordSummary is the operator-facing view of one stored outcome.
type RecordSummary struct {
	ID        string
	Family    string
	Tier      string
	Domain    string
	State     string
	Attempts  int
	CreatedAt string
}

// Recent returns the newest limit records.
func (s *RecordStore) Recent(ctx context.Context, limit int) ([]RecordSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family, tier, domain, state, attempts, created_at
		FROM generation_records
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation records: %w", err)
	}
	defer rows.Close()

	var out []RecordSummary
	for rows.Next() {
		var r RecordSummary
		if err := rows.Scan(&r.ID, &r.Family, &r.Tier, &r.Domain, &r.State, &r.Attempts, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
