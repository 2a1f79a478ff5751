// Package postgres persists audit events to a relational table. The lib/pq
// driver is registered by the caller (cmd/server imports it blank).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "onboard/pkg/platform/audit"
)

// Store implements audit.Store over database/sql.
type Store struct {
	db *sql.DB
}

// New creates a postgres-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS registration_audit (
			id          UUID PRIMARY KEY,
			category    TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			session_id  TEXT NOT NULL DEFAULT '',
			subject     TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			decision    TEXT NOT NULL DEFAULT '',
			reason      TEXT NOT NULL DEFAULT '',
			email       TEXT NOT NULL DEFAULT '',
			request_id  TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("migrate registration_audit: %w", err)
	}
	return nil
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.CategoryFor(event.Action)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registration_audit
			(id, category, occurred_at, session_id, subject, action, decision, reason, email, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), string(category), event.Timestamp, event.SessionID, event.Subject,
		event.Action, event.Decision, event.Reason, event.Email, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// CountByAction returns how many events were recorded for an action. Used by
// integration tests and operational checks.
func (s *Store) CountByAction(ctx context.Context, action string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registration_audit WHERE action = $1`, action).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return count, nil
}
