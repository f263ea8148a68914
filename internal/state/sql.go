// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vinovest/sqlx"
)

// SQLStore keeps redirect state in the redirect_states table.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a SQLStore on a migrated database.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Load returns the entry of sessionID or ErrNotFound.
func (s *SQLStore) Load(ctx context.Context, sessionID string) (*Entry, error) {
	var entry Entry
	err := s.db.GetContext(ctx, &entry,
		`SELECT session_id, path, updated_at FROM redirect_states WHERE session_id = ?`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load redirect state: %w", err)
	}
	return &entry, nil
}

// Get returns the stored path of sessionID, or "".
func (s *SQLStore) Get(ctx context.Context, sessionID string) (string, error) {
	return getPath(ctx, s, sessionID)
}

// Set stores path for sessionID, replacing any previous value.
func (s *SQLStore) Set(ctx context.Context, sessionID, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO redirect_states (session_id, path, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET path = excluded.path, updated_at = excluded.updated_at`,
		sessionID, path, s.now().UTC())
	if err != nil {
		return fmt.Errorf("store redirect state: %w", err)
	}
	return nil
}

// Clear removes the state of sessionID.
func (s *SQLStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM redirect_states WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear redirect state: %w", err)
	}
	return nil
}

// Prune removes entries last updated before cutoff.
func (s *SQLStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM redirect_states WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune redirect states: %w", err)
	}
	return res.RowsAffected()
}
