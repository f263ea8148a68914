// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package state stores the cross-domain redirect path of each session.
package state

import (
	"context"
	"errors"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
)

// ErrNotFound is returned when a session has no redirect state.
var ErrNotFound = errors.New("redirect state not found")

// Entry is the redirect state of one session.
type Entry struct {
	SessionID string    `db:"session_id"`
	Path      string    `db:"path"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store keeps redirect state per session. Get returns "" for sessions
// without state.
type Store interface {
	locale.RedirectStore
	Load(ctx context.Context, sessionID string) (*Entry, error)
	// Prune removes entries last updated before cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// getPath adapts Load to the RedirectStore contract.
func getPath(ctx context.Context, s Store, sessionID string) (string, error) {
	entry, err := s.Load(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Path, nil
}
