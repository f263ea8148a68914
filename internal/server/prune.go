// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/state"
)

const minPruneInterval = time.Minute

// pruneStates removes stale redirect states every ttl/2 until ctx is done.
// A non-positive ttl disables pruning.
func pruneStates(ctx context.Context, store state.Store, ttl time.Duration, logger *slog.Logger) {
	if ttl <= 0 {
		return
	}
	interval := max(ttl/2, minPruneInterval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pruneOnce(ctx, store, now.Add(-ttl), logger)
		}
	}
}

func pruneOnce(ctx context.Context, store state.Store, cutoff time.Time, logger *slog.Logger) {
	n, err := store.Prune(ctx, cutoff)
	if err != nil {
		logger.ErrorContext(ctx, "failed to prune redirect states", "error", err)
		return
	}
	if n > 0 {
		logger.DebugContext(ctx, "pruned redirect states", "count", n)
	}
}
