// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"context"
	"sync"
)

// PendingLocale is a locale switch whose side effects wait for an explicit
// Finalize. It moves from pending to finalized exactly once.
type PendingLocale struct {
	locale string
	once   sync.Once
	done   chan struct{}
}

// NewPendingLocale creates a pending switch to code.
func NewPendingLocale(code string) *PendingLocale {
	return &PendingLocale{locale: code, done: make(chan struct{})}
}

// Locale returns the locale the switch goes to.
func (p *PendingLocale) Locale() string {
	return p.locale
}

// Finalize marks the switch as applied and releases every Wait call. It
// returns false when the switch was already finalized.
func (p *PendingLocale) Finalize() bool {
	finalized := false
	p.once.Do(func() {
		close(p.done)
		finalized = true
	})
	return finalized
}

// Finalized reports whether Finalize has been called.
func (p *PendingLocale) Finalized() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the switch is finalized or ctx is done.
func (p *PendingLocale) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
