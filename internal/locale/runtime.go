// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import "sync"

// MemoryRuntime is a Runtime held in memory. The cookie value is recorded
// instead of being written anywhere.
type MemoryRuntime struct {
	mu      sync.Mutex
	locale  string
	cookie  string
	pending *PendingLocale
}

var _ Runtime = (*MemoryRuntime)(nil)

// NewMemoryRuntime creates a runtime with the given active locale.
func NewMemoryRuntime(initial string) *MemoryRuntime {
	return &MemoryRuntime{locale: initial}
}

func (m *MemoryRuntime) Locale() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locale
}

func (m *MemoryRuntime) SetLocale(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locale = code
}

func (m *MemoryRuntime) SetLocaleCookie(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookie = code
}

// Cookie returns the last value passed to SetLocaleCookie.
func (m *MemoryRuntime) Cookie() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cookie
}

func (m *MemoryRuntime) PendingLocale() *PendingLocale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *MemoryRuntime) SetPendingLocale(p *PendingLocale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = p
}
