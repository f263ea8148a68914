// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans locale events out to the open tabs of a browser session.
package sse

import (
	"sync"

	"github.com/samber/lo"
)

// Hub manages SSE clients per session. Every tab of a browser shares the
// session id.
type Hub struct {
	clients map[string][]chan string
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string][]chan string)}
}

// Register adds a client for sessionID and returns the channel its events
// arrive on.
func (h *Hub) Register(sessionID string) chan string {
	ch := make(chan string, 10) // buffered to prevent blocking

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[sessionID] = append(h.clients[sessionID], ch)
	return ch
}

// Unregister removes and closes ch. Channels already closed by Close are
// ignored.
func (h *Hub) Unregister(sessionID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[sessionID]
	if !lo.Contains(clients, ch) {
		return
	}
	remaining := lo.Without(clients, ch)
	if len(remaining) == 0 {
		delete(h.clients, sessionID)
	} else {
		h.clients[sessionID] = remaining
	}
	close(ch)
}

// Close disconnects every client of sessionID. Clients receive queued
// events before their channel reports closed.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.clients[sessionID] {
		close(ch)
	}
	delete(h.clients, sessionID)
}

// SendToSession sends a message to all clients of sessionID. Clients with a
// full buffer miss the message.
func (h *Hub) SendToSession(sessionID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients[sessionID] {
		select {
		case ch <- message:
		default:
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []chan string) int {
		return len(clients)
	})
}

// SessionCount returns the number of sessions with active connections.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
