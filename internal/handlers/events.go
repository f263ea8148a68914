// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/sse"
	"github.com/labstack/echo/v4"
)

// heartbeatInterval keeps idle connections open through proxies.
var heartbeatInterval = 30 * time.Second

// Events streams locale events to the tabs of the current browser session.
// Requests without a session get 204, which tells EventSource not to
// reconnect.
func (h *Handlers) Events(c echo.Context) error {
	if h.hub == nil {
		return c.NoContent(http.StatusNoContent)
	}

	ctx := c.Request().Context()
	sessionID := ""
	if helpers, ok := locale.HelpersFrom(ctx); ok {
		if sr, ok := helpers.I18n().(sessionRuntime); ok {
			sessionID = sr.SessionID()
		}
	}
	if sessionID == "" {
		return c.NoContent(http.StatusNoContent)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := h.hub.Register(sessionID)
	defer h.hub.Unregister(sessionID, ch)

	if _, err := w.Write([]byte(sse.FormatEvent("connected", "ok"))); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			w.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
