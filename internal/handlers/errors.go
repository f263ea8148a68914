// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/templates"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders errors as localized pages for browsers and as
// JSON for everything else.
func (h *Handlers) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = http.StatusText(code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	req := c.Request()
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(req.Context(), "request failed", "error", err, "path", req.URL.Path)
	}

	var renderErr error
	switch {
	case req.Method == http.MethodHead:
		renderErr = c.NoContent(code)
	case wantsHTML(req):
		ctx := req.Context()
		renderErr = render(c, code, templates.Layout(http.StatusText(code), head(ctx), templates.ErrorPage(code)))
	default:
		renderErr = c.JSON(code, map[string]string{"error": message})
	}
	if renderErr != nil {
		h.logger.ErrorContext(req.Context(), "failed to render error", "error", renderErr)
	}
}

func wantsHTML(req *http.Request) bool {
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
