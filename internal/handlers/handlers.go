// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/sse"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/templates"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// pageHead is what every page puts into its head.
var pageHead = locale.HeadOptions{AddDirAttribute: true, AddSEOAttributes: true}

// Handlers contains all HTTP handlers.
type Handlers struct {
	engine *locale.Engine
	hub    *sse.Hub
	logger *slog.Logger
}

// New creates a new Handlers instance. hub may be nil, which disables
// locale events. A nil logger logs to slog.Default().
func New(engine *locale.Engine, hub *sse.Hub, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{engine: engine, hub: hub, logger: logger}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return h.page(c, "home_title", templates.Home())
}

// About renders the about page.
func (h *Handlers) About(c echo.Context) error {
	return h.page(c, "about_title", templates.About())
}

func (h *Handlers) page(c echo.Context, titleID string, body templ.Component) error {
	ctx := c.Request().Context()
	return render(c, http.StatusOK, templates.Layout(i18n.T(ctx, titleID), head(ctx), body))
}

func head(ctx context.Context) locale.Head {
	helpers, ok := locale.HelpersFrom(ctx)
	if !ok {
		return locale.Head{}
	}
	return helpers.LocaleHead(pageHead)
}
