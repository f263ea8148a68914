// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/htmx"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// sessionRuntime is a runtime bound to a browser session.
type sessionRuntime interface {
	locale.Runtime
	SessionID() string
}

// SwitchLocale switches to the locale posted in the "locale" form field and
// sends the browser to the current page in that locale.
func (h *Handlers) SwitchLocale(c echo.Context) error {
	ctx := c.Request().Context()
	helpers, ok := locale.HelpersFrom(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "locale routing is not configured")
	}

	code := c.FormValue("locale")
	if !h.engine.Options.HasLocale(code) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown locale")
	}

	rt := helpers.I18n()
	if _, _, err := h.engine.Switcher.SwitchLocale(ctx, rt, code, false); err != nil {
		return err
	}

	target := lo.CoalesceOrEmpty(helpers.SwitchLocalePath(code), h.engine.Router.LocalePath("/", code))
	sessionID := ""
	if sr, ok := rt.(sessionRuntime); ok {
		sessionID = sr.SessionID()
	}
	if h.hub != nil && sessionID != "" {
		h.hub.SendToSession(sessionID, sse.FormatEvent(sse.LocaleEvent, code))
	}

	var nav *locale.Navigation
	issued, err := h.engine.Navigator.Navigate(ctx, locale.NavigateArgs{
		Runtime:      rt,
		RedirectPath: target,
		Locale:       code,
		Route:        helpers.Route(),
		SessionID:    sessionID,
		Client:       true,
		Navigate: func(_ context.Context, n locale.Navigation) error {
			nav = &n
			return nil
		},
	}, locale.NavigateOptions{Status: http.StatusSeeOther, EnableNavigate: true})
	if err != nil {
		return err
	}
	if !issued || nav == nil {
		nav = &locale.Navigation{Path: target, Status: http.StatusSeeOther}
	}

	// Another domain always needs a full page load.
	hard := nav.Hard || strings.Contains(nav.Path, "://")
	htmx.Redirect(c.Response(), c.Request(), nav.Path, nav.Status, hard)
	return nil
}

// FinalizeLocale applies a deferred locale switch. htmx clients are asked to
// refresh the page when a switch was applied.
func (h *Handlers) FinalizeLocale(c echo.Context) error {
	helpers, ok := locale.HelpersFrom(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "locale routing is not configured")
	}

	finalized := helpers.FinalizePendingLocaleChange()
	if finalized && htmx.ParseRequest(c.Request()).IsHtmx {
		c.Response().Header().Set(htmx.HeaderRefresh, "true")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"finalized": finalized,
		"locale":    helpers.Locale(),
	})
}

// Head returns the head metadata of the page at the "path" query parameter
// as JSON. The "locale" parameter overrides the locale of the path.
func (h *Handlers) Head(c echo.Context) error {
	raw := c.QueryParam("path")
	if raw == "" {
		raw = "/"
	}
	route, ok := locale.ParseRoute(raw)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid path")
	}
	if route.Host == "" {
		route.Host = c.Request().Host
	}
	if route.Scheme == "" {
		route.Scheme = c.Scheme()
	}

	code := lo.CoalesceOrEmpty(c.QueryParam("locale"), h.engine.Router.LocaleFromRoute(route), h.engine.Options.DefaultLocale)
	if !h.engine.Options.HasLocale(code) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown locale")
	}

	return c.JSON(http.StatusOK, h.engine.Head.LocaleHead(route, code, pageHead))
}
