// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/htmx"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// Paths served without locale resolution.
var unlocalizedPrefixes = []string{"/static/", "/health"}

// Endpoints that act on the page they were called from instead of being
// pages themselves.
var actionPaths = []string{"/locale", "/locale/finalize", "/head", "/events"}

// localeRouting resolves the locale of every request, redirects to the
// localized URL when needed and routes localized paths onto base handlers.
type localeRouting struct {
	engine   *locale.Engine
	catalog  *i18n.Catalog
	sessions *session.Manager
	logger   *slog.Logger
}

func (lr *localeRouting) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if skipLocale(req.URL.Path) {
				return next(c)
			}

			// Pages start a session so that the tabs of a browser share
			// locale events.
			opts := lr.engine.Options
			ensureSession := opts.DifferentDomains || opts.SkipSettingLocaleOnNavigate || isPage(req)
			rt, err := session.NewRuntime(c.Response(), req, lr.sessions, opts.DetectBrowserLanguage, ensureSession)
			if err != nil {
				return err
			}
			c.Response().Before(func() {
				if saveErr := rt.Save(); saveErr != nil {
					lr.logger.ErrorContext(req.Context(), "failed to save session", "error", saveErr)
				}
			})

			route := locale.RouteFromRequest(req)
			var from *locale.Route
			if prev, ok := locale.ParseRoute(htmx.PreviousURL(req)); ok {
				from = &prev
			}

			if !isPage(req) {
				bound := lo.FromPtrOr(from, locale.Route{Path: "/", Host: route.Host, Scheme: route.Scheme})
				rt.SetLocale(lr.pageLocale(bound, rt))
				return lr.serve(c, next, rt, bound, rt.Locale())
			}

			issued, target, err := lr.resolve(c, rt, route, from)
			if err != nil {
				return err
			}
			if issued {
				return nil
			}

			// Handlers are registered on unprefixed paths without a trailing slash.
			base, _ := lr.engine.Router.StripPrefix(req.URL.Path)
			if base != "/" {
				base = strings.TrimSuffix(base, "/")
			}
			req.URL.Path = base
			req.URL.RawPath = ""
			return lr.serve(c, next, rt, route, target)
		}
	}
}

// resolve runs detection, the locale switch and the redirect decision for a
// page request. It reports whether a redirect was sent, and otherwise the
// locale the page renders in.
func (lr *localeRouting) resolve(c echo.Context, rt *session.Runtime, route locale.Route, from *locale.Route) (bool, string, error) {
	req := c.Request()
	ctx := req.Context()
	client := htmx.ParseRequest(req).ClientNavigation()

	dctx := locale.DetectContext{
		Static:         locale.StaticNormal,
		CallType:       locale.CallSetup,
		FirstAccess:    !client,
		AcceptLanguage: req.Header.Get("Accept-Language"),
		LocaleCookie:   rt.LocaleCookie(),
	}
	if client {
		dctx.CallType = locale.CallRouting
		if from != nil {
			rt.SetLocale(lr.pageLocale(*from, rt))
		}
	}

	newLocale := lr.engine.Resolver.Resolve(route, rt.Locale(), dctx)
	if _, _, err := lr.engine.Switcher.SwitchLocale(ctx, rt, newLocale, !client); err != nil {
		return false, "", fmt.Errorf("switch locale: %w", err)
	}

	redirectPath := lr.engine.Planner.Plan(locale.RedirectInput{
		To:           route,
		From:         from,
		TargetLocale: newLocale,
		Client:       client,
	})

	var nav *locale.Navigation
	issued, err := lr.engine.Navigator.Navigate(ctx, locale.NavigateArgs{
		Runtime:      rt,
		RedirectPath: redirectPath,
		Locale:       newLocale,
		Route:        route,
		SessionID:    rt.SessionID(),
		Client:       client,
		Navigate:     recordNavigation(&nav),
	}, locale.NavigateOptions{})
	if err != nil {
		return false, "", err
	}
	if issued && nav != nil {
		lr.logger.DebugContext(ctx, "locale redirect", "from", route.FullPath(), "to", nav.Path, "status", nav.Status)
		htmx.Redirect(c.Response(), req, nav.Path, nav.Status, nav.Hard)
		return true, "", nil
	}

	return false, lo.CoalesceOrEmpty(rt.Locale(), newLocale), nil
}

// serve hands the request to next with locale helpers and a localizer for
// code in its context.
func (lr *localeRouting) serve(c echo.Context, next echo.HandlerFunc, rt *session.Runtime, route locale.Route, code string) error {
	req := c.Request()
	ctx := req.Context()

	if lr.engine.Options.Lazy {
		if err := lr.catalog.LoadLocale(ctx, code); err != nil {
			return fmt.Errorf("load locale %q: %w", code, err)
		}
	}

	ctx = locale.WithHelpers(ctx, lr.engine.NewHelpers(rt, route))
	ctx = i18n.WithLocalizer(ctx, lr.catalog.Localizer(code))
	c.SetRequest(req.WithContext(ctx))

	header := c.Response().Header()
	if l, ok := lr.engine.Options.Find(code); ok {
		header.Set("Content-Language", lo.CoalesceOrEmpty(l.ISO, l.Code))
	}
	if lr.engine.Options.DetectBrowserLanguage.Enabled {
		header.Add(echo.HeaderVary, "Accept-Language")
	}
	return next(c)
}

// pageLocale returns the locale a page was rendered in.
func (lr *localeRouting) pageLocale(route locale.Route, rt *session.Runtime) string {
	opts := lr.engine.Options
	cookie := ""
	if opts.DetectBrowserLanguage.UseCookie && opts.HasLocale(rt.LocaleCookie()) {
		cookie = rt.LocaleCookie()
	}
	return lo.CoalesceOrEmpty(lr.engine.Router.LocaleFromRoute(route), cookie, opts.DefaultLocale)
}

func recordNavigation(dst **locale.Navigation) locale.NavigateFunc {
	return func(_ context.Context, nav locale.Navigation) error {
		*dst = &nav
		return nil
	}
}

func skipLocale(path string) bool {
	return slices.ContainsFunc(unlocalizedPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

func isPage(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return !slices.Contains(actionPaths, req.URL.Path)
}
