// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import "context"

// Helpers is the per-request locale API handed to handlers and templates.
type Helpers struct {
	engine *Engine
	rt     Runtime
	route  Route
}

// NewHelpers binds the engine to a request's runtime and route.
func (e *Engine) NewHelpers(rt Runtime, route Route) *Helpers {
	return &Helpers{engine: e, rt: rt, route: route}
}

// I18n returns the request's locale runtime.
func (h *Helpers) I18n() Runtime {
	return h.rt
}

// Locale returns the active locale code.
func (h *Helpers) Locale() string {
	return h.rt.Locale()
}

// Locales returns the configured locales.
func (h *Helpers) Locales() []Locale {
	return h.engine.Options.Locales
}

// Route returns the route the helpers are bound to.
func (h *Helpers) Route() Route {
	return h.route
}

// RouteBaseName returns the locale independent name of the current route.
func (h *Helpers) RouteBaseName() string {
	return h.engine.Router.RouteBaseName(h.route)
}

// LocalePath localizes path for code, or for the active locale when code is empty.
func (h *Helpers) LocalePath(path, code string) string {
	if code == "" {
		code = h.rt.Locale()
	}
	return h.engine.Router.LocalePath(path, code)
}

// LocaleRoute localizes path for code, or for the active locale when code is empty.
func (h *Helpers) LocaleRoute(path, code string) (Route, bool) {
	if code == "" {
		code = h.rt.Locale()
	}
	route, ok := ParseRoute(path)
	if !ok {
		return Route{}, false
	}
	return h.engine.Router.LocaleRoute(route, code)
}

// SwitchLocalePath returns the current route's path in another locale.
func (h *Helpers) SwitchLocalePath(code string) string {
	return h.engine.Router.SwitchLocalePath(code, h.route)
}

// LocaleHead returns the head metadata of the current route.
func (h *Helpers) LocaleHead(opts HeadOptions) Head {
	return h.engine.Head.LocaleHead(h.route, h.rt.Locale(), opts)
}

// FinalizePendingLocaleChange applies a deferred locale switch.
func (h *Helpers) FinalizePendingLocaleChange() bool {
	return FinalizePendingLocaleChange(h.rt, h.engine.Options.DetectBrowserLanguage.UseCookie)
}

type helpersContextKey struct{}

// WithHelpers adds the helpers to the context.
func WithHelpers(ctx context.Context, h *Helpers) context.Context {
	return context.WithValue(ctx, helpersContextKey{}, h)
}

// HelpersFrom returns the helpers stored in ctx.
func HelpersFrom(ctx context.Context) (*Helpers, bool) {
	h, ok := ctx.Value(helpersContextKey{}).(*Helpers)
	return h, ok
}
