// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"net/url"
	"strings"
)

// RedirectInput describes one redirect decision.
type RedirectInput struct {
	To           Route
	From         *Route // previous route, nil on first access
	TargetLocale string
	// Direct is set when the switch was requested explicitly instead of
	// being triggered by a navigation.
	Direct bool
	// Client is set for navigations driven from an already loaded page.
	Client bool
}

// Planner decides whether a route must be redirected to its localized path.
type Planner struct {
	router *Router
}

// NewPlanner creates a Planner.
func NewPlanner(router *Router) *Planner {
	return &Planner{router: router}
}

// Plan returns the redirect target for in, or "" when no redirect is needed.
func (p *Planner) Plan(in RedirectInput) string {
	opts := p.router.opts
	toFullPath := in.To.FullPath()
	staticServer := opts.StaticGeneration && !in.Client
	localeMismatch := p.router.LocaleFromRoute(in.To) != in.TargetLocale

	redirectPath := ""

	if !staticServer &&
		!opts.DifferentDomains &&
		(in.Direct || opts.Strategy != StrategyNoPrefix) &&
		localeMismatch {
		routePath := p.router.SwitchLocalePath(in.TargetLocale, in.To)
		if routePath == "" {
			routePath = p.router.LocalePath(toFullPath, in.TargetLocale)
		}
		if usableRedirect(routePath, toFullPath) {
			// Respect the current route when the target is where we came from.
			if in.From == nil || in.From.FullPath() != routePath {
				redirectPath = routePath
			}
		}
	}

	if (opts.DifferentDomains || (opts.StaticGeneration && in.Client)) && localeMismatch {
		routePath := p.router.SwitchLocalePath(in.TargetLocale, in.To)
		if usableRedirect(routePath, toFullPath) {
			redirectPath = routePath
		}
	}

	return redirectPath
}

// usableRedirect reports whether target is a non-empty, different,
// non protocol-relative path.
func usableRedirect(target, current string) bool {
	return target != "" && !pathsEqual(target, current) && !strings.HasPrefix(target, "//")
}

// pathsEqual compares two paths ignoring leading and trailing slashes and
// differences in the percent-encoding of the path. Queries compare verbatim.
func pathsEqual(a, b string) bool {
	return normalizePath(a) == normalizePath(b)
}

func normalizePath(p string) string {
	path, query, hasQuery := strings.Cut(p, "?")
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	path = strings.Trim(path, "/")
	if hasQuery {
		return path + "?" + query
	}
	return path
}
