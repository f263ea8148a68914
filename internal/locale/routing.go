// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Route is the routing view of a request or navigation target.
type Route struct {
	Name   string // optional, may carry a locale suffix like "about___fr"
	Path   string
	Query  url.Values
	Host   string
	Scheme string
}

// FullPath returns the path followed by the encoded query, if any.
func (r Route) FullPath() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// RouteFromRequest builds a Route from an incoming request.
func RouteFromRequest(req *http.Request) Route {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	return Route{
		Path:   path,
		Query:  req.URL.Query(),
		Host:   req.Host,
		Scheme: scheme,
	}
}

// ParseRoute builds a Route from an absolute URL or a path. It returns false
// for empty or unparsable input.
func ParseRoute(raw string) (Route, bool) {
	if raw == "" {
		return Route{}, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Route{}, false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Route{Path: path, Query: u.Query(), Host: u.Host, Scheme: u.Scheme}, true
}

// Router generates and inspects localized paths for the configured strategy.
type Router struct {
	opts *Options
}

// NewRouter creates a Router over normalized options.
func NewRouter(opts *Options) *Router {
	return &Router{opts: opts}
}

// Options returns the options the router was built with.
func (r *Router) Options() *Options {
	return r.opts
}

// prefixable reports whether paths of the given locale carry a prefix.
func (r *Router) prefixable(code string) bool {
	if r.opts.DifferentDomains {
		return false
	}
	switch r.opts.Strategy {
	case StrategyNoPrefix:
		return false
	case StrategyPrefixExceptDefault:
		return code != r.opts.DefaultLocale
	default:
		return true
	}
}

// usesPrefixes reports whether any path can carry a locale prefix.
func (r *Router) usesPrefixes() bool {
	return !r.opts.DifferentDomains && r.opts.Strategy != StrategyNoPrefix
}

// StripPrefix splits a leading locale segment off path. It returns the base
// path and the locale code, or path unchanged and "" when there is no prefix.
func (r *Router) StripPrefix(path string) (string, string) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !r.usesPrefixes() {
		return path, ""
	}
	segment, rest, _ := strings.Cut(path[1:], "/")
	if segment == "" || !r.opts.HasLocale(segment) {
		return path, ""
	}
	return "/" + rest, segment
}

// LocaleFromRoute returns the locale a route belongs to, or "" when the route
// does not identify one.
func (r *Router) LocaleFromRoute(route Route) string {
	if code := r.localeFromName(route.Name); code != "" {
		return code
	}
	if r.opts.DifferentDomains {
		return r.DomainLocale(route.Host)
	}
	if !r.usesPrefixes() {
		return ""
	}
	if _, code := r.StripPrefix(route.Path); code != "" {
		return code
	}
	switch r.opts.Strategy {
	case StrategyPrefixExceptDefault, StrategyPrefixAndDefault:
		return r.opts.DefaultLocale
	}
	return ""
}

func (r *Router) localeFromName(name string) string {
	sep := r.opts.RouteNameSeparator
	if name == "" || !strings.Contains(name, sep) {
		return ""
	}
	name = strings.TrimSuffix(name, sep+r.opts.DefaultLocaleRouteNameSuffix)
	idx := strings.LastIndex(name, sep)
	if idx < 0 {
		return ""
	}
	code := name[idx+len(sep):]
	if !r.opts.HasLocale(code) {
		return ""
	}
	return code
}

// RouteBaseName returns the locale independent name of a route. Unnamed routes
// use their unprefixed path as name.
func (r *Router) RouteBaseName(route Route) string {
	if route.Name == "" {
		base, _ := r.StripPrefix(route.Path)
		return base
	}
	sep := r.opts.RouteNameSeparator
	name := strings.TrimSuffix(route.Name, sep+r.opts.DefaultLocaleRouteNameSuffix)
	if idx := strings.LastIndex(name, sep); idx >= 0 && r.opts.HasLocale(name[idx+len(sep):]) {
		return name[:idx]
	}
	return name
}

// LocalizedRouteName returns the route name of base for the given locale.
func (r *Router) LocalizedRouteName(base, code string) string {
	if base == "" || r.opts.Strategy == StrategyNoPrefix {
		return base
	}
	name := base + r.opts.RouteNameSeparator + code
	if r.opts.Strategy == StrategyPrefixAndDefault && code == r.opts.DefaultLocale {
		name += r.opts.RouteNameSeparator + r.opts.DefaultLocaleRouteNameSuffix
	}
	return name
}

// LocalePath returns path localized for code, keeping query and fragment.
// It returns "" for unknown locales or unparsable paths.
func (r *Router) LocalePath(path, code string) string {
	if !r.opts.HasLocale(code) {
		return ""
	}
	u, err := url.Parse(path)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	base, _ := r.StripPrefix(u.Path)
	u.Path = r.localize(base, code)
	u.RawPath = ""
	return u.String()
}

func (r *Router) localize(base, code string) string {
	return r.withPrefix(base, code, r.prefixable(code))
}

func (r *Router) withPrefix(base, code string, prefixed bool) string {
	p := base
	if prefixed {
		if base == "/" {
			p = "/" + code
		} else {
			p = "/" + code + base
		}
	}
	if r.opts.TrailingSlash {
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
	} else if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// LocaleRoute returns route moved to the given locale.
func (r *Router) LocaleRoute(route Route, code string) (Route, bool) {
	if !r.opts.HasLocale(code) {
		return Route{}, false
	}
	base, _ := r.StripPrefix(route.Path)
	out := route
	out.Path = r.localize(base, code)
	if route.Name != "" {
		out.Name = r.LocalizedRouteName(r.RouteBaseName(route), code)
		// The named default variant is the unprefixed copy of the route.
		if r.opts.Strategy == StrategyPrefixAndDefault && code == r.opts.DefaultLocale {
			out.Path = r.withPrefix(base, code, false)
		}
	}
	return out, true
}

// SwitchLocalePath returns the path of route in another locale. In
// different-domains mode the result is an absolute URL on the locale's domain.
func (r *Router) SwitchLocalePath(code string, route Route) string {
	target, ok := r.LocaleRoute(route, code)
	if !ok {
		return ""
	}
	path := target.FullPath()
	if r.opts.DifferentDomains {
		if domain := r.DomainFor(code, route.Scheme); domain != "" {
			return joinURL(domain, path)
		}
	}
	return path
}

// DomainLocale returns the code of the locale served on host.
func (r *Router) DomainLocale(host string) string {
	host = hostname(host)
	if host == "" {
		return ""
	}
	for _, l := range r.opts.Locales {
		if l.Domain != "" && strings.EqualFold(hostname(l.Domain), host) {
			return l.Code
		}
	}
	return ""
}

// DomainFor returns the absolute origin of the locale's domain, or "".
func (r *Router) DomainFor(code, scheme string) string {
	l, ok := r.opts.Find(code)
	if !ok || l.Domain == "" {
		return ""
	}
	return withScheme(l.Domain, scheme)
}

// hostname strips scheme, path and port from a host or domain value.
func hostname(value string) string {
	if i := strings.Index(value, "://"); i >= 0 {
		value = value[i+3:]
	}
	value, _, _ = strings.Cut(value, "/")
	if h, _, err := net.SplitHostPort(value); err == nil {
		return h
	}
	return value
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
