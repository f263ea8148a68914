// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package locale decides which locale a request runs in, whether the request
// must be redirected to a localized path, and which SEO head entries the page
// carries for its alternates.
package locale

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// Strategy controls how locales show up in URL paths.
type Strategy string

const (
	// StrategyPrefix prefixes every route with its locale code.
	StrategyPrefix Strategy = "prefix"
	// StrategyPrefixAndDefault prefixes every route, and also serves the
	// default locale without a prefix.
	StrategyPrefixAndDefault Strategy = "prefix_and_default"
	// StrategyPrefixExceptDefault prefixes every locale except the default one.
	StrategyPrefixExceptDefault Strategy = "prefix_except_default"
	// StrategyNoPrefix never puts the locale into the path.
	StrategyNoPrefix Strategy = "no_prefix"
)

// RedirectOn values for browser language detection.
const (
	RedirectOnRoot     = "root"
	RedirectOnNoPrefix = "no prefix"
	RedirectOnAll      = "all"
)

// Defaults applied by DefaultOptions.
const (
	DefaultCookieKey          = "i18n_redirected"
	DefaultRouteNameSeparator = "___"
	DefaultRouteNameSuffix    = "default"
)

var (
	ErrUnknownStrategy      = errors.New("locale: unknown strategy")
	ErrUnknownDefaultLocale = errors.New("locale: default locale is not configured")
	ErrDuplicateLocale      = errors.New("locale: duplicate locale code")
	ErrUnknownRedirectOn    = errors.New("locale: unknown redirectOn value")
	ErrEmptyLocaleCode      = errors.New("locale: locale code is empty")
)

// Locale describes one configured locale.
type Locale struct {
	Code       string   `toml:"code"`
	ISO        string   `toml:"iso"`
	Domain     string   `toml:"domain"`
	Dir        string   `toml:"dir"` // ltr, rtl, auto
	Name       string   `toml:"name"`
	IsCatchall bool     `toml:"is_catchall_locale"`
	Files      []string `toml:"files"`
}

// RootRedirect sends requests for "/" to Path with StatusCode.
type RootRedirect struct {
	Path       string
	StatusCode int
}

// DetectBrowserLanguage configures cookie and Accept-Language detection.
type DetectBrowserLanguage struct { //nolint:govet // fieldalignment not critical for config structs
	Enabled           bool
	UseCookie         bool
	CookieKey         string
	CookieDomain      string
	CookieSecure      bool
	CookieCrossOrigin bool
	RedirectOn        string // root, no prefix, all
	AlwaysRedirect    bool
	FallbackLocale    string
}

// Options is the complete locale routing configuration. Build it with
// DefaultOptions, override fields, then call Normalize once at startup.
type Options struct { //nolint:govet // fieldalignment not critical for config structs
	Strategy                     Strategy
	DefaultLocale                string
	Locales                      []Locale
	DifferentDomains             bool
	RootRedirect                 *RootRedirect
	DetectBrowserLanguage        DetectBrowserLanguage
	Lazy                         bool
	SkipSettingLocaleOnNavigate  bool
	BaseURL                      string
	BaseURLFunc                  func() string
	TrailingSlash                bool
	RouteNameSeparator           string
	DefaultLocaleRouteNameSuffix string
	StaticGeneration             bool
	RedirectStatusCode           int
	FallbackLocales              map[string][]string
	CanonicalQueries             []string
}

// DefaultOptions returns the documented defaults for every option.
func DefaultOptions() Options {
	return Options{
		Strategy:      StrategyPrefixExceptDefault,
		DefaultLocale: "",
		DetectBrowserLanguage: DetectBrowserLanguage{
			Enabled:        true,
			UseCookie:      true,
			CookieKey:      DefaultCookieKey,
			RedirectOn:     RedirectOnRoot,
			AlwaysRedirect: false,
		},
		RouteNameSeparator:           DefaultRouteNameSeparator,
		DefaultLocaleRouteNameSuffix: DefaultRouteNameSuffix,
		RedirectStatusCode:           http.StatusFound,
	}
}

// Normalize validates o and fills values derived from other options.
func (o Options) Normalize() (Options, error) {
	switch o.Strategy {
	case StrategyPrefix, StrategyPrefixAndDefault, StrategyPrefixExceptDefault, StrategyNoPrefix:
	case "":
		o.Strategy = StrategyPrefixExceptDefault
	default:
		return o, fmt.Errorf("%w: %q", ErrUnknownStrategy, o.Strategy)
	}

	seen := make(map[string]struct{}, len(o.Locales))
	locales := make([]Locale, 0, len(o.Locales))
	for _, l := range o.Locales {
		l.Code = strings.TrimSpace(l.Code)
		if l.Code == "" {
			return o, ErrEmptyLocaleCode
		}
		if _, dup := seen[l.Code]; dup {
			return o, fmt.Errorf("%w: %q", ErrDuplicateLocale, l.Code)
		}
		seen[l.Code] = struct{}{}
		if l.Dir == "" {
			l.Dir = "ltr"
		}
		locales = append(locales, l)
	}
	o.Locales = locales

	if o.DefaultLocale != "" {
		if _, ok := seen[o.DefaultLocale]; !ok {
			return o, fmt.Errorf("%w: %q", ErrUnknownDefaultLocale, o.DefaultLocale)
		}
	}

	d := &o.DetectBrowserLanguage
	switch d.RedirectOn {
	case RedirectOnRoot, RedirectOnNoPrefix, RedirectOnAll:
	case "":
		d.RedirectOn = RedirectOnRoot
	default:
		return o, fmt.Errorf("%w: %q", ErrUnknownRedirectOn, d.RedirectOn)
	}
	if d.CookieKey == "" {
		d.CookieKey = DefaultCookieKey
	}

	if o.RouteNameSeparator == "" {
		o.RouteNameSeparator = DefaultRouteNameSeparator
	}
	if o.DefaultLocaleRouteNameSuffix == "" {
		o.DefaultLocaleRouteNameSuffix = DefaultRouteNameSuffix
	}
	if o.RedirectStatusCode == 0 {
		o.RedirectStatusCode = http.StatusFound
	}
	if o.RootRedirect != nil {
		rr := *o.RootRedirect
		rr.Path = strings.TrimPrefix(rr.Path, "/")
		if rr.StatusCode == 0 {
			rr.StatusCode = o.RedirectStatusCode
		}
		if rr.Path == "" {
			o.RootRedirect = nil
		} else {
			o.RootRedirect = &rr
		}
	}
	o.BaseURL = strings.TrimSuffix(o.BaseURL, "/")

	return o, nil
}

// LocaleCodes returns the configured codes in configuration order.
func (o *Options) LocaleCodes() []string {
	return lo.Map(o.Locales, func(l Locale, _ int) string { return l.Code })
}

// HasLocale reports whether code is configured.
func (o *Options) HasLocale(code string) bool {
	_, ok := o.Find(code)
	return ok
}

// Find returns the configured locale with the given code.
func (o *Options) Find(code string) (Locale, bool) {
	return lo.Find(o.Locales, func(l Locale) bool { return l.Code == code })
}

// ResolveBaseURL returns the base URL absolute links are built on.
func (o *Options) ResolveBaseURL() string {
	if o.BaseURLFunc != nil {
		return o.BaseURLFunc()
	}
	if o.DifferentDomains && o.DefaultLocale != "" {
		if l, ok := o.Find(o.DefaultLocale); ok && l.Domain != "" {
			return withScheme(l.Domain, "https")
		}
	}
	return o.BaseURL
}

// withScheme prefixes domain with scheme unless it already carries one.
func withScheme(domain, scheme string) string {
	if hasScheme(domain) {
		return strings.TrimSuffix(domain, "/")
	}
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimSuffix(domain, "/")
}

func hasScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
