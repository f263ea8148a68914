// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

// Resolver picks the locale to activate for a route.
type Resolver struct {
	router   *Router
	detector Detector
}

// NewResolver creates a Resolver. A nil detector disables browser detection
// regardless of the options.
func NewResolver(router *Router, detector Detector) *Resolver {
	return &Resolver{router: router, detector: detector}
}

// Resolve returns the locale code for route. The first non-empty value of
// detection, domain or route prefix, cookie and default locale wins. The
// result only depends on its inputs.
func (r *Resolver) Resolve(route Route, initialLocale string, dctx DetectContext) string {
	opts := r.router.opts
	detectEnabled := opts.DetectBrowserLanguage.Enabled && r.detector != nil

	result := disabledDetection
	if detectEnabled {
		result = r.detector.Detect(route, initialLocale, dctx, initialLocale)
	}

	if result.Reason == ReasonIgnoredOnStatic {
		return initialLocale
	}

	switch result.Source {
	case SourceHeader, SourceCookie, SourceFallback:
		if result.Locale != "" {
			return result.Locale
		}
	}

	final := result.Locale
	if final == "" {
		switch {
		case opts.DifferentDomains:
			final = r.router.DomainLocale(route.Host)
		case opts.Strategy != StrategyNoPrefix:
			final = r.router.LocaleFromRoute(route)
		case !detectEnabled:
			final = initialLocale
		}
	}

	if final == "" && detectEnabled && opts.DetectBrowserLanguage.UseCookie && opts.HasLocale(dctx.LocaleCookie) {
		final = dctx.LocaleCookie
	}

	if final == "" {
		final = opts.DefaultLocale
	}
	return final
}
