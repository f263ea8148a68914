// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"golang.org/x/text/language"
)

// DetectStatus tells whether detection produced a locale.
type DetectStatus int

const (
	DetectNotFound DetectStatus = iota
	DetectSuccess
)

// DetectReason explains a detection outcome.
type DetectReason string

const (
	ReasonDetected              DetectReason = "detected"
	ReasonDisabled              DetectReason = "disabled"
	ReasonIgnoredOnStatic       DetectReason = "detect_ignore_on_ssg"
	ReasonFirstAccessOnly       DetectReason = "first_access_only"
	ReasonNotRedirectOnRoot     DetectReason = "not_redirect_on_root"
	ReasonNotRedirectOnNoPrefix DetectReason = "not_redirect_on_no_prefix"
	ReasonNotFound              DetectReason = "not_found_locale"
)

// DetectSource names where a detected locale came from.
type DetectSource string

const (
	SourceNone     DetectSource = "unknown"
	SourceHeader   DetectSource = "navigator_or_header"
	SourceCookie   DetectSource = "cookie"
	SourceFallback DetectSource = "fallback"
)

// CallType is the lifecycle point detection runs at.
type CallType string

const (
	CallSetup   CallType = "setup"
	CallRouting CallType = "routing"
	CallNormal  CallType = "normal"
)

// StaticMode describes static generation state for detection.
type StaticMode string

const (
	StaticNormal StaticMode = "normal"
	StaticIgnore StaticMode = "ssg_ignore"
	StaticSetup  StaticMode = "ssg_setup"
)

// DetectionResult is produced once per navigation attempt.
type DetectionResult struct {
	Locale string
	Status DetectStatus
	Reason DetectReason
	Source DetectSource
}

// DetectContext carries the per-request inputs of locale detection.
type DetectContext struct {
	Static         StaticMode
	CallType       CallType
	FirstAccess    bool
	AcceptLanguage string
	LocaleCookie   string
}

// Detector is the browser language detection collaborator.
type Detector interface {
	Detect(route Route, runtimeLocale string, dctx DetectContext, initialLocale string) DetectionResult
}

// disabledDetection is the result used when browser detection is off.
var disabledDetection = DetectionResult{Status: DetectNotFound, Reason: ReasonDisabled, Source: SourceNone}

// BrowserDetector detects the locale from the locale cookie and the
// Accept-Language header.
type BrowserDetector struct {
	router  *Router
	matcher language.Matcher
	tags    []language.Tag
	codes   []string
}

// NewBrowserDetector creates a detector for the router's locales. Locales
// are matched by ISO tag when present, by code otherwise.
func NewBrowserDetector(router *Router) *BrowserDetector {
	d := &BrowserDetector{router: router}
	for _, l := range router.opts.Locales {
		value := l.ISO
		if value == "" {
			value = l.Code
		}
		tag, err := language.Parse(value)
		if err != nil {
			continue
		}
		d.tags = append(d.tags, tag)
		d.codes = append(d.codes, l.Code)
	}
	if len(d.tags) > 0 {
		d.matcher = language.NewMatcher(d.tags)
	}
	return d
}

// MatchLanguage returns the configured locale code that best matches an
// Accept-Language header, or "" when nothing matches.
func (d *BrowserDetector) MatchLanguage(acceptLanguage string) string {
	if d.matcher == nil || acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, confidence := d.matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	return d.codes[idx]
}

// Detect implements Detector.
func (d *BrowserDetector) Detect(route Route, runtimeLocale string, dctx DetectContext, initialLocale string) DetectionResult {
	opts := d.router.opts
	cfg := opts.DetectBrowserLanguage
	if !cfg.Enabled {
		return disabledDetection
	}
	if !dctx.FirstAccess {
		return DetectionResult{Status: DetectNotFound, Reason: ReasonFirstAccessOnly, Source: SourceNone}
	}
	if dctx.Static == StaticIgnore {
		return DetectionResult{Status: DetectNotFound, Reason: ReasonIgnoredOnStatic, Source: SourceNone}
	}

	_, prefix := d.router.StripPrefix(route.Path)
	if opts.Strategy != StrategyNoPrefix {
		switch cfg.RedirectOn {
		case RedirectOnRoot:
			if route.Path != "/" {
				return DetectionResult{Status: DetectNotFound, Reason: ReasonNotRedirectOnRoot, Source: SourceNone}
			}
		case RedirectOnNoPrefix:
			if !cfg.AlwaysRedirect && prefix != "" {
				return DetectionResult{Status: DetectNotFound, Reason: ReasonNotRedirectOnNoPrefix, Source: SourceNone}
			}
		}
	}

	source := SourceNone
	var cookieLocale, matched string
	if cfg.UseCookie && opts.HasLocale(dctx.LocaleCookie) {
		cookieLocale = dctx.LocaleCookie
		matched = cookieLocale
		source = SourceCookie
	}
	if matched == "" {
		matched = d.MatchLanguage(dctx.AcceptLanguage)
		source = SourceHeader
	}
	final := matched
	if final == "" && cfg.FallbackLocale != "" {
		final = cfg.FallbackLocale
		source = SourceFallback
	}

	current := initialLocale
	if current == "" {
		current = runtimeLocale
	}

	found := DetectionResult{Locale: final, Status: DetectSuccess, Reason: ReasonDetected, Source: source}
	if final != "" && (!cfg.UseCookie || cfg.AlwaysRedirect || cookieLocale == "") {
		if opts.Strategy == StrategyNoPrefix {
			return found
		}
		if dctx.CallType == CallSetup && final != current {
			return found
		}
		if cfg.AlwaysRedirect {
			onRoot := route.Path == "/"
			onAll := cfg.RedirectOn == RedirectOnAll
			onNoPrefix := cfg.RedirectOn == RedirectOnNoPrefix && prefix == ""
			if onRoot || onAll || onNoPrefix {
				return found
			}
		}
	}

	if dctx.Static == StaticSetup && final != "" {
		return found
	}

	return DetectionResult{Status: DetectNotFound, Reason: ReasonNotFound, Source: source}
}
