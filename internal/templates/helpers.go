// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the application pages as templ components.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"context"
	"net/http"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/ctxkeys"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/a-h/templ"
	"github.com/samber/lo"
)

// HTMXScript is the htmx build the pages load.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TPlural translates a message with plural support.
func TPlural(ctx context.Context, messageID string, count int) string {
	return i18n.TPlural(ctx, messageID, count)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// PendingLocale returns the locale of a deferred switch waiting to be
// finalized, or "".
func PendingLocale(ctx context.Context) string {
	h, ok := locale.HelpersFrom(ctx)
	if !ok {
		return ""
	}
	if p := h.I18n().PendingLocale(); p != nil {
		return p.Locale()
	}
	return ""
}

// LocalePath localizes path for the active locale. Without locale helpers
// the path is returned unchanged.
func LocalePath(ctx context.Context, path string) string {
	if h, ok := locale.HelpersFrom(ctx); ok {
		if localized := h.LocalePath(path, ""); localized != "" {
			return localized
		}
	}
	return path
}

func htmlLang(ctx context.Context, head locale.Head) string {
	return lo.CoalesceOrEmpty(head.HTMLAttrs.Lang, Locale(ctx))
}

func pageTitle(ctx context.Context, title string) string {
	return title + " | " + T(ctx, "app_name")
}

// identifierAttr keys a head tag with the identifier attribute of head.
func identifierAttr(head locale.Head, id string) templ.Attributes {
	name := lo.CoalesceOrEmpty(head.IdentifierAttribute, locale.DefaultIdentifierAttribute)
	return templ.Attributes{name: id}
}

// localeEntry is one locale as the language switcher shows it.
type localeEntry struct {
	Code    string
	ISO     string
	Name    string
	Path    string
	Current bool
}

// localeEntries lists every configured locale with the path of the current
// page in that locale. Path is "" when the page has no variant there.
func localeEntries(h *locale.Helpers) []localeEntry {
	current := h.Locale()
	return lo.Map(h.Locales(), func(l locale.Locale, _ int) localeEntry {
		return localeEntry{
			Code:    l.Code,
			ISO:     l.ISO,
			Name:    lo.CoalesceOrEmpty(l.Name, l.Code),
			Path:    h.SwitchLocalePath(l.Code),
			Current: l.Code == current,
		}
	})
}

// switchLinks is localeEntries without the locales the page is missing in.
func switchLinks(h *locale.Helpers) []localeEntry {
	return lo.Filter(localeEntries(h), func(e localeEntry, _ int) bool {
		return e.Path != ""
	})
}

// errorMessages maps status codes to their message ids.
var errorMessages = map[int]string{
	http.StatusNotFound:  "error_not_found",
	http.StatusForbidden: "error_forbidden",
}

func errorMessage(code int) string {
	if id, ok := errorMessages[code]; ok {
		return id
	}
	return "error_generic"
}
