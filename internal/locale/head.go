// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultIdentifierAttribute is the attribute head entries are keyed by.
const DefaultIdentifierAttribute = "hid"

var absoluteURL = regexp.MustCompile(`^https?://`)

// Link is a <link> head entry.
type Link struct {
	ID       string `json:"id"`
	Rel      string `json:"rel"`
	Href     string `json:"href"`
	Hreflang string `json:"hreflang,omitempty"`
}

// Meta is a <meta> head entry.
type Meta struct {
	ID       string `json:"id"`
	Property string `json:"property"`
	Content  string `json:"content"`
}

// HTMLAttrs are attributes of the <html> element.
type HTMLAttrs struct {
	Lang string `json:"lang,omitempty"`
	Dir  string `json:"dir,omitempty"`
}

// Head is head metadata. Enrichers only ever append to Link and Meta.
type Head struct {
	IdentifierAttribute string    `json:"identifierAttribute"`
	HTMLAttrs           HTMLAttrs `json:"htmlAttrs"`
	Link                []Link    `json:"link"`
	Meta                []Meta    `json:"meta"`
}

// HeadOptions select what LocaleHead produces.
type HeadOptions struct {
	AddDirAttribute     bool
	AddSEOAttributes    bool
	IdentifierAttribute string
	CanonicalQueries    []string
}

// HeadEnricher appends locale related entries to page head metadata.
type HeadEnricher struct {
	router *Router
	logger *slog.Logger
}

// NewHeadEnricher creates a HeadEnricher.
func NewHeadEnricher(router *Router, logger *slog.Logger) *HeadEnricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeadEnricher{router: router, logger: logger}
}

// LocaleHead builds the head metadata of route rendered in locale current.
func (h *HeadEnricher) LocaleHead(route Route, current string, hopts HeadOptions) Head {
	opts := h.router.opts
	head := Head{IdentifierAttribute: hopts.IdentifierAttribute}
	if head.IdentifierAttribute == "" {
		head.IdentifierAttribute = DefaultIdentifierAttribute
	}

	currentLocale, ok := opts.Find(current)
	if !ok {
		return head
	}
	if hopts.AddDirAttribute {
		head.HTMLAttrs.Dir = currentLocale.Dir
	}
	if !hopts.AddSEOAttributes {
		return head
	}
	if currentLocale.ISO != "" {
		head.HTMLAttrs.Lang = currentLocale.ISO
	}

	queries := hopts.CanonicalQueries
	if queries == nil {
		queries = opts.CanonicalQueries
	}

	h.AddHreflangLinks(&head, route)
	h.AddCanonicalLinksAndOgURL(&head, route, current, queries)
	h.AddCurrentOgLocale(&head, currentLocale.ISO)
	h.AddAlternateOgLocales(&head, currentLocale.ISO)
	return head
}

// AddHreflangLinks appends one alternate link per language, per full ISO tag
// and one x-default link. Nothing is added under the no_prefix strategy.
func (h *HeadEnricher) AddHreflangLinks(head *Head, route Route) {
	opts := h.router.opts
	if opts.Strategy == StrategyNoPrefix {
		return
	}
	baseURL := opts.ResolveBaseURL()

	var order []string
	byKey := make(map[string]Locale)
	set := func(key string, l Locale) {
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = l
	}

	for _, l := range opts.Locales {
		if l.ISO == "" {
			h.logger.Warn("locale ISO code is required to generate alternate link", "locale", l.Code)
			continue
		}
		language, region, _ := strings.Cut(l.ISO, "-")
		if language != "" && region != "" {
			if _, seen := byKey[language]; l.IsCatchall || !seen {
				set(language, l)
			}
		}
		set(l.ISO, l)
	}

	for _, hreflang := range order {
		path := h.router.SwitchLocalePath(byKey[hreflang].Code, route)
		if path == "" {
			continue
		}
		head.Link = append(head.Link, Link{
			ID:       "i18n-alt-" + hreflang,
			Rel:      "alternate",
			Href:     ToAbsoluteURL(path, baseURL),
			Hreflang: hreflang,
		})
	}

	if opts.DefaultLocale != "" {
		if path := h.router.SwitchLocalePath(opts.DefaultLocale, route); path != "" {
			head.Link = append(head.Link, Link{
				ID:       "i18n-xd",
				Rel:      "alternate",
				Href:     ToAbsoluteURL(path, baseURL),
				Hreflang: "x-default",
			})
		}
	}
}

// AddCanonicalLinksAndOgURL appends the canonical link and the og:url meta of
// route in locale current. Query parameters named in queries are kept.
func (h *HeadEnricher) AddCanonicalLinksAndOgURL(head *Head, route Route, current string, queries []string) {
	opts := h.router.opts
	canonical, ok := h.router.LocaleRoute(route, current)
	if !ok {
		return
	}
	href := ToAbsoluteURL(canonical.Path, opts.ResolveBaseURL())

	var pairs []string
	for _, name := range queries {
		values, ok := canonical.Query[name]
		if !ok {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, url.QueryEscape(name)+"="+url.QueryEscape(v))
		}
	}
	if len(pairs) > 0 {
		href += "?" + strings.Join(pairs, "&")
	}

	head.Link = append(head.Link, Link{ID: "i18n-can", Rel: "canonical", Href: href})
	head.Meta = append(head.Meta, Meta{ID: "i18n-og-url", Property: "og:url", Content: href})
}

// AddCurrentOgLocale appends the og:locale meta for the current ISO tag.
func (h *HeadEnricher) AddCurrentOgLocale(head *Head, currentISO string) {
	if currentISO == "" {
		return
	}
	head.Meta = append(head.Meta, Meta{
		ID:       "i18n-og",
		Property: "og:locale",
		Content:  HyphenToUnderscore(currentISO),
	})
}

// AddAlternateOgLocales appends og:locale:alternate metas for every other ISO tag.
func (h *HeadEnricher) AddAlternateOgLocales(head *Head, currentISO string) {
	others := lo.Filter(h.router.opts.Locales, func(l Locale, _ int) bool {
		return l.ISO != "" && l.ISO != currentISO
	})
	for _, l := range others {
		head.Meta = append(head.Meta, Meta{
			ID:       "i18n-og-alt-" + l.ISO,
			Property: "og:locale:alternate",
			Content:  HyphenToUnderscore(l.ISO),
		})
	}
}

// HyphenToUnderscore turns a BCP 47 tag into the language_TERRITORY form.
func HyphenToUnderscore(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// ToAbsoluteURL returns urlOrPath unchanged when it already has an http(s)
// scheme, and prefixed with baseURL otherwise.
func ToAbsoluteURL(urlOrPath, baseURL string) string {
	if absoluteURL.MatchString(urlOrPath) {
		return urlOrPath
	}
	return baseURL + urlOrPath
}
