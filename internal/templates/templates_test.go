// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates_test

import (
	"context"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/assets"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/ctxkeys"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/templates"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/testutil"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(ctx, &sb))
	return sb.String()
}

func localeContext(t *testing.T, code, path string) context.Context {
	t.Helper()
	engine := testutil.NewEngine(t, nil, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	route, ok := locale.ParseRoute(path)
	require.True(t, ok)
	ctx := locale.WithHelpers(context.Background(), engine.NewHelpers(locale.NewMemoryRuntime(code), route))
	ctx = i18n.WithLocalizer(ctx, catalog.Localizer(code))
	return context.WithValue(ctx, ctxkeys.CSRFToken{}, "token-123")
}

func TestHeadTags(t *testing.T) {
	head := locale.Head{
		IdentifierAttribute: "data-hid",
		Link: []locale.Link{
			{ID: "i18n-alt-fr", Rel: "alternate", Href: "https://example.com/fr?a=1&b=2", Hreflang: "fr"},
			{ID: "i18n-can", Rel: "canonical", Href: "https://example.com/"},
		},
		Meta: []locale.Meta{
			{ID: "i18n-og", Property: "og:locale", Content: "en_US"},
		},
	}

	out := render(t, context.Background(), templates.HeadTags(head))

	assert.Equal(t,
		`<link data-hid="i18n-alt-fr" rel="alternate" href="https://example.com/fr?a=1&amp;b=2" hreflang="fr">`+
			`<link data-hid="i18n-can" rel="canonical" href="https://example.com/">`+
			`<meta data-hid="i18n-og" property="og:locale" content="en_US">`,
		out)
}

func TestHeadTags_DefaultIdentifier(t *testing.T) {
	head := locale.Head{Meta: []locale.Meta{{ID: "i18n-og", Property: "og:locale", Content: "de_DE"}}}

	out := render(t, context.Background(), templates.HeadTags(head))

	assert.Contains(t, out, `<meta hid="i18n-og"`)
}

func TestHeadTags_UnsafeURL(t *testing.T) {
	head := locale.Head{Link: []locale.Link{{ID: "x", Rel: "canonical", Href: "javascript:alert(1)"}}}

	out := render(t, context.Background(), templates.HeadTags(head))

	assert.NotContains(t, out, "javascript:")
}

func TestLanguageSwitcher(t *testing.T) {
	ctx := localeContext(t, "fr", "/fr/about")

	out := render(t, ctx, templates.LanguageSwitcher())

	assert.Contains(t, out, `<a href="/about" hreflang="en-US" data-locale="en">English</a>`)
	assert.Contains(t, out, `<a href="/fr/about" hreflang="fr-FR" data-locale="fr" aria-current="true">Français</a>`)
	assert.Contains(t, out, `<a href="/de/about" hreflang="de-DE" data-locale="de">Deutsch</a>`)
	assert.Contains(t, out, `<option value="fr" selected>Français</option>`)
	assert.Contains(t, out, `<input type="hidden" name="csrf_token" value="token-123">`)
	assert.Contains(t, out, "Appliquer la langue")
}

func TestLanguageSwitcher_WithoutHelpers(t *testing.T) {
	out := render(t, context.Background(), templates.LanguageSwitcher())

	assert.Empty(t, out)
}

func TestLayout(t *testing.T) {
	ctx := localeContext(t, "de", "/de")
	head := locale.Head{HTMLAttrs: locale.HTMLAttrs{Lang: "de-DE", Dir: "ltr"}}

	out := render(t, ctx, templates.Layout("Willkommen", head, templates.Home()))

	assert.True(t, strings.HasPrefix(out, `<!doctype html><html lang="de-DE" dir="ltr">`))
	assert.Contains(t, out, "<title>Willkommen | Sprachrouting</title>")
	assert.Contains(t, out, `<a href="/de">Start</a>`)
	assert.Contains(t, out, `<a href="/de/about">Über uns</a>`)
	assert.Contains(t, out, "<h1>Willkommen</h1>")
	assert.Contains(t, out, "2 Seiten")
	assert.Contains(t, out, `<script src="`+assets.JSPath()+`" defer></script>`)
	assert.Contains(t, out, `<link rel="stylesheet" href="`+assets.CSSPath()+`">`)
	assert.Contains(t, out, `<meta name="csrf-token" content="token-123">`)
	assert.Contains(t, out, "<main><h1>Willkommen</h1>")
}

func TestLayout_PendingLocale(t *testing.T) {
	engine := testutil.NewEngine(t, nil, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	rt := locale.NewMemoryRuntime("en")
	rt.SetPendingLocale(locale.NewPendingLocale("de"))
	ctx := locale.WithHelpers(context.Background(), engine.NewHelpers(rt, locale.Route{Path: "/de"}))
	ctx = i18n.WithLocalizer(ctx, catalog.Localizer("en"))

	out := render(t, ctx, templates.Layout("x", locale.Head{}, nil))

	assert.Contains(t, out, `<main data-pending-locale="de">`)
	assert.NotContains(t, out, "csrf-token")
}

func TestLayout_LangFallsBackToLocalizer(t *testing.T) {
	ctx := localeContext(t, "fr", "/fr")

	out := render(t, ctx, templates.Layout("x", locale.Head{}, nil))

	assert.Contains(t, out, `<html lang="fr">`)
}

func TestLanguageSwitcher_ListsEveryLocale(t *testing.T) {
	ctx := localeContext(t, "en", "/")

	out := render(t, ctx, templates.LanguageSwitcher())

	assert.Equal(t, 3, strings.Count(out, "<li>"))
	assert.Equal(t, 3, strings.Count(out, "<option "))
}

func TestErrorPage(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"not found", 404, "<h1>404</h1><p>Diese Seite existiert nicht.</p>"},
		{"forbidden", 403, "<h1>403</h1><p>Diese Anfrage ist nicht erlaubt.</p>"},
		{"other status", 500, "<h1>500</h1><p>Etwas ist schiefgelaufen.</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, localeContext(t, "de", "/de"), templates.ErrorPage(tt.code))

			assert.Equal(t, tt.want, out)
		})
	}
}

func TestLocalePath(t *testing.T) {
	assert.Equal(t, "/about", templates.LocalePath(context.Background(), "/about"))
	assert.Equal(t, "/de/about", templates.LocalePath(localeContext(t, "de", "/de"), "/about"))
}
