// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidOptions(t *testing.T) {
	opts := locale.DefaultOptions()
	opts.DefaultLocale = "fr"

	_, err := locale.New(opts, locale.Deps{})

	assert.ErrorIs(t, err, locale.ErrUnknownDefaultLocale)
}

func TestHelpers(t *testing.T) {
	e := newEngine(t, nil)
	rt := locale.NewMemoryRuntime("fr")
	h := e.NewHelpers(rt, locale.Route{Name: "about___fr", Path: "/fr/about", Scheme: "https"})

	assert.Same(t, rt, h.I18n())
	assert.Equal(t, "fr", h.Locale())
	assert.Len(t, h.Locales(), 3)
	assert.Equal(t, "about", h.RouteBaseName())
	assert.Equal(t, "/fr/contact", h.LocalePath("/contact", ""))
	assert.Equal(t, "/contact", h.LocalePath("/contact", "en"))
	assert.Equal(t, "/de/about", h.SwitchLocalePath("de"))

	r, ok := h.LocaleRoute("/contact?x=1", "")
	require.True(t, ok)
	assert.Equal(t, "/fr/contact", r.Path)
	assert.Equal(t, "1", r.Query.Get("x"))

	head := h.LocaleHead(locale.HeadOptions{AddSEOAttributes: true})
	assert.Equal(t, "fr-FR", head.HTMLAttrs.Lang)

	rt.SetPendingLocale(locale.NewPendingLocale("de"))
	assert.True(t, h.FinalizePendingLocaleChange())
	assert.Equal(t, "de", h.Locale())
}

func TestHelpersContext(t *testing.T) {
	e := newEngine(t, nil)
	h := e.NewHelpers(locale.NewMemoryRuntime("en"), route("/"))

	_, ok := locale.HelpersFrom(context.Background())
	assert.False(t, ok)

	got, ok := locale.HelpersFrom(locale.WithHelpers(context.Background(), h))
	require.True(t, ok)
	assert.Same(t, h, got)
}
