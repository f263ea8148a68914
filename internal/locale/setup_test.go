// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale_test

import (
	"io"
	"log/slog"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine builds an engine over en (default), fr and de.
func newEngine(t *testing.T, mutate func(o *locale.Options)) *locale.Engine {
	t.Helper()
	return newEngineWithDeps(t, mutate, locale.Deps{})
}

func newEngineWithDeps(t *testing.T, mutate func(o *locale.Options), deps locale.Deps) *locale.Engine {
	t.Helper()
	opts := locale.DefaultOptions()
	opts.DefaultLocale = "en"
	opts.BaseURL = "https://example.com"
	opts.Locales = []locale.Locale{
		{Code: "en", ISO: "en-US", Domain: "en.example.com"},
		{Code: "fr", ISO: "fr-FR", Domain: "fr.example.com"},
		{Code: "de", ISO: "de-DE", Domain: "de.example.com"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	if deps.Logger == nil {
		deps.Logger = discardLogger()
	}
	e, err := locale.New(opts, deps)
	require.NoError(t, err)
	return e
}

func route(path string) locale.Route {
	r, _ := locale.ParseRoute(path)
	r.Scheme = "https"
	return r
}
