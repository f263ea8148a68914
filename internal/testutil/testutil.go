// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/database"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// HashKey is a valid 32-byte hex-encoded session key for tests.
const HashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB creates a migrated in-memory SQLite database for tests.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// Options returns locale options for en (default), fr and de served under
// https://example.com.
func Options() locale.Options {
	opts := locale.DefaultOptions()
	opts.DefaultLocale = "en"
	opts.BaseURL = "https://example.com"
	opts.Locales = []locale.Locale{
		{Code: "en", ISO: "en-US", Name: "English", Domain: "en.example.com"},
		{Code: "fr", ISO: "fr-FR", Name: "Français", Domain: "fr.example.com"},
		{Code: "de", ISO: "de-DE", Name: "Deutsch", Domain: "de.example.com"},
	}
	return opts
}

// NewEngine builds a locale engine over Options, changed by mutate.
func NewEngine(t *testing.T, mutate func(o *locale.Options), deps locale.Deps) *locale.Engine {
	t.Helper()
	opts := Options()
	if mutate != nil {
		mutate(&opts)
	}
	if deps.Logger == nil {
		deps.Logger = Logger()
	}
	engine, err := locale.New(opts, deps)
	require.NoError(t, err)
	return engine
}

// NewCatalog returns a catalog with the embedded translations of the
// engine's locales loaded.
func NewCatalog(t *testing.T, engine *locale.Engine) *i18n.Catalog {
	t.Helper()
	catalog := i18n.New(i18n.Config{
		DefaultLocale: engine.Options.DefaultLocale,
		Locales:       engine.Options.Locales,
		Fallbacks:     engine.Options.FallbackLocales,
		Loaders:       []i18n.Loader{i18n.EmbeddedLoader()},
		Logger:        Logger(),
	})
	require.NoError(t, catalog.LoadAll(context.Background()))
	return catalog
}

// NewSessionManager returns a session manager with a fixed key.
func NewSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    HashKey,
	}, false)
	require.NoError(t, err)
	return mgr
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	return NewEchoContextWithHeaders(e, method, path, body, nil)
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// WithLocale binds c to locale helpers over rt and route and a localizer for
// rt's locale, the way the locale middleware does.
func WithLocale(c echo.Context, engine *locale.Engine, catalog *i18n.Catalog, rt locale.Runtime, route locale.Route) {
	ctx := locale.WithHelpers(c.Request().Context(), engine.NewHelpers(rt, route))
	ctx = i18n.WithLocalizer(ctx, catalog.Localizer(rt.Locale()))
	c.SetRequest(c.Request().WithContext(ctx))
}
