// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/state"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "localhost", Port: 8080, BaseURL: "http://localhost:8080", MaxBodySize: 1},
		Database: config.DatabaseConfig{DSN: ":memory:"},
		Session:  config.SessionConfig{CookieName: "_session", MaxAge: 3600, HashKey: testutil.HashKey},
		State:    config.StateConfig{Backend: backend, TTL: time.Hour},
		I18n: config.I18nConfig{
			Strategy:      string(locale.StrategyPrefixExceptDefault),
			DefaultLocale: "en",
			Locales: []locale.Locale{
				{Code: "en", ISO: "en-US", Name: "English"},
				{Code: "de", ISO: "de-DE", Name: "Deutsch"},
			},
			Detect: config.DetectConfig{
				Enabled:   true,
				UseCookie: true,
				CookieKey: locale.DefaultCookieKey,
			},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		sql     bool
	}{
		{"memory", false},
		{"", false},
		{"sql", true},
	}

	for _, tt := range tests {
		t.Run("backend "+tt.backend, func(t *testing.T) {
			srv, err := New(context.Background(), testConfig(tt.backend), testutil.Logger())
			require.NoError(t, err)
			t.Cleanup(func() {
				assert.NoError(t, srv.Close())
			})

			_, isSQL := srv.Store.(*state.SQLStore)
			assert.Equal(t, tt.sql, isSQL)
			assert.True(t, srv.Catalog.Loaded("de"))
			assert.Equal(t, "en", srv.Engine.Options.DefaultLocale)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig("redis"), testutil.Logger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state backend")
}

func TestNew_InvalidLocales(t *testing.T) {
	cfg := testConfig("memory")
	cfg.I18n.Strategy = "everywhere"

	_, err := New(context.Background(), cfg, testutil.Logger())

	require.ErrorIs(t, err, locale.ErrUnknownStrategy)
}

func TestNew_ServesLocalizedPages(t *testing.T) {
	srv, err := New(context.Background(), testConfig("memory"), testutil.Logger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/de", nil)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "de-DE", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "<h1>Willkommen</h1>")
}

func TestClose_WithoutDatabase(t *testing.T) {
	srv := &Server{}

	assert.NoError(t, srv.Close())
}
