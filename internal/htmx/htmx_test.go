// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/htmx"
	"github.com/stretchr/testify/assert"
)

func TestParseRequest_AllHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Boosted", "true")
	req.Header.Set("HX-Current-URL", "http://example.com/page")
	req.Header.Set("HX-History-Restore-Request", "true")
	req.Header.Set("HX-Target", "target-id")
	req.Header.Set("HX-Trigger", "trigger-id")

	parsed := htmx.ParseRequest(req)

	assert.True(t, parsed.IsHtmx)
	assert.True(t, parsed.IsBoosted)
	assert.Equal(t, "http://example.com/page", parsed.CurrentURL)
	assert.True(t, parsed.IsHistoryRestore)
	assert.Equal(t, "target-id", parsed.Target)
	assert.Equal(t, "trigger-id", parsed.Trigger)
}

func TestClientNavigation(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"plain request", nil, false},
		{"htmx request", map[string]string{"HX-Request": "true"}, true},
		{"boosted without htmx header", map[string]string{"HX-Boosted": "true"}, false},
		{"history restore", map[string]string{"HX-Request": "true", "HX-History-Restore-Request": "true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, htmx.ParseRequest(req).ClientNavigation())
		})
	}
}

func TestPreviousURL(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, ""},
		{"current url", map[string]string{"HX-Current-URL": "http://example.com/fr/about", "Referer": "http://example.com/"}, "http://example.com/fr/about"},
		{"same host referer", map[string]string{"Referer": "http://example.com/de"}, "http://example.com/de"},
		{"foreign referer", map[string]string{"Referer": "http://other.example/de"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, htmx.PreviousURL(req))
		})
	}
}

func TestRedirect(t *testing.T) {
	t.Run("regular request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		htmx.Redirect(rec, req, "/fr", http.StatusMovedPermanently, true)

		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/fr", rec.Header().Get("Location"))
	})

	t.Run("htmx hard navigation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()

		htmx.Redirect(rec, req, "https://fr.example.com/", http.StatusFound, true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://fr.example.com/", rec.Header().Get("HX-Redirect"))
		assert.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("htmx in-page navigation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()

		htmx.Redirect(rec, req, "/fr", http.StatusFound, false)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/fr", rec.Header().Get("HX-Location"))
	})
}
