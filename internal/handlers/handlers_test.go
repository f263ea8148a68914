// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/handlers"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/state"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRoute(t *testing.T, raw string) locale.Route {
	t.Helper()
	r, ok := locale.ParseRoute(raw)
	require.True(t, ok)
	r.Scheme = "https"
	return r
}

func postLocale(code string) (*http.Request, *httptest.ResponseRecorder) {
	form := url.Values{"locale": {code}}
	req := httptest.NewRequest(http.MethodPost, "/locale", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req, httptest.NewRecorder()
}

func TestHealth(t *testing.T) {
	h := handlers.New(nil, nil, nil)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	err := h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPages(t *testing.T) {
	engine := testutil.NewEngine(t, nil, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	h := handlers.New(engine, nil, nil)

	tests := []struct {
		name     string
		handler  echo.HandlerFunc
		locale   string
		path     string
		contains []string
	}{
		{
			name:    "home in english",
			handler: h.Home,
			locale:  "en",
			path:    "/",
			contains: []string{
				"<!doctype html>",
				`<html lang="en-US"`,
				"<h1>Welcome</h1>",
				"2 pages",
				`<link hid="i18n-alt-fr-FR" rel="alternate" href="https://example.com/fr" hreflang="fr-FR">`,
				`<link hid="i18n-can" rel="canonical" href="https://example.com/">`,
				`<meta hid="i18n-og" property="og:locale" content="en_US">`,
			},
		},
		{
			name:    "about in german",
			handler: h.About,
			locale:  "de",
			path:    "/de/about",
			contains: []string{
				`<html lang="de-DE"`,
				"<title>Über uns",
				`href="/de/about"`,
				`<link hid="i18n-xd" rel="alternate" href="https://example.com/about" hreflang="x-default">`,
				`<meta hid="i18n-og-alt-fr-FR" property="og:locale:alternate" content="fr_FR">`,
			},
		},
		{
			name:    "about in french falls back for missing messages",
			handler: h.About,
			locale:  "fr",
			path:    "/fr/about",
			contains: []string{
				`<html lang="fr-FR"`,
				"The favourite colour of this site is blue.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := testutil.NewEchoContext(e, http.MethodGet, tt.path, nil)
			testutil.WithLocale(c, engine, catalog, locale.NewMemoryRuntime(tt.locale), parseRoute(t, tt.path))

			require.NoError(t, tt.handler(c))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.locale, rec.Header().Get("Content-Language"))
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestHome_WithoutLocaleHelpers(t *testing.T) {
	h := handlers.New(testutil.NewEngine(t, nil, locale.Deps{}), nil, nil)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)

	require.NoError(t, h.Home(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>home_title</h1>")
	assert.NotContains(t, rec.Body.String(), "hreflang")
	assert.NotContains(t, rec.Body.String(), `rel="canonical"`)
	assert.Empty(t, rec.Header().Get("Content-Language"))
}

func TestSwitchLocale(t *testing.T) {
	engine := testutil.NewEngine(t, nil, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	h := handlers.New(engine, nil, nil)

	t.Run("redirects to the current page in the new locale", func(t *testing.T) {
		e := echo.New()
		req, rec := postLocale("de")
		c := e.NewContext(req, rec)
		rt := locale.NewMemoryRuntime("fr")
		testutil.WithLocale(c, engine, catalog, rt, parseRoute(t, "/fr/about?page=2"))

		require.NoError(t, h.SwitchLocale(c))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/de/about?page=2", rec.Header().Get("Location"))
		assert.Equal(t, "de", rt.Locale())
		assert.Equal(t, "de", rt.Cookie())
	})

	t.Run("htmx request gets HX-Location", func(t *testing.T) {
		e := echo.New()
		req, rec := postLocale("en")
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set("HX-Request", "true")
		c := e.NewContext(req, rec)
		testutil.WithLocale(c, engine, catalog, locale.NewMemoryRuntime("fr"), parseRoute(t, "/fr/about"))

		require.NoError(t, h.SwitchLocale(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/about", rec.Header().Get("HX-Location"))
	})

	t.Run("unknown locale", func(t *testing.T) {
		e := echo.New()
		req, rec := postLocale("it")
		c := e.NewContext(req, rec)
		testutil.WithLocale(c, engine, catalog, locale.NewMemoryRuntime("en"), parseRoute(t, "/"))

		err := h.SwitchLocale(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("without locale helpers", func(t *testing.T) {
		e := echo.New()
		req, rec := postLocale("de")
		c := e.NewContext(req, rec)

		err := h.SwitchLocale(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})
}

func TestSwitchLocale_DifferentDomains(t *testing.T) {
	engine := testutil.NewEngine(t, func(o *locale.Options) {
		o.DifferentDomains = true
	}, locale.Deps{Store: state.NewMemoryStore()})
	catalog := testutil.NewCatalog(t, engine)
	h := handlers.New(engine, nil, nil)

	e := echo.New()
	req, rec := postLocale("fr")
	req.Header.Set("HX-Request", "true")
	c := e.NewContext(req, rec)
	rt := locale.NewMemoryRuntime("en")
	route := parseRoute(t, "/about")
	route.Host = "en.example.com"
	testutil.WithLocale(c, engine, catalog, rt, route)

	require.NoError(t, h.SwitchLocale(c))

	assert.Equal(t, "https://fr.example.com/about", rec.Header().Get("HX-Redirect"))
	assert.Equal(t, "en", rt.Locale(), "the other domain sets its own locale")
}

func TestSwitchLocale_Deferred(t *testing.T) {
	engine := testutil.NewEngine(t, func(o *locale.Options) {
		o.SkipSettingLocaleOnNavigate = true
	}, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	h := handlers.New(engine, nil, nil)

	e := echo.New()
	req, rec := postLocale("de")
	c := e.NewContext(req, rec)
	rt := locale.NewMemoryRuntime("en")
	testutil.WithLocale(c, engine, catalog, rt, parseRoute(t, "/about"))

	require.NoError(t, h.SwitchLocale(c))

	assert.Equal(t, "/de/about", rec.Header().Get("Location"))
	assert.Equal(t, "en", rt.Locale())
	require.NotNil(t, rt.PendingLocale())
	assert.Equal(t, "de", rt.PendingLocale().Locale())

	t.Run("finalize applies the pending locale", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/locale/finalize", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		testutil.WithLocale(c, engine, catalog, rt, parseRoute(t, "/de/about"))

		require.NoError(t, h.FinalizeLocale(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"finalized":true,"locale":"de"}`, rec.Body.String())
		assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
		assert.Equal(t, "de", rt.Locale())
		assert.Nil(t, rt.PendingLocale())
	})

	t.Run("finalize without pending locale", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/locale/finalize", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		testutil.WithLocale(c, engine, catalog, rt, parseRoute(t, "/de/about"))

		require.NoError(t, h.FinalizeLocale(c))

		assert.JSONEq(t, `{"finalized":false,"locale":"de"}`, rec.Body.String())
		assert.Empty(t, rec.Header().Get("HX-Refresh"))
	})
}

func TestHead(t *testing.T) {
	engine := testutil.NewEngine(t, func(o *locale.Options) {
		o.CanonicalQueries = []string{"page"}
	}, locale.Deps{})
	h := handlers.New(engine, nil, nil)

	t.Run("locale from path", func(t *testing.T) {
		e := echo.New()
		c, rec := testutil.NewEchoContext(e, http.MethodGet, "/head?path="+url.QueryEscape("/fr/about?page=2&sort=asc"), nil)

		require.NoError(t, h.Head(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var head locale.Head
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &head))
		assert.Equal(t, "fr-FR", head.HTMLAttrs.Lang)
		assert.Equal(t, "hid", head.IdentifierAttribute)
		assert.Contains(t, head.Link, locale.Link{ID: "i18n-can", Rel: "canonical", Href: "https://example.com/fr/about?page=2"})
		assert.Contains(t, head.Meta, locale.Meta{ID: "i18n-og", Property: "og:locale", Content: "fr_FR"})
	})

	t.Run("locale parameter", func(t *testing.T) {
		e := echo.New()
		c, rec := testutil.NewEchoContext(e, http.MethodGet, "/head?path=/about&locale=de", nil)

		require.NoError(t, h.Head(c))

		var head locale.Head
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &head))
		assert.Equal(t, "de-DE", head.HTMLAttrs.Lang)
		assert.Contains(t, head.Link, locale.Link{ID: "i18n-can", Rel: "canonical", Href: "https://example.com/de/about"})
	})

	t.Run("unknown locale", func(t *testing.T) {
		e := echo.New()
		c, _ := testutil.NewEchoContext(e, http.MethodGet, "/head?path=/about&locale=it", nil)

		err := h.Head(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestHTTPErrorHandler(t *testing.T) {
	engine := testutil.NewEngine(t, nil, locale.Deps{})
	catalog := testutil.NewCatalog(t, engine)
	h := handlers.New(engine, nil, nil)

	tests := []struct {
		name     string
		method   string
		accept   string
		err      error
		code     int
		contains string
	}{
		{"localized not found page", http.MethodGet, "text/html,application/xhtml+xml", echo.ErrNotFound, http.StatusNotFound, "<p>Diese Seite existiert nicht.</p>"},
		{"localized forbidden page", http.MethodGet, "text/html", echo.NewHTTPError(http.StatusForbidden, "invalid csrf token"), http.StatusForbidden, "<p>Diese Anfrage ist nicht erlaubt.</p>"},
		{"generic error page", http.MethodGet, "text/html", errors.New("boom"), http.StatusInternalServerError, "<p>Etwas ist schiefgelaufen.</p>"},
		{"json error", http.MethodPost, "application/json", echo.NewHTTPError(http.StatusBadRequest, "unknown locale"), http.StatusBadRequest, `{"error":"unknown locale"}`},
		{"json without message", http.MethodGet, "", echo.ErrNotFound, http.StatusNotFound, `{"error":"Not Found"}`},
		{"head request", http.MethodHead, "text/html", echo.ErrNotFound, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := testutil.NewEchoContextWithHeaders(e, tt.method, "/de/missing", nil, map[string]string{echo.HeaderAccept: tt.accept})
			testutil.WithLocale(c, engine, catalog, locale.NewMemoryRuntime("de"), parseRoute(t, "/de/missing"))

			h.HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			if tt.contains == "" {
				assert.Empty(t, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestHTTPErrorHandler_Committed(t *testing.T) {
	h := handlers.New(nil, nil, nil)
	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/", nil)
	require.NoError(t, c.String(http.StatusOK, "done"))

	h.HTTPErrorHandler(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
