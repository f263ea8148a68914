// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"fmt"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
)

const localeCookieMaxAge = 365 * 24 * time.Hour

// Runtime is the locale state of one request. The locale cookie is written to
// the response when it changes; the session cookie is written by Save.
type Runtime struct {
	w       http.ResponseWriter
	manager *Manager
	detect  locale.DetectBrowserLanguage

	locale       string
	cookieLocale string
	data         *Data
	pending      *locale.PendingLocale
	dirty        bool
	saved        bool
}

var _ locale.Runtime = (*Runtime)(nil)

// NewRuntime reads the session and locale cookies of r. A new session is
// started when r has none and ensureSession is set.
func NewRuntime(w http.ResponseWriter, r *http.Request, m *Manager, detect locale.DetectBrowserLanguage, ensureSession bool) (*Runtime, error) {
	data, err := m.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	rt := &Runtime{w: w, manager: m, detect: detect, data: data}
	if rt.data == nil {
		rt.data = &Data{}
		if ensureSession {
			rt.data = m.New()
			rt.dirty = true
		}
	}
	if c, err := r.Cookie(detect.CookieKey); err == nil {
		rt.cookieLocale = c.Value
	}
	if rt.data.PendingLocale != "" {
		rt.pending = locale.NewPendingLocale(rt.data.PendingLocale)
	}
	return rt, nil
}

// SessionID returns the id of the session, or "" when there is none.
func (rt *Runtime) SessionID() string {
	return rt.data.ID
}

// LocaleCookie returns the locale cookie value the request carried, or the
// value written during this request.
func (rt *Runtime) LocaleCookie() string {
	return rt.cookieLocale
}

func (rt *Runtime) Locale() string {
	return rt.locale
}

func (rt *Runtime) SetLocale(code string) {
	rt.locale = code
}

// SetLocaleCookie writes the locale cookie unless it already holds code.
func (rt *Runtime) SetLocaleCookie(code string) {
	if code == rt.cookieLocale {
		return
	}
	rt.cookieLocale = code
	http.SetCookie(rt.w, LocaleCookie(rt.detect, code))
}

func (rt *Runtime) PendingLocale() *locale.PendingLocale {
	return rt.pending
}

func (rt *Runtime) SetPendingLocale(p *locale.PendingLocale) {
	rt.pending = p
	rt.data.PendingLocale = ""
	if p != nil {
		rt.data.PendingLocale = p.Locale()
	}
	rt.dirty = true
}

// Save writes the session cookie when the session changed. It must run
// before the response header is written and only writes once.
func (rt *Runtime) Save() error {
	if !rt.dirty || rt.saved {
		return nil
	}
	cookie, err := rt.manager.Create(rt.data)
	if err != nil {
		return err
	}
	http.SetCookie(rt.w, cookie)
	rt.saved = true
	return nil
}

// LocaleCookie builds the cookie that remembers the chosen locale.
func LocaleCookie(detect locale.DetectBrowserLanguage, code string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     detect.CookieKey,
		Value:    code,
		Path:     "/",
		Domain:   detect.CookieDomain,
		MaxAge:   int(localeCookieMaxAge.Seconds()),
		Secure:   detect.CookieSecure || detect.CookieCrossOrigin,
		SameSite: http.SameSiteLaxMode,
	}
	if detect.CookieCrossOrigin {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
