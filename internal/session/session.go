// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session keeps a signed session cookie that identifies the browser
// and carries a deferred locale switch between requests.
package session

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

var (
	ErrInvalidHashKey  = errors.New("invalid session hash key")
	ErrInvalidBlockKey = errors.New("invalid session block key")
)

// Data is the content of the session cookie.
type Data struct {
	ID string `json:"id"`
	// PendingLocale is a locale switch waiting to be finalized.
	PendingLocale string    `json:"pending_locale,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Manager encodes and decodes session cookies.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a Manager. An empty hash key is replaced by a random
// one, which invalidates sessions on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHashKey, err)
	}
	if hashKey == nil {
		hashKey = securecookie.GenerateRandomKey(keyLength)
	}

	blockKey, err := decodeKey(cfg.BlockKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBlockKey, err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, err
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("must be %d bytes, got %d", keyLength, len(key))
	}
	return key, nil
}

// New returns fresh session data with a random id.
func (m *Manager) New() *Data {
	return &Data{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}
}

// Create encodes data into a session cookie. Data without an id gets one.
func (m *Manager) Create(data *Data) (*http.Cookie, error) {
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	if data.ExpiresAt.IsZero() {
		data.ExpiresAt = time.Now().Add(time.Duration(m.maxAge) * time.Second)
	}
	value, err := m.codec.Encode(m.name, data)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return m.cookie(value, m.maxAge), nil
}

// Parse returns the session of r, or nil when the request has no valid,
// unexpired session cookie.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data Data
	if err := m.codec.Decode(m.name, cookie.Value, &data); err != nil {
		// tampered, expired or signed with another key
		return nil, nil
	}
	if data.ID == "" || time.Now().After(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
