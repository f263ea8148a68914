// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCatalog struct {
	mu        sync.Mutex
	loaded    []string
	fallbacks map[string][]string
	fail      map[string]error
}

func (c *recordingCatalog) LoadLocale(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail[code]; err != nil {
		return err
	}
	c.loaded = append(c.loaded, code)
	return nil
}

func (c *recordingCatalog) FallbackLocaleCodes(code string) []string {
	return c.fallbacks[code]
}

func (c *recordingCatalog) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.loaded...)
}

func TestSwitchLocale_NoOps(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *locale.Options)
		target  string
		initial bool
	}{
		{"empty locale", nil, "", false},
		{"same locale", nil, "en", false},
		{"different domains after setup", func(o *locale.Options) { o.DifferentDomains = true }, "fr", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.mutate)
			rt := locale.NewMemoryRuntime("en")

			changed, old, err := e.Switcher.SwitchLocale(context.Background(), rt, tt.target, tt.initial)

			require.NoError(t, err)
			assert.False(t, changed)
			assert.Equal(t, "en", old)
			assert.Equal(t, "en", rt.Locale())
			assert.Empty(t, rt.Cookie())
		})
	}
}

func TestSwitchLocale_Idempotent(t *testing.T) {
	e := newEngine(t, nil)
	rt := locale.NewMemoryRuntime("en")

	changed, old, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "en", old)

	changed, old, err = e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "fr", old)
	assert.Equal(t, "fr", rt.Locale())
}

func TestSwitchLocale_InitialOnDifferentDomains(t *testing.T) {
	e := newEngine(t, func(o *locale.Options) { o.DifferentDomains = true })
	rt := locale.NewMemoryRuntime("en")

	changed, _, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", true)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "fr", rt.Locale())
}

func TestSwitchLocale_Hooks(t *testing.T) {
	tests := []struct {
		name        string
		override    string
		wantChanged bool
		wantLocale  string
	}{
		{"no override", "", true, "fr"},
		{"override to another locale", "de", true, "de"},
		{"override to the old locale", "en", false, "en"},
		{"unknown override is ignored", "it", true, "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var switched []string
			e := newEngineWithDeps(t, nil, locale.Deps{Hooks: locale.Hooks{
				BeforeSwitch: func(_ context.Context, oldLocale, newLocale string, initial bool) string {
					assert.Equal(t, "en", oldLocale)
					assert.Equal(t, "fr", newLocale)
					assert.False(t, initial)
					return tt.override
				},
				Switched: func(_ context.Context, oldLocale, newLocale string) {
					switched = append(switched, oldLocale+">"+newLocale)
				},
			}})
			rt := locale.NewMemoryRuntime("en")

			changed, old, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, "en", old)
			assert.Equal(t, tt.wantLocale, rt.Locale())
			if tt.wantChanged {
				assert.Equal(t, []string{"en>" + tt.wantLocale}, switched)
				assert.Equal(t, tt.wantLocale, rt.Cookie())
			} else {
				assert.Empty(t, switched)
			}
		})
	}
}

func TestSwitchLocale_LazyLoading(t *testing.T) {
	catalog := &recordingCatalog{fallbacks: map[string][]string{"fr": {"de", "en"}}}
	e := newEngineWithDeps(t, func(o *locale.Options) { o.Lazy = true }, locale.Deps{Catalog: catalog})
	rt := locale.NewMemoryRuntime("en")

	changed, _, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

	require.NoError(t, err)
	assert.True(t, changed)
	loaded := catalog.Loaded()
	require.Len(t, loaded, 3)
	assert.ElementsMatch(t, []string{"de", "en"}, loaded[:2])
	assert.Equal(t, "fr", loaded[2])
}

func TestSwitchLocale_LoadFailure(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		fail string
	}{
		{"fallback", "de"},
		{"target", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &recordingCatalog{
				fallbacks: map[string][]string{"fr": {"de"}},
				fail:      map[string]error{tt.fail: boom},
			}
			e := newEngineWithDeps(t, func(o *locale.Options) { o.Lazy = true }, locale.Deps{Catalog: catalog})
			rt := locale.NewMemoryRuntime("en")

			changed, _, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.False(t, changed)
			assert.Equal(t, "en", rt.Locale())
		})
	}
}

func TestSwitchLocale_NotLazy(t *testing.T) {
	catalog := &recordingCatalog{}
	e := newEngineWithDeps(t, nil, locale.Deps{Catalog: catalog})
	rt := locale.NewMemoryRuntime("en")

	_, _, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

	require.NoError(t, err)
	assert.Empty(t, catalog.Loaded())
}

func TestSwitchLocale_SkipSettingLocale(t *testing.T) {
	catalog := &recordingCatalog{}
	e := newEngineWithDeps(t, func(o *locale.Options) {
		o.Lazy = true
		o.SkipSettingLocaleOnNavigate = true
	}, locale.Deps{Catalog: catalog})
	rt := locale.NewMemoryRuntime("en")

	changed, old, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "en", old)
	assert.Equal(t, "en", rt.Locale())
	assert.Empty(t, rt.Cookie())
	assert.Equal(t, []string{"fr"}, catalog.Loaded())
}

func TestSwitchLocale_WithoutCookie(t *testing.T) {
	e := newEngine(t, func(o *locale.Options) { o.DetectBrowserLanguage.UseCookie = false })
	rt := locale.NewMemoryRuntime("en")

	changed, _, err := e.Switcher.SwitchLocale(context.Background(), rt, "fr", false)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, rt.Cookie())
}

func TestFinalizePendingLocaleChange(t *testing.T) {
	rt := locale.NewMemoryRuntime("en")
	assert.False(t, locale.FinalizePendingLocaleChange(rt, true))

	p := locale.NewPendingLocale("de")
	rt.SetPendingLocale(p)

	assert.True(t, locale.FinalizePendingLocaleChange(rt, true))
	assert.Equal(t, "de", rt.Locale())
	assert.Equal(t, "de", rt.Cookie())
	assert.Nil(t, rt.PendingLocale())
	assert.True(t, p.Finalized())

	assert.False(t, locale.FinalizePendingLocaleChange(rt, true))
}
