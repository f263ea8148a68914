// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Runtime is the locale state of one session or request.
type Runtime interface {
	Locale() string
	SetLocale(code string)
	SetLocaleCookie(code string)
	PendingLocale() *PendingLocale
	SetPendingLocale(p *PendingLocale)
}

// Catalog loads translation messages for locales.
type Catalog interface {
	// LoadLocale loads the messages of code and merges them into the catalog.
	LoadLocale(ctx context.Context, code string) error
	// FallbackLocaleCodes returns the fallback chain of code, without code.
	FallbackLocaleCodes(code string) []string
}

// Hooks run around a locale switch. Both are optional.
type Hooks struct {
	// BeforeSwitch may return a configured locale code to switch to
	// instead of newLocale, or "" to keep it.
	BeforeSwitch func(ctx context.Context, oldLocale, newLocale string, initial bool) string
	Switched     func(ctx context.Context, oldLocale, newLocale string)
}

// Switcher changes the active locale of a Runtime.
type Switcher struct {
	opts    *Options
	catalog Catalog
	hooks   Hooks
	logger  *slog.Logger
}

// NewSwitcher creates a Switcher. catalog may be nil when lazy loading is off.
func NewSwitcher(opts *Options, catalog Catalog, hooks Hooks, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{opts: opts, catalog: catalog, hooks: hooks, logger: logger}
}

// SwitchLocale makes newLocale the active locale of rt. It reports whether the
// locale changed, and the locale that was active before the call.
//
// Overlapping calls on the same Runtime are not serialized.
func (s *Switcher) SwitchLocale(ctx context.Context, rt Runtime, newLocale string, initial bool) (bool, string, error) {
	oldLocale := rt.Locale()
	s.logger.DebugContext(ctx, "switch locale", "new", newLocale, "old", oldLocale, "initial", initial)

	if newLocale == "" {
		return false, oldLocale, nil
	}
	if !initial && s.opts.DifferentDomains {
		return false, oldLocale, nil
	}
	if oldLocale == newLocale {
		return false, oldLocale, nil
	}

	if s.hooks.BeforeSwitch != nil {
		override := s.hooks.BeforeSwitch(ctx, oldLocale, newLocale, initial)
		if override != "" && slices.Contains(s.opts.LocaleCodes(), override) {
			if override == oldLocale {
				return false, oldLocale, nil
			}
			newLocale = override
		}
	}

	if s.opts.Lazy && s.catalog != nil {
		if err := s.loadMessages(ctx, newLocale); err != nil {
			return false, oldLocale, err
		}
	}

	if s.opts.SkipSettingLocaleOnNavigate {
		return false, oldLocale, nil
	}

	if s.opts.DetectBrowserLanguage.UseCookie {
		rt.SetLocaleCookie(newLocale)
	}
	rt.SetLocale(newLocale)

	if s.hooks.Switched != nil {
		s.hooks.Switched(ctx, oldLocale, newLocale)
	}

	return true, oldLocale, nil
}

// loadMessages loads every fallback locale concurrently, then the target.
func (s *Switcher) loadMessages(ctx context.Context, code string) error {
	fallbacks := s.catalog.FallbackLocaleCodes(code)
	g, gctx := errgroup.WithContext(ctx)
	for _, fb := range fallbacks {
		g.Go(func() error {
			if err := s.catalog.LoadLocale(gctx, fb); err != nil {
				return fmt.Errorf("load fallback locale %q: %w", fb, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.catalog.LoadLocale(ctx, code); err != nil {
		return fmt.Errorf("load locale %q: %w", code, err)
	}
	return nil
}

// FinalizePendingLocaleChange applies a deferred switch recorded on rt and
// releases everything waiting for it. It reports whether a switch was applied.
func FinalizePendingLocaleChange(rt Runtime, useCookie bool) bool {
	pending := rt.PendingLocale()
	if pending == nil {
		return false
	}
	if useCookie {
		rt.SetLocaleCookie(pending.Locale())
	}
	rt.SetLocale(pending.Locale())
	pending.Finalize()
	rt.SetPendingLocale(nil)
	return true
}
