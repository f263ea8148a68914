// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// DefaultFallbackKey is the fallback chain applied to every locale.
const DefaultFallbackKey = "default"

// Config configures a Catalog.
type Config struct {
	DefaultLocale string
	Locales       []locale.Locale
	// Fallbacks maps a locale code to the codes tried after it. The chain
	// under DefaultFallbackKey applies to every locale.
	Fallbacks map[string][]string
	Loaders   []Loader
	Logger    *slog.Logger
}

// Catalog holds the translation messages of every locale. Each locale gets its
// own go-i18n bundle, rebuilt whenever its messages change.
type Catalog struct {
	defaultLocale string
	fallbacks     map[string][]string
	loaders       []Loader
	logger        *slog.Logger
	tags          map[string]language.Tag
	byTag         map[string]string

	mu       sync.RWMutex
	messages map[string]map[string]*i18n.Message
	bundles  map[string]*i18n.Bundle
	loaded   map[string]bool
}

var _ locale.Catalog = (*Catalog)(nil)

// New creates an empty Catalog. Messages are added by LoadLocale, LoadAll or
// SetLocaleMessage.
func New(cfg Config) *Catalog {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		defaultLocale: cfg.DefaultLocale,
		fallbacks:     cfg.Fallbacks,
		loaders:       cfg.Loaders,
		logger:        logger,
		tags:          make(map[string]language.Tag, len(cfg.Locales)),
		byTag:         make(map[string]string, len(cfg.Locales)),
		messages:      make(map[string]map[string]*i18n.Message),
		bundles:       make(map[string]*i18n.Bundle),
		loaded:        make(map[string]bool),
	}
	for _, l := range cfg.Locales {
		if tag, err := language.Parse(l.Code); err == nil {
			c.byTag[tag.String()] = l.Code
		}
		value := l.ISO
		if value == "" {
			value = l.Code
		}
		tag, err := language.Parse(value)
		if err != nil {
			logger.Warn("locale is not a valid language tag", "locale", l.Code, "value", value)
			continue
		}
		c.tags[l.Code] = tag
	}
	return c
}

// Codes returns the locale codes that currently have messages.
func (c *Catalog) Codes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.messages))
}

// LoadAll loads every configured locale.
func (c *Catalog) LoadAll(ctx context.Context) error {
	for _, code := range slices.Sorted(maps.Keys(c.tags)) {
		if err := c.LoadLocale(ctx, code); err != nil {
			return err
		}
	}
	return nil
}

// LoadLocale runs every loader for code and merges the results. A locale is
// loaded once; later calls return immediately.
func (c *Catalog) LoadLocale(ctx context.Context, code string) error {
	c.mu.RLock()
	done := c.loaded[code]
	c.mu.RUnlock()
	if done {
		return nil
	}

	var messages []*i18n.Message
	for _, load := range c.loaders {
		msgs, err := load(ctx, code)
		if err != nil {
			return fmt.Errorf("load messages for %q: %w", code, err)
		}
		messages = append(messages, msgs...)
	}

	if err := c.MergeLocaleMessage(code, messages...); err != nil {
		return err
	}

	c.mu.Lock()
	c.loaded[code] = true
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "loaded locale messages", "locale", code, "count", len(messages))
	return nil
}

// Loaded reports whether LoadLocale completed for code.
func (c *Catalog) Loaded(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[code]
}

// SetLocaleMessage replaces all messages of code.
func (c *Catalog) SetLocaleMessage(code string, messages ...*i18n.Message) error {
	return c.update(code, messages, true)
}

// MergeLocaleMessage adds messages to code, overriding messages with the same id.
func (c *Catalog) MergeLocaleMessage(code string, messages ...*i18n.Message) error {
	return c.update(code, messages, false)
}

func (c *Catalog) update(code string, messages []*i18n.Message, replace bool) error {
	tag, err := c.tagFor(code)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.messages[code]
	next := make(map[string]*i18n.Message, len(current)+len(messages))
	if !replace {
		maps.Copy(next, current)
	}
	for _, m := range messages {
		if m == nil || m.ID == "" {
			continue
		}
		next[m.ID] = m
	}

	bundle := i18n.NewBundle(tag)
	if err := bundle.AddMessages(tag, slices.Collect(maps.Values(next))...); err != nil {
		return fmt.Errorf("add messages for %q: %w", code, err)
	}
	c.messages[code] = next
	c.bundles[code] = bundle
	return nil
}

func (c *Catalog) tagFor(code string) (language.Tag, error) {
	if tag, ok := c.tags[code]; ok {
		return tag, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", code, err)
	}
	return tag, nil
}

// FallbackLocaleCodes returns the codes tried after code: its configured
// chain, its configured parent locales, the default chain and the default
// locale. The result has no duplicates and never contains code.
func (c *Catalog) FallbackLocaleCodes(code string) []string {
	var chain []string
	chain = append(chain, c.fallbacks[code]...)
	for _, parent := range parentChain(code) {
		if known, ok := c.byTag[parent]; ok {
			chain = append(chain, known)
		}
	}
	chain = append(chain, c.fallbacks[DefaultFallbackKey]...)
	if c.defaultLocale != "" {
		chain = append(chain, c.defaultLocale)
	}
	return lo.Without(lo.Uniq(chain), code, "")
}

// parentChain returns the parent tags of code, closest first.
func parentChain(code string) []string {
	tag, err := language.Parse(code)
	if err != nil {
		return nil
	}
	var chain []string
	seen := make(map[string]struct{}, 4)
	for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
		value := parent.String()
		if _, ok := seen[value]; ok {
			break
		}
		seen[value] = struct{}{}
		chain = append(chain, value)
	}
	return chain
}

// Localizer returns a localizer for code and its fallback chain.
func (c *Catalog) Localizer(code string) *Localizer {
	return &Localizer{
		catalog: c,
		locale:  code,
		chain:   append([]string{code}, c.FallbackLocaleCodes(code)...),
	}
}

func (c *Catalog) bundle(code string) *i18n.Bundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bundles[code]
}

// Localizer translates messages for one locale, walking its fallback chain
// when a message is missing.
type Localizer struct {
	catalog *Catalog
	locale  string
	chain   []string
}

// Locale returns the code the localizer was created for.
func (l *Localizer) Locale() string {
	return l.locale
}

// Localize returns the first translation of lc found along the chain.
func (l *Localizer) Localize(lc *i18n.LocalizeConfig) (string, error) {
	var lastErr error
	for _, code := range l.chain {
		bundle := l.catalog.bundle(code)
		if bundle == nil {
			continue
		}
		tag := bundle.LanguageTags()[0]
		msg, err := i18n.NewLocalizer(bundle, tag.String()).Localize(lc)
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) || (err != nil && msg == "") {
			lastErr = err
			continue
		}
		return msg, nil
	}
	if lastErr == nil {
		lastErr = &i18n.MessageNotFoundErr{Tag: language.Und, MessageID: lc.MessageID}
	}
	return "", lastErr
}
