// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

import (
	"context"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

type localizerContextKey struct{}

// WithLocalizer adds the localizer to the context.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, localizerContextKey{}, l)
}

// LocalizerFrom returns the localizer stored in ctx, or nil.
func LocalizerFrom(ctx context.Context) *Localizer {
	l, _ := ctx.Value(localizerContextKey{}).(*Localizer)
	return l
}

// GetLocale returns the current locale from context.
func GetLocale(ctx context.Context) string {
	if l := LocalizerFrom(ctx); l != nil {
		return l.Locale()
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID})
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
}

// TPlural translates a message with plural support.
func TPlural(ctx context.Context, messageID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func localize(ctx context.Context, lc *i18n.LocalizeConfig) string {
	l := LocalizerFrom(ctx)
	if l == nil {
		return lc.MessageID
	}
	msg, err := l.Localize(lc)
	if err != nil {
		return lc.MessageID
	}
	return msg
}
