// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale_test

import (
	"testing"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/stretchr/testify/assert"
)

func TestPlanner_Plan(t *testing.T) {
	from := func(path string) *locale.Route {
		r := route(path)
		return &r
	}

	tests := []struct {
		name   string
		mutate func(o *locale.Options)
		in     locale.RedirectInput
		want   string
	}{
		{
			name:   "prefix strategy moves to the target locale",
			mutate: func(o *locale.Options) { o.Strategy = locale.StrategyPrefix },
			in:     locale.RedirectInput{To: route("/fr/about"), TargetLocale: "en"},
			want:   "/en/about",
		},
		{
			name:   "coming from the target keeps the current route",
			mutate: func(o *locale.Options) { o.Strategy = locale.StrategyPrefix },
			in:     locale.RedirectInput{To: route("/fr/about"), From: from("/en/about"), TargetLocale: "en"},
			want:   "",
		},
		{
			name: "unrelated previous route",
			in:   locale.RedirectInput{To: route("/fr/about"), From: from("/contact"), TargetLocale: "en"},
			want: "/about",
		},
		{
			name: "locale already matches",
			in:   locale.RedirectInput{To: route("/fr/about"), TargetLocale: "fr"},
			want: "",
		},
		{
			name: "query is kept",
			in:   locale.RedirectInput{To: route("/about?page=2"), TargetLocale: "de"},
			want: "/de/about?page=2",
		},
		{
			name:   "no prefix never redirects",
			mutate: func(o *locale.Options) { o.Strategy = locale.StrategyNoPrefix },
			in:     locale.RedirectInput{To: route("/about"), TargetLocale: "fr", Direct: true},
			want:   "",
		},
		{
			name:   "static generation on the server",
			mutate: func(o *locale.Options) { o.StaticGeneration = true },
			in:     locale.RedirectInput{To: route("/fr/about"), TargetLocale: "de"},
			want:   "",
		},
		{
			name:   "static generation on the client",
			mutate: func(o *locale.Options) { o.StaticGeneration = true },
			in:     locale.RedirectInput{To: route("/fr/about"), TargetLocale: "de", Client: true},
			want:   "/de/about",
		},
		{
			name:   "different domains",
			mutate: func(o *locale.Options) { o.DifferentDomains = true },
			in: locale.RedirectInput{
				To:           locale.Route{Path: "/about", Host: "fr.example.com", Scheme: "https"},
				TargetLocale: "en",
			},
			want: "https://en.example.com/about",
		},
		{
			name:   "different domains on the right domain",
			mutate: func(o *locale.Options) { o.DifferentDomains = true },
			in: locale.RedirectInput{
				To:           locale.Route{Path: "/about", Host: "en.example.com", Scheme: "https"},
				TargetLocale: "en",
			},
			want: "",
		},
		{
			name: "unknown target locale",
			in:   locale.RedirectInput{To: route("/fr/about"), TargetLocale: "it"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.mutate)
			assert.Equal(t, tt.want, e.Planner.Plan(tt.in))
		})
	}
}
