// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import "log/slog"

// Deps are the collaborators of an Engine.
type Deps struct {
	Catalog  Catalog
	Hooks    Hooks
	Store    RedirectStore
	Detector Detector // defaults to a BrowserDetector
	Logger   *slog.Logger
}

// Engine wires every locale routing component over one set of options.
type Engine struct {
	Options   *Options
	Router    *Router
	Resolver  *Resolver
	Planner   *Planner
	Navigator *Navigator
	Head      *HeadEnricher
	Switcher  *Switcher
}

// New normalizes opts and builds an Engine.
func New(opts Options, deps Deps) (*Engine, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	o := &normalized
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := NewRouter(o)
	detector := deps.Detector
	if detector == nil {
		detector = NewBrowserDetector(router)
	}

	return &Engine{
		Options:   o,
		Router:    router,
		Resolver:  NewResolver(router, detector),
		Planner:   NewPlanner(router),
		Navigator: NewNavigator(o, deps.Store, logger),
		Head:      NewHeadEnricher(router, logger),
		Switcher:  NewSwitcher(o, deps.Catalog, deps.Hooks, logger),
	}, nil
}
