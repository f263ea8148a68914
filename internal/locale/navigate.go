// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package locale

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// RedirectStore keeps the last cross-domain redirect path per session. It
// guards against redirect loops between locale domains.
type RedirectStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, path string) error
	Clear(ctx context.Context, sessionID string) error
}

// Navigation is a redirect the host must perform.
type Navigation struct {
	Path   string
	Status int
	// Hard asks for a full page load instead of an in-app navigation.
	Hard bool
}

// NavigateFunc performs a navigation.
type NavigateFunc func(ctx context.Context, nav Navigation) error

// NavigateArgs are the inputs of one Navigate call.
type NavigateArgs struct {
	Runtime      Runtime
	RedirectPath string
	Locale       string
	Route        Route
	SessionID    string
	Client       bool
	Navigate     NavigateFunc
}

// NavigateOptions tune one Navigate call.
type NavigateOptions struct {
	Status         int  // defaults to the configured redirect status
	EnableNavigate bool // navigate right away even when the switch is deferred
}

// Navigator issues the redirects computed by the Planner.
type Navigator struct {
	opts   *Options
	store  RedirectStore
	logger *slog.Logger
}

// NewNavigator creates a Navigator. store may be nil when different-domains
// mode is off.
func NewNavigator(opts *Options, store RedirectStore, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{opts: opts, store: store, logger: logger}
}

// Navigate performs the navigation args call for, if any. It reports whether
// a navigation was issued.
func (n *Navigator) Navigate(ctx context.Context, args NavigateArgs, nopts NavigateOptions) (bool, error) {
	status := nopts.Status
	if status == 0 {
		status = n.opts.RedirectStatusCode
	}
	if status == 0 {
		status = http.StatusFound
	}
	redirectPath := args.RedirectPath

	if args.Route.Path == "/" && n.opts.RootRedirect != nil {
		redirectPath = "/" + n.opts.RootRedirect.Path
		status = n.opts.RootRedirect.StatusCode
		n.logger.DebugContext(ctx, "root redirect", "path", redirectPath, "status", status)
		return true, args.Navigate(ctx, Navigation{Path: redirectPath, Status: status})
	}

	if args.Client && n.opts.SkipSettingLocaleOnNavigate {
		if args.Runtime != nil {
			args.Runtime.SetPendingLocale(NewPendingLocale(args.Locale))
		}
		if !nopts.EnableNavigate {
			return false, nil
		}
	}

	if !n.opts.DifferentDomains {
		if redirectPath == "" {
			return false, nil
		}
		return true, args.Navigate(ctx, Navigation{Path: redirectPath, Status: status})
	}

	if n.store == nil {
		return false, nil
	}
	state, err := n.store.Get(ctx, args.SessionID)
	if err != nil {
		return false, fmt.Errorf("read redirect state: %w", err)
	}
	if state == redirectPath {
		return false, nil
	}
	if !args.Client {
		// The page rendering this request carries the target; the next
		// client navigation acts on it.
		if redirectPath == "" {
			return false, nil
		}
		n.logger.DebugContext(ctx, "store cross-domain redirect", "path", redirectPath)
		if err := n.store.Set(ctx, args.SessionID, redirectPath); err != nil {
			return false, fmt.Errorf("store redirect state: %w", err)
		}
		return false, nil
	}
	if state == "" {
		return false, nil
	}
	if err := n.store.Clear(ctx, args.SessionID); err != nil {
		return false, fmt.Errorf("clear redirect state: %w", err)
	}
	if redirectPath == "" {
		return false, nil
	}
	return true, args.Navigate(ctx, Navigation{Path: redirectPath, Status: status, Hard: true})
}
