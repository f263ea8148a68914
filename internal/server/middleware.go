// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/ctxkeys"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// setupMiddleware registers the middleware chain. Locale routing rewrites
// the request path, so it and everything that must see its redirects run
// before routing.
func setupMiddleware(e *echo.Echo, cfg *config.Config, lr *localeRouting) {
	e.Pre(middleware.Recover())
	e.Pre(middleware.RequestID())
	e.Pre(requestLogger(lr.logger))
	e.Pre(trailingSlash(cfg.I18n.TrailingSlash))
	e.Pre(lr.middleware())

	e.Use(middleware.Secure())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		// Compressed event streams are buffered until the stream ends.
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/events"
		},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(staticCacheHeaders())
	e.Use(csrfMiddleware(cfg))
	e.Use(csrfToContext())
}

// trailingSlash redirects to the canonical form of the path: with a trailing
// slash when localized paths carry one, without otherwise.
func trailingSlash(keep bool) echo.MiddlewareFunc {
	cfg := middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			req := c.Request()
			return skipLocale(req.URL.Path) || !isPage(req)
		},
	}
	if keep {
		return middleware.AddTrailingSlashWithConfig(cfg)
	}
	return middleware.RemoveTrailingSlashWithConfig(cfg)
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   cfg.Secure(),
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), ctxkeys.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// requestLogger logs every request to logger, tagged with the locale the
// response was rendered in.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		LogHost:     true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("host", v.Host),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if lang := c.Response().Header().Get("Content-Language"); lang != "" {
				attrs = append(attrs, slog.String("locale", lang))
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				logger.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// staticCacheHeaders adds cache headers for static assets.
func staticCacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static/") {
				if isHashedAsset(path) {
					// Hashed assets get immutable caching
					c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				} else if strings.Contains(path, ".dev.") {
					// Dev assets never cache
					c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				}
			}
			return next(c)
		}
	}
}

// isHashedAsset checks if the path contains a hash pattern like .abc12345.
func isHashedAsset(path string) bool {
	// Match pattern: name.HASH.ext where HASH is 8 hex characters
	parts := strings.Split(path, ".")
	if len(parts) >= 3 {
		hash := parts[len(parts)-2]
		if len(hash) == 8 {
			for _, c := range hash {
				isDigit := c >= '0' && c <= '9'
				isHexLetter := c >= 'a' && c <= 'f'
				if !isDigit && !isHexLetter {
					return false
				}
			}
			return true
		}
	}
	return false
}
