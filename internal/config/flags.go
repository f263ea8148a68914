// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

func sources(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(env), toml.TOML(key, configFile))
}

func Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: sources("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for absolute links in head metadata",
			Sources: sources("BASE_URL", "server.base_url"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: sources("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/locale.db",
			Usage:   "Database DSN",
			Sources: sources("DATABASE_DSN", "database.dsn"),
		},
		// TLS flags
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, acme, selfsigned, manual, off)",
			Sources: sources("TLS_MODE", "tls.mode"),
		},
		&cli.StringFlag{
			Name:    "tls-cert-dir",
			Value:   "./data/certs",
			Usage:   "Directory for auto-generated certificates",
			Sources: sources("TLS_CERT_DIR", "tls.cert_dir"),
		},
		&cli.StringFlag{
			Name:    "tls-email",
			Usage:   "Email for Let's Encrypt registration",
			Sources: sources("TLS_EMAIL", "tls.email"),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file (manual mode)",
			Sources: sources("TLS_CERT_FILE", "tls.cert_file"),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file (manual mode)",
			Sources: sources("TLS_KEY_FILE", "tls.key_file"),
		},
		// Session flags
		&cli.StringFlag{
			Name:    "session-cookie-name",
			Value:   "_session",
			Usage:   "Session cookie name",
			Sources: sources("SESSION_COOKIE_NAME", "session.cookie_name"),
		},
		&cli.IntFlag{
			Name:    "session-max-age",
			Value:   604800, // 7 days in seconds
			Usage:   "Session max age in seconds",
			Sources: sources("SESSION_MAX_AGE", "session.max_age"),
		},
		&cli.StringFlag{
			Name:    "session-hash-key",
			Usage:   "Session hash key (32-byte hex, auto-generated if empty in dev)",
			Sources: sources("SESSION_HASH_KEY", "session.hash_key"),
		},
		&cli.StringFlag{
			Name:    "session-block-key",
			Usage:   "Session block key for encryption (32-byte hex, optional)",
			Sources: sources("SESSION_BLOCK_KEY", "session.block_key"),
		},
		// Redirect state flags
		&cli.StringFlag{
			Name:    "state-backend",
			Value:   "memory",
			Usage:   "Redirect state storage (memory, sql)",
			Sources: sources("STATE_BACKEND", "state.backend"),
		},
		&cli.DurationFlag{
			Name:    "state-ttl",
			Value:   24 * time.Hour,
			Usage:   "Lifetime of stored cross-domain redirects",
			Sources: sources("STATE_TTL", "state.ttl"),
		},
	}
	return append(flags, i18nFlags()...)
}

func i18nFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "i18n-strategy",
			Value:   string(locale.StrategyPrefixExceptDefault),
			Usage:   "Routing strategy (prefix, prefix_and_default, prefix_except_default, no_prefix)",
			Sources: sources("I18N_STRATEGY", "i18n.strategy"),
		},
		&cli.StringFlag{
			Name:    "i18n-default-locale",
			Usage:   "Default locale code (defaults to the first locale)",
			Sources: sources("I18N_DEFAULT_LOCALE", "i18n.default_locale"),
		},
		&cli.StringSliceFlag{
			Name:    "i18n-locales",
			Value:   []string{"en", "de", "fr"},
			Usage:   "Locale codes, used when the config file has no [[i18n.locales]] tables",
			Sources: sources("I18N_LOCALES", "i18n.codes"),
		},
		&cli.BoolFlag{
			Name:    "i18n-different-domains",
			Usage:   "Serve every locale on its own domain",
			Sources: sources("I18N_DIFFERENT_DOMAINS", "i18n.different_domains"),
		},
		&cli.StringFlag{
			Name:    "i18n-root-redirect",
			Usage:   "Path the root URL redirects to",
			Sources: sources("I18N_ROOT_REDIRECT", "i18n.root_redirect.path"),
		},
		&cli.IntFlag{
			Name:    "i18n-root-redirect-status",
			Usage:   "Status code of the root redirect",
			Sources: sources("I18N_ROOT_REDIRECT_STATUS", "i18n.root_redirect.status_code"),
		},
		&cli.BoolFlag{
			Name:    "i18n-detect",
			Value:   true,
			Usage:   "Detect the browser language",
			Sources: sources("I18N_DETECT", "i18n.detect_browser_language.enabled"),
		},
		&cli.BoolFlag{
			Name:    "i18n-use-cookie",
			Value:   true,
			Usage:   "Remember the locale in a cookie",
			Sources: sources("I18N_USE_COOKIE", "i18n.detect_browser_language.use_cookie"),
		},
		&cli.StringFlag{
			Name:    "i18n-cookie-key",
			Value:   locale.DefaultCookieKey,
			Usage:   "Name of the locale cookie",
			Sources: sources("I18N_COOKIE_KEY", "i18n.detect_browser_language.cookie_key"),
		},
		&cli.StringFlag{
			Name:    "i18n-cookie-domain",
			Usage:   "Domain of the locale cookie",
			Sources: sources("I18N_COOKIE_DOMAIN", "i18n.detect_browser_language.cookie_domain"),
		},
		&cli.BoolFlag{
			Name:    "i18n-cookie-secure",
			Usage:   "Mark the locale cookie secure",
			Sources: sources("I18N_COOKIE_SECURE", "i18n.detect_browser_language.cookie_secure"),
		},
		&cli.BoolFlag{
			Name:    "i18n-cookie-cross-origin",
			Usage:   "Send the locale cookie on cross-origin requests (SameSite=None)",
			Sources: sources("I18N_COOKIE_CROSS_ORIGIN", "i18n.detect_browser_language.cookie_cross_origin"),
		},
		&cli.StringFlag{
			Name:    "i18n-redirect-on",
			Value:   string(locale.RedirectOnRoot),
			Usage:   "Where detection may redirect (root, no prefix, all)",
			Sources: sources("I18N_REDIRECT_ON", "i18n.detect_browser_language.redirect_on"),
		},
		&cli.BoolFlag{
			Name:    "i18n-always-redirect",
			Usage:   "Redirect to the detected locale on every visit",
			Sources: sources("I18N_ALWAYS_REDIRECT", "i18n.detect_browser_language.always_redirect"),
		},
		&cli.StringFlag{
			Name:    "i18n-fallback-locale",
			Usage:   "Locale used when detection finds no match",
			Sources: sources("I18N_FALLBACK_LOCALE", "i18n.detect_browser_language.fallback_locale"),
		},
		&cli.BoolFlag{
			Name:    "i18n-lazy",
			Usage:   "Load locale messages on first use",
			Sources: sources("I18N_LAZY", "i18n.lazy"),
		},
		&cli.BoolFlag{
			Name:    "i18n-skip-setting-locale-on-navigate",
			Usage:   "Defer locale switches on client navigation until finalized",
			Sources: sources("I18N_SKIP_SETTING_LOCALE_ON_NAVIGATE", "i18n.skip_setting_locale_on_navigate"),
		},
		&cli.BoolFlag{
			Name:    "i18n-trailing-slash",
			Usage:   "Generate paths with a trailing slash",
			Sources: sources("I18N_TRAILING_SLASH", "i18n.trailing_slash"),
		},
		&cli.IntFlag{
			Name:    "i18n-redirect-status",
			Value:   http.StatusFound,
			Usage:   "Status code of locale redirects",
			Sources: sources("I18N_REDIRECT_STATUS", "i18n.redirect_status_code"),
		},
		&cli.StringSliceFlag{
			Name:    "i18n-canonical-queries",
			Usage:   "Query parameters kept in canonical links",
			Sources: sources("I18N_CANONICAL_QUERIES", "i18n.canonical_queries"),
		},
	}
}
