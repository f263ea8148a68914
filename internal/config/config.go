// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"
)

// DefaultConfigFile is the TOML file flags and locale tables are read from.
const DefaultConfigFile = "config.toml"

var configFile = altsrc.StringSourcer(DefaultConfigFile)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	TLS      TLSConfig
	Session  SessionConfig
	State    StateConfig
	I18n     I18nConfig
}

type TLSConfig struct {
	Mode     string // auto, acme, selfsigned, manual, off
	CertDir  string // Directory for auto-generated certificates
	Email    string // ACME email for Let's Encrypt
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type SessionConfig struct { //nolint:govet // fieldalignment not critical
	CookieName string // Session cookie name
	MaxAge     int    // Session max age in seconds
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

type StateConfig struct {
	Backend string        // memory, sql
	TTL     time.Duration // redirect states older than this are pruned
}

type I18nConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Strategy      string
	DefaultLocale string
	// Codes is the plain locale list used when the config file has no
	// [[i18n.locales]] tables.
	Codes                       []string
	Locales                     []locale.Locale
	Fallbacks                   map[string][]string
	DifferentDomains            bool
	RootRedirect                string
	RootRedirectStatus          int
	Detect                      DetectConfig
	Lazy                        bool
	SkipSettingLocaleOnNavigate bool
	TrailingSlash               bool
	RedirectStatus              int
	CanonicalQueries            []string
}

type DetectConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Enabled           bool
	UseCookie         bool
	CookieKey         string
	CookieDomain      string
	CookieSecure      bool
	CookieCrossOrigin bool
	RedirectOn        string // root, no prefix, all
	AlwaysRedirect    bool
	FallbackLocale    string
}

// NewFromCLI builds the configuration from parsed flags and the locale
// tables of the config file.
func NewFromCLI(cmd *cli.Command) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        cmd.Int("port"),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: cmd.Int("max-body-size"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertDir:  cmd.String("tls-cert-dir"),
			Email:    cmd.String("tls-email"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		Session: SessionConfig{
			CookieName: cmd.String("session-cookie-name"),
			MaxAge:     cmd.Int("session-max-age"),
			HashKey:    cmd.String("session-hash-key"),
			BlockKey:   cmd.String("session-block-key"),
		},
		State: StateConfig{
			Backend: cmd.String("state-backend"),
			TTL:     cmd.Duration("state-ttl"),
		},
		I18n: I18nConfig{
			Strategy:           cmd.String("i18n-strategy"),
			DefaultLocale:      cmd.String("i18n-default-locale"),
			Codes:              cmd.StringSlice("i18n-locales"),
			DifferentDomains:   cmd.Bool("i18n-different-domains"),
			RootRedirect:       cmd.String("i18n-root-redirect"),
			RootRedirectStatus: cmd.Int("i18n-root-redirect-status"),
			Detect: DetectConfig{
				Enabled:           cmd.Bool("i18n-detect"),
				UseCookie:         cmd.Bool("i18n-use-cookie"),
				CookieKey:         cmd.String("i18n-cookie-key"),
				CookieDomain:      cmd.String("i18n-cookie-domain"),
				CookieSecure:      cmd.Bool("i18n-cookie-secure"),
				CookieCrossOrigin: cmd.Bool("i18n-cookie-cross-origin"),
				RedirectOn:        cmd.String("i18n-redirect-on"),
				AlwaysRedirect:    cmd.Bool("i18n-always-redirect"),
				FallbackLocale:    cmd.String("i18n-fallback-locale"),
			},
			Lazy:                        cmd.Bool("i18n-lazy"),
			SkipSettingLocaleOnNavigate: cmd.Bool("i18n-skip-setting-locale-on-navigate"),
			TrailingSlash:               cmd.Bool("i18n-trailing-slash"),
			RedirectStatus:              cmd.Int("i18n-redirect-status"),
			CanonicalQueries:            cmd.StringSlice("i18n-canonical-queries"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	file, err := LoadLocaleFile(DefaultConfigFile)
	if err != nil {
		return nil, err
	}
	applyLocaleFile(&cfg.I18n, file)

	return cfg, nil
}

// applyLocaleFile prefers the locale tables of the config file over the
// plain code list.
func applyLocaleFile(c *I18nConfig, file *LocaleFile) {
	if file != nil && len(file.I18n.Locales) > 0 {
		c.Locales = file.I18n.Locales
	} else {
		c.Locales = make([]locale.Locale, 0, len(c.Codes))
		for _, code := range c.Codes {
			if code = strings.TrimSpace(code); code != "" {
				c.Locales = append(c.Locales, locale.Locale{Code: code})
			}
		}
	}
	if file != nil {
		c.Fallbacks = file.I18n.Fallbacks
	}
	if c.DefaultLocale == "" && len(c.Locales) > 0 {
		c.DefaultLocale = c.Locales[0].Code
	}
}

// Options maps the configuration onto locale routing options.
func (c *Config) Options() locale.Options {
	in := c.I18n
	opts := locale.DefaultOptions()
	opts.Strategy = locale.Strategy(in.Strategy)
	opts.DefaultLocale = in.DefaultLocale
	opts.Locales = in.Locales
	opts.DifferentDomains = in.DifferentDomains
	if in.RootRedirect != "" {
		opts.RootRedirect = &locale.RootRedirect{Path: in.RootRedirect, StatusCode: in.RootRedirectStatus}
	}
	opts.DetectBrowserLanguage = locale.DetectBrowserLanguage{
		Enabled:           in.Detect.Enabled,
		UseCookie:         in.Detect.UseCookie,
		CookieKey:         in.Detect.CookieKey,
		CookieDomain:      in.Detect.CookieDomain,
		CookieSecure:      in.Detect.CookieSecure,
		CookieCrossOrigin: in.Detect.CookieCrossOrigin,
		RedirectOn:        in.Detect.RedirectOn,
		AlwaysRedirect:    in.Detect.AlwaysRedirect,
		FallbackLocale:    in.Detect.FallbackLocale,
	}
	opts.Lazy = in.Lazy
	opts.SkipSettingLocaleOnNavigate = in.SkipSettingLocaleOnNavigate
	opts.TrailingSlash = in.TrailingSlash
	opts.BaseURL = c.Server.BaseURL
	if in.RedirectStatus != 0 {
		opts.RedirectStatusCode = in.RedirectStatus
	}
	opts.FallbackLocales = in.Fallbacks
	opts.CanonicalQueries = in.CanonicalQueries
	return opts
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port
	mode := strings.ToLower(cfg.TLS.Mode)

	scheme := "http"
	if shouldUseTLS(mode, host) {
		scheme = "https"
	}

	// ACME mode always uses port 443
	if mode == "acme" {
		return fmt.Sprintf("https://%s", host)
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

func shouldUseTLS(mode, host string) bool {
	switch mode {
	case "off":
		return false
	case "acme", "selfsigned", "manual":
		return true
	default: // "auto" or empty
		return !IsLocalhost(host)
	}
}

// Secure reports whether the application is served over HTTPS.
func (c *Config) Secure() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}
