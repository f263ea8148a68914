// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/assets"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/database"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/handlers"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/i18n"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/session"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/sse"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/state"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// Server is the assembled application.
type Server struct {
	Echo    *echo.Echo
	Engine  *locale.Engine
	Catalog *i18n.Catalog
	Store   state.Store
	Hub     *sse.Hub

	cfg    *config.Config
	db     *sqlx.DB
	logger *slog.Logger
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.NewFromCLI(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	logger.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"strategy", cfg.I18n.Strategy,
		"state", cfg.State.Backend,
	)

	srv, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			logger.Error("failed to close server resources", "error", closeErr)
		}
	}()

	pruneCtx, stopPruning := context.WithCancel(ctx)
	defer stopPruning()
	go pruneStates(pruneCtx, srv.Store, cfg.State.TTL, logger)

	return srv.startWithGracefulShutdown()
}

// New builds the application from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	store, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	s.Store = store

	opts := cfg.Options()
	catalog := newCatalog(opts, logger)
	s.Catalog = catalog

	engine, err := locale.New(opts, locale.Deps{
		Catalog: catalog,
		Store:   store,
		Logger:  logger,
		Hooks: locale.Hooks{
			Switched: func(ctx context.Context, oldLocale, newLocale string) {
				logger.DebugContext(ctx, "locale switched", "old", oldLocale, "new", newLocale)
			},
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("invalid locale options: %w", err)
	}
	s.Engine = engine

	if !engine.Options.Lazy {
		if loadErr := catalog.LoadAll(ctx); loadErr != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to load translations: %w", loadErr)
		}
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.Secure())
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s.Echo = e

	setupMiddleware(e, cfg, &localeRouting{
		engine:   engine,
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	})
	s.Hub = sse.NewHub()
	h := handlers.New(engine, s.Hub, logger)
	e.HTTPErrorHandler = h.HTTPErrorHandler
	setupRoutes(e, h)

	return s, nil
}

// Close releases the database, if one was opened.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Server) openStore(ctx context.Context) (state.Store, error) {
	switch s.cfg.State.Backend {
	case "", "memory":
		return state.NewMemoryStore(), nil
	case "sql":
		db, err := database.Open(ctx, s.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
		return state.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown state backend: %s", s.cfg.State.Backend)
	}
}

// newCatalog reads the embedded translations, overridden by message files
// found under the working directory.
func newCatalog(opts locale.Options, logger *slog.Logger) *i18n.Catalog {
	files := make(map[string][]string)
	for _, l := range opts.Locales {
		if len(l.Files) > 0 {
			files[l.Code] = l.Files
		}
	}
	return i18n.New(i18n.Config{
		DefaultLocale: opts.DefaultLocale,
		Locales:       opts.Locales,
		Fallbacks:     opts.FallbackLocales,
		Loaders:       []i18n.Loader{i18n.EmbeddedLoader(), i18n.FSLoader(os.DirFS("."), files)},
		Logger:        logger,
	})
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	// Static files
	e.GET(assets.Prefix+"*", echo.WrapHandler(http.StripPrefix("/static", assets.FileServer())))

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/about", h.About)
	e.GET("/head", h.Head)
	e.POST("/locale", h.SwitchLocale)
	e.POST("/locale/finalize", h.FinalizeLocale)
	e.GET("/events", h.Events)
}

func (s *Server) startWithGracefulShutdown() error {
	e := s.Echo
	cfg := s.cfg
	logger := s.logger

	tlsResult, err := SetupTLS(cfg, logger)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	// Channel for server errors
	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			logger.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			logger.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			logger.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-errChan:
		logger.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
