// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/learnings/internal/api"
	"github.com/starford/learnings/internal/client"
	"github.com/starford/learnings/internal/journal"
	"github.com/starford/learnings/internal/mcpserver"
	"github.com/starford/learnings/internal/sse"
	"github.com/starford/learnings/internal/store"
	"github.com/starford/learnings/internal/web"
	pkgconfig "github.com/starford/learnings/pkg/config"
)

// newApplication applies opts and installs the JSON logger as default.
func newApplication(opts []Option) (*application, *slog.Logger, *slog.LevelVar, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}

	level := new(slog.LevelVar)
	level.Set(app.config.App.LogLevel)

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return app, logger, level, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, level, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("theme", cfg.Web.Theme),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(ctx, cfg.Store.Options())
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := journal.NewService(db, broker)

	ui, err := newUI(cfg, svc, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(db, svc, broker, ui),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never go idle; end them so Shutdown can drain.
	httpServer.RegisterOnShutdown(broker.Close)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// Hot-reload the log level when the config file changes.
	if app.configPath != "" {
		g.Go(func() error {
			err := pkgconfig.Watch(gCtx, app.configPath, logger, func() {
				reloadLogLevel(app.configPath, level, logger)
			})
			if err != nil {
				logger.Warn("config watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the remaining goroutines.
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout until ctx is cancelled or
// the client disconnects. Logs must not go to stdout here.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, _, err := newApplication(opts)
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, app.config.Store.Options())
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("store_driver", app.config.Store.Driver))

	srv := mcpserver.New(journal.NewService(db, nil), app.version)
	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Migrate applies pending schema migrations and exits.
func Migrate(ctx context.Context, opts ...Option) error {
	app, logger, _, err := newApplication(opts)
	if err != nil {
		return err
	}

	// Open migrates as part of connecting.
	db, err := store.Open(ctx, app.config.Store.Options())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer db.Close()

	logger.Info("Migrations applied", slog.String("store_driver", string(db.Dialect())))
	return nil
}

func newUI(cfg *Config, svc *journal.Service, logger *slog.Logger) (*web.Server, error) {
	theme, err := web.ParseTheme(cfg.Web.Theme)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Web.Location()
	if err != nil {
		return nil, fmt.Errorf("web timezone: %w", err)
	}
	ui, err := web.NewServer(client.Local(svc), web.Options{
		Title:    cfg.Web.Title,
		Theme:    theme,
		Location: loc,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init web: %w", err)
	}
	logger.Info("Web UI ready", slog.String("theme", string(theme)), slog.String("timezone", loc.String()))
	return ui, nil
}

// newRouter assembles middleware, health checks, the JSON API and the UI.
func newRouter(db *store.Store, svc *journal.Service, broker *sse.Broker, ui *web.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			slog.WarnContext(req.Context(), "readiness check failed", slog.String("error", err.Error()))
			writeHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(svc, broker))
	r.Mount("/", ui.Handler())

	return r
}

func writeHealth(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, state)
}

// reloadLogLevel re-reads the config file and applies its log level.
// Other settings take effect on restart.
func reloadLogLevel(path string, level *slog.LevelVar, logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		logger.Warn("config reload failed", slog.String("error", err.Error()))
		return
	}
	if cfg.App.LogLevel == level.Level() {
		return
	}
	level.Set(cfg.App.LogLevel)
	logger.Info("Log level changed", slog.String("log_level", cfg.App.LogLevel.String()))
}
