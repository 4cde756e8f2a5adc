// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/metas/internal/api"
	"github.com/starford/metas/internal/goalservice"
	"github.com/starford/metas/internal/goalstore"
	"github.com/starford/metas/internal/mcpserver"
	"github.com/starford/metas/internal/metrics"
	"github.com/starford/metas/internal/sse"
	"github.com/starford/metas/internal/storage"
	"github.com/starford/metas/internal/suggest"
	"github.com/starford/metas/internal/watch"
)

// sqliteFile is the database file created under storage.path.
const sqliteFile = "metas.db"

// core is what both the HTTP server and the MCP server run on.
type core struct {
	store   *goalstore.Store
	file    string // collection file, empty unless the backend is file based
	closeFn func() error
}

func (c *core) Close() error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// openStore opens the configured storage backend and the goal store on top.
func openStore(cfg StorageConfig, logger *slog.Logger) (*core, error) {
	c := &core{}
	var provider storage.Provider

	switch cfg.Driver {
	case StorageMemory:
		provider = storage.NewMemory()

	case StorageSQLite:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := storage.OpenSQLite(filepath.Join(cfg.Path, sqliteFile))
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		provider = db
		c.closeFn = db.Close

	default:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		fsys, err := storage.NewFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		provider = fsys
	}

	if loc, ok := provider.(storage.Locator); ok {
		file, err := loc.Location(cfg.Key)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		c.file = file
	}

	c.store = goalstore.New(provider, goalstore.WithKey(cfg.Key), goalstore.WithLogger(logger))
	return c, nil
}

func (a *application) newSuggester(ctx context.Context, logger *slog.Logger) suggest.Provider {
	if a.suggester != nil {
		return a.suggester
	}
	cfg := a.config.AI
	if !cfg.Enabled() {
		logger.Info("AI suggestions disabled: no api key configured")
		return suggest.Disabled{}
	}
	p, err := suggest.NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	if err != nil {
		logger.Warn("AI suggestions disabled", slog.String("error", err.Error()))
		return suggest.Disabled{}
	}
	return p
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.Bool("ai_enabled", cfg.AI.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := openStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	svc := goalservice.NewService(c.store,
		goalservice.WithSuggester(app.newSuggester(ctx, logger)),
		goalservice.WithNotifier(broker),
		goalservice.WithLogger(logger),
	)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health and metrics are unauthenticated.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Events.Watch && c.file != "" {
		g.Go(func() error {
			err := watch.Watch(gCtx, c.file, c.store, watch.DefaultDebounce, logger, broker.PublishExternalChange)
			if err != nil {
				logger.Warn("watcher not running", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// SSE streams only end when their clients go away; close them first.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	c, err := openStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	svc := goalservice.NewService(c.store,
		goalservice.WithSuggester(app.newSuggester(ctx, logger)),
		goalservice.WithLogger(logger),
	)

	logger.Info("MCP server starting", slog.String("storage_driver", cfg.Storage.Driver))
	return mcpserver.New(svc, app.version).ServeStdio()
}
