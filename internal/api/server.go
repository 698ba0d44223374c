// Package api serves the water dashboard backend over HTTP: the metrics
// and stream endpoints, budget and ledger mutations, the simulation
// lifecycle, the chat assistant and an SSE change feed.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/aquameter-labs/aquameter/internal/engine"
	"github.com/aquameter-labs/aquameter/internal/series"
)

// Server is the HTTP server around the engine.
type Server struct {
	engine   *engine.Engine
	addr     string
	watch    bool
	dataPath string
	logger   *slog.Logger
	notifier *Notifier
}

// Config holds the server configuration.
type Config struct {
	Engine   *engine.Engine
	Addr     string
	Watch    bool
	DataPath string
	Logger   *slog.Logger
}

// NewServer creates a server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:   cfg.Engine,
		addr:     cfg.Addr,
		watch:    cfg.Watch,
		dataPath: cfg.DataPath,
		logger:   logger,
		notifier: NewNotifier(),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.dataPath != "" {
		eg.Go(func() error {
			return s.watchData(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the router with all endpoints and middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleRoot)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/stream", s.handleStream)
	r.Get("/recommendations", s.handleRecommendations)
	r.Get("/events", s.handleEvents)
	r.Get("/dashboard", s.handleDashboard)

	r.Post("/budget", s.handleSetBudget)
	r.Post("/limit/water", s.handleSetWaterLimit)
	r.Post("/usage/manual", s.handleAddManualUsage)
	r.Delete("/usage/manual/{date}", s.handleDeleteManualUsage)
	r.Post("/simulation/skip", s.handleSkip)
	r.Post("/simulation/resume", s.handleResume)
	r.Post("/chat", s.handleChat)

	return r
}

// Notifier returns the SSE notifier, for tests and embedding callers.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// watchData reloads the simulator when the usage CSV changes on disk.
// Events are debounced since editors fire several per save.
func (s *Server) watchData(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files by rename, which drops
	// watches registered on the file itself.
	if err := watcher.Add(filepath.Dir(s.dataPath)); err != nil {
		s.logger.Error("failed to watch data directory", "error", err)
		return nil
	}

	target := filepath.Base(s.dataPath)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("data file changed, reloading", "file", event.Name)

				data, err := series.Load(s.dataPath)
				if err != nil {
					s.logger.Error("reload failed", "error", err)
					return
				}
				s.engine.Reload(data)
				s.notifier.Broadcast()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
