// Package commands implements the Aquameter subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aquameter-labs/aquameter/internal/cli/output"
	"github.com/aquameter-labs/aquameter/internal/config"
	"github.com/aquameter-labs/aquameter/internal/engine"
	"github.com/aquameter-labs/aquameter/internal/series"
	"github.com/aquameter-labs/aquameter/internal/sim"
	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

type configKey struct{}
type loggerKey struct{}
type rendererKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the context, falling back to
// defaults when the root command did not run.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		DataPath:     config.DefaultDataPath,
		DatabasePath: config.DefaultDatabasePath,
		ListenAddr:   config.DefaultListenAddr,
		Output:       config.DefaultOutput,
	}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithRenderer stores the renderer in the context.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// GetRenderer retrieves the renderer from the context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeText)
}

// openEngine builds an engine over the configured database and usage
// CSV. A missing CSV is not fatal since entry management and manual
// reports work without simulation data.
func openEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	dbDir := filepath.Dir(cfg.DatabasePath)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	var data series.Series
	if _, statErr := os.Stat(cfg.DataPath); statErr == nil {
		data, err = series.Load(cfg.DataPath)
		if err != nil {
			_ = st.Close()
			return nil, nil, err
		}
	}

	eng, err := engine.New(st, sim.New(data, tariff.Default()), tariff.Default(), logger)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = st.Close() }
	return eng, cleanup, nil
}
