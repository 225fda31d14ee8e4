package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/reelpipego/internal/compose"
	"github.com/vk/reelpipego/internal/config"
	"github.com/vk/reelpipego/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	model    *config.Model
	registry *compose.Registry
}

// NewApp is the constructor for the main application. It builds an isolated
// logger, loads the profile through the given loader, and prepares the
// composer registry.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	logger.Debug("Profile loaded into unified model.", "units", len(model.Units))

	if cfg.TimeoutOverride > 0 {
		logger.Debug("Overriding profile step timeout.", "timeout", cfg.TimeoutOverride)
		model.Settings.StepTimeout = cfg.TimeoutOverride
	}

	return &App{
		outW:     outW,
		logger:   logger,
		model:    model,
		registry: compose.NewRegistry(),
	}, nil
}

// Registry returns the application's composer registry. This is primarily
// for testing.
func (a *App) Registry() *compose.Registry {
	return a.registry
}
