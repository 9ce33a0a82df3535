package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spawnsci/spawnrun/internal/config"
	"github.com/spawnsci/spawnrun/internal/ctxlog"
	"github.com/spawnsci/spawnrun/internal/refdata"
	"github.com/spawnsci/spawnrun/internal/registry"
)

// App encapsulates the driver's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	tables   *refdata.Tables
}

// NewApp is the constructor for the driver. It returns a fully initialized
// App with its own isolated logger, registry, and loaded reference tables.
// Configuration and reference-table failures are fatal startup errors and
// panic; main recovers them into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.RunPath)
	if err != nil {
		panic(fmt.Errorf("failed to load run configuration: %w", err))
	}
	logger.Debug("Run configuration loaded.")

	// CLI overrides take precedence over the run file.
	if appConfig.Regions != nil {
		model.Run.Regions = appConfig.Regions
	}
	if appConfig.SnapshotPath != "" {
		model.Run.SnapshotPath = appConfig.SnapshotPath
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Analysis modules registered.", "count", len(modules))

	if err := reg.Validate(model.Analysis.Procedure); err != nil {
		// A configured procedure with no compiled handler is a mismatch
		// between run file and binary, so fail at startup.
		panic(err)
	}

	tables, err := refdata.Load(ctx, refdata.Sources{
		ReferenceYearsPath: model.Run.ReferenceYearsPath,
		QParamsPath:        model.Run.QParamsPath,
	})
	if err != nil {
		panic(fmt.Errorf("failed to load reference tables: %w", err))
	}
	logger.Debug("Reference tables loaded.",
		"regions", len(tables.Regions), "referenceYears", len(tables.ReferenceYears), "qRows", len(tables.Q.Rows))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		tables:   tables,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded run configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
