package app

import (
	"context"
	"fmt"

	"github.com/spawnsci/spawnrun/internal/analysis"
	"github.com/spawnsci/spawnrun/internal/ctxlog"
	"github.com/spawnsci/spawnrun/internal/report"
	"github.com/spawnsci/spawnrun/internal/spatial"
	"github.com/spawnsci/spawnrun/internal/workspace"
)

// Run executes the region run pipeline: process each selected region in
// order, then persist the workspace snapshot. Any region failure halts the
// run before the next region is attempted; completed regions' side effects
// are not rolled back, but no snapshot is written for a failed run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	regions := a.model.Run.Regions
	if len(regions) == 0 {
		a.logger.Warn("No regions selected; persisting an empty snapshot.")
	} else {
		a.logger.Info("Starting region run.",
			"regions", report.List(regions),
			"procedure", a.model.Analysis.Procedure,
			"intendedHarvestRate", report.Percent(a.model.Parameters.IntendedHarvestRate))
	}

	ws := workspace.New(a.model.Analysis.Procedure, *a.model.Parameters, a.tables)

	for i, code := range regions {
		a.logger.Info("Processing region.", "region", code, "position", fmt.Sprintf("%d of %d", i+1, len(regions)))
		if err := a.runRegion(ctx, ws, code); err != nil {
			return fmt.Errorf("region %s: %w", code, err)
		}
	}

	if err := ws.Write(a.model.Run.SnapshotPath); err != nil {
		return err
	}
	a.logger.Info("Workspace snapshot persisted.", "path", a.model.Run.SnapshotPath, "runID", ws.RunID, "regions", len(ws.Regions))
	return nil
}

// runRegion validates one region's preconditions, invokes the analysis
// procedure, and folds the result into the workspace.
func (a *App) runRegion(ctx context.Context, ws *workspace.Workspace, code string) error {
	// Reference years first: a region with no reference window must fail
	// before any other resolution happens.
	years, err := a.tables.ReferenceYearsFor(code)
	if err != nil {
		return err
	}

	unit, err := spatial.ResolveUnit(code)
	if err != nil {
		return err
	}

	region, ok := a.tables.Region(code)
	if !ok {
		return &spatial.UnknownRegionError{Code: code}
	}

	a.logger.Info("Running spatial analysis.",
		"region", region.Name,
		"spatialUnit", unit.String(),
		"referenceYears", report.YearWindow(years.Start, years.End),
		"major", region.Major)

	req := &analysis.Request{
		Region:       region,
		Unit:         unit,
		Years:        years,
		Q:            a.tables.Q,
		Params:       *a.model.Parameters,
		TransectPath: a.model.Run.TransectPath,
	}

	delta, err := a.registry.Invoke(ctx, a.model.Analysis.Procedure, req, a.model.Analysis.Arguments)
	if err != nil {
		return err
	}

	ws.Apply(region, unit, years, delta)
	return nil
}
