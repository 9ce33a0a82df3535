// Package spawnindex is the built-in spatial-analysis procedure. It loads
// the dive-transect spreadsheet, restricts it to the requested region, and
// attaches a per-region survey summary to the workspace. The spawn-index
// biomass computation itself is performed by external tooling downstream of
// the snapshot; this procedure covers the survey-coverage portion the driver
// is responsible for triggering.
package spawnindex

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spawnsci/spawnrun/internal/analysis"
	"github.com/spawnsci/spawnrun/internal/ctxlog"
	"github.com/spawnsci/spawnrun/internal/registry"
	"github.com/spawnsci/spawnrun/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the spawnindex procedure. Column names
// default to the survey spreadsheet's conventional headers.
type Input struct {
	RegionColumn string `hcl:"region_column,optional"`
	YearColumn   string `hcl:"year_column,optional"`
	LatColumn    string `hcl:"lat_column,optional"`
	LongColumn   string `hcl:"long_column,optional"`
}

func (in *Input) applyDefaults() {
	if in.RegionColumn == "" {
		in.RegionColumn = "Region"
	}
	if in.YearColumn == "" {
		in.YearColumn = "Year"
	}
	if in.LatColumn == "" {
		in.LatColumn = "Latitude"
	}
	if in.LongColumn == "" {
		in.LongColumn = "Longitude"
	}
}

// transect is one dive-transect row after column resolution.
type transect struct {
	region string
	year   int
}

// OnRunSpawnIndex is the handler for the spawnindex procedure.
func OnRunSpawnIndex(ctx context.Context, req *analysis.Request, input any) (*analysis.Delta, error) {
	logger := ctxlog.FromContext(ctx).With("region", req.Region.Code)

	in := input.(*Input)
	in.applyDefaults()

	if req.TransectPath == "" {
		return nil, fmt.Errorf("spawnindex: transect_path is not configured")
	}

	transects, err := loadTransects(req.TransectPath, in)
	if err != nil {
		return nil, err
	}

	// Region "All" aggregates the whole coast; everything else filters to
	// the region's own transects.
	var selected []transect
	for _, tr := range transects {
		if req.Region.Code == "All" || tr.region == req.Region.Code {
			selected = append(selected, tr)
		}
	}
	logger.Info("Transects selected.", "total", len(transects), "selected", len(selected), "spatialUnit", req.Unit.String())

	delta := &analysis.Delta{
		Tables: map[string]analysis.Table{
			"survey_summary": summarize(req, selected),
		},
	}

	delta.Notes = append(delta.Notes, fmt.Sprintf(
		"surveyed area buffered by %g m at the %s level", req.Params.BufferDistanceM, req.Unit))
	if len(req.Q.Rows) > 0 {
		delta.Notes = append(delta.Notes, fmt.Sprintf(
			"%d catchability parameter rows passed through for downstream conversion", len(req.Q.Rows)))
	}
	if req.Params.Animate {
		// Animated rendering is owned by external tooling and is expensive;
		// the flag only gates whether downstream rendering is requested.
		logger.Info("Animated output requested; deferring to external renderer.")
		delta.Notes = append(delta.Notes, "animated output requested")
	}

	return delta, nil
}

// summarize builds the per-region survey summary table.
func summarize(req *analysis.Request, selected []transect) analysis.Table {
	firstYear, lastYear := 0, 0
	inWindow := make(map[int]struct{})
	for _, tr := range selected {
		if firstYear == 0 || tr.year < firstYear {
			firstYear = tr.year
		}
		if tr.year > lastYear {
			lastYear = tr.year
		}
		if tr.year >= req.Years.Start && tr.year <= req.Years.End {
			inWindow[tr.year] = struct{}{}
		}
	}

	yearSpan := ""
	if firstYear > 0 {
		yearSpan = report.YearWindow(firstYear, lastYear)
	}

	return analysis.Table{
		Columns: []string{"Region", "SpatialUnit", "Transects", "SurveyYears", "YearsInReferenceWindow"},
		Rows: [][]string{{
			req.Region.Code,
			req.Unit.String(),
			strconv.Itoa(len(selected)),
			yearSpan,
			strconv.Itoa(len(inWindow)),
		}},
	}
}

// loadTransects reads the dive-transect spreadsheet and resolves the
// configured columns. Latitude and longitude must parse as floats even
// though only presence matters here; a bad coordinate is a bad row.
func loadTransects(path string, in *Input) ([]transect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spawnindex: opening transect file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("spawnindex: reading transect file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("spawnindex: transect file %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{in.RegionColumn, in.YearColumn, in.LatColumn, in.LongColumn} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("spawnindex: transect file %s has no column %q", path, required)
		}
	}

	transects := make([]transect, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		year, err := strconv.Atoi(rec[col[in.YearColumn]])
		if err != nil {
			return nil, fmt.Errorf("spawnindex: transect file %s line %d: year %q is not an integer", path, line, rec[col[in.YearColumn]])
		}
		if _, err := strconv.ParseFloat(rec[col[in.LatColumn]], 64); err != nil {
			return nil, fmt.Errorf("spawnindex: transect file %s line %d: bad latitude %q", path, line, rec[col[in.LatColumn]])
		}
		if _, err := strconv.ParseFloat(rec[col[in.LongColumn]], 64); err != nil {
			return nil, fmt.Errorf("spawnindex: transect file %s line %d: bad longitude %q", path, line, rec[col[in.LongColumn]])
		}
		transects = append(transects, transect{region: rec[col[in.RegionColumn]], year: year})
	}
	return transects, nil
}

// Register registers the procedure with the driver.
func (m *Module) Register(r *registry.Registry) {
	r.Register("spawnindex", &registry.RegisteredAnalysis{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSpawnIndex,
	})
}
