// Package analysis defines the invocation contract between the region run
// driver and a spatial-analysis procedure: the per-region request the driver
// assembles, and the delta of results the procedure hands back for the
// workspace to accumulate.
package analysis

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/spawnsci/spawnrun/internal/config"
	"github.com/spawnsci/spawnrun/internal/refdata"
	"github.com/spawnsci/spawnrun/internal/spatial"
)

// Request carries everything a procedure needs for one region. The driver
// assembles it after validating the region's preconditions; procedures treat
// it as read-only.
type Request struct {
	Region       refdata.Region
	Unit         spatial.Unit
	Years        refdata.ReferenceYears
	Q            refdata.QTable
	Params       config.Parameters
	TransectPath string
}

// Table is a small named grid of results a procedure attaches to the
// workspace.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Delta is the per-region workspace mutation produced by one invocation.
type Delta struct {
	// Tables maps table names to result grids.
	Tables map[string]Table `json:"tables,omitempty"`
	// Notes are free-form observations surfaced in the snapshot.
	Notes []string `json:"notes,omitempty"`
	// Artifacts lists paths of files the procedure wrote outside the
	// snapshot (figures, intermediate tables).
	Artifacts []string `json:"artifacts,omitempty"`
}

// EvalContext exposes the request to a procedure's HCL arguments block, so
// argument expressions can reference the region and run parameters being
// processed.
func EvalContext(req *Request) *hcl.EvalContext {
	regionVal := cty.ObjectVal(map[string]cty.Value{
		"sar":   cty.NumberIntVal(int64(req.Region.SAR)),
		"code":  cty.StringVal(req.Region.Code),
		"name":  cty.StringVal(req.Region.Name),
		"major": cty.BoolVal(req.Region.Major),
	})

	threshold := cty.NullVal(cty.Number)
	if req.Params.SpawnIndexThreshold != nil {
		threshold = cty.NumberFloatVal(*req.Params.SpawnIndexThreshold)
	}
	paramsVal := cty.ObjectVal(map[string]cty.Value{
		"spawn_index_threshold": threshold,
		"min_consecutive_years": cty.NumberIntVal(int64(req.Params.MinConsecutiveYears)),
		"buffer_distance_m":     cty.NumberFloatVal(req.Params.BufferDistanceM),
		"intended_harvest_rate": cty.NumberFloatVal(req.Params.IntendedHarvestRate),
		"harvest_rate_from":     cty.NumberIntVal(int64(req.Params.HarvestRateFrom)),
		"plot_resolution_dpi":   cty.NumberIntVal(int64(req.Params.PlotResolutionDPI)),
		"animate":               cty.BoolVal(req.Params.Animate),
	})

	yearsVal := cty.ObjectVal(map[string]cty.Value{
		"start": cty.NumberIntVal(int64(req.Years.Start)),
		"end":   cty.NumberIntVal(int64(req.Years.End)),
	})

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"region":          regionVal,
			"params":          paramsVal,
			"reference_years": yearsVal,
			"spatial_unit":    cty.StringVal(req.Unit.String()),
		},
	}
}
