// Package workspace holds the state accumulated over a region run: the run
// parameters, the loaded reference tables, and the per-region results the
// analysis procedure attaches. The workspace is an explicit accumulator
// passed through the run loop and serialized wholesale at the end.
package workspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/spawnsci/spawnrun/internal/analysis"
	"github.com/spawnsci/spawnrun/internal/config"
	"github.com/spawnsci/spawnrun/internal/refdata"
	"github.com/spawnsci/spawnrun/internal/spatial"
)

// Workspace is the in-memory run state. Regions preserve processing order.
type Workspace struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	Procedure  string            `json:"procedure"`
	Parameters config.Parameters `json:"parameters"`
	Tables     *refdata.Tables   `json:"tables"`
	Regions    []RegionResult    `json:"regions"`
}

// RegionResult is the accumulated outcome for one processed region.
type RegionResult struct {
	Code      string                    `json:"code"`
	Unit      string                    `json:"unit"`
	Years     refdata.ReferenceYears    `json:"years"`
	Tables    map[string]analysis.Table `json:"tables,omitempty"`
	Notes     []string                  `json:"notes,omitempty"`
	Artifacts []string                  `json:"artifacts,omitempty"`
}

// New creates a workspace for one run. The run ID is a fresh UUID stamped
// into the snapshot for traceability.
func New(procedure string, params config.Parameters, tables *refdata.Tables) *Workspace {
	return &Workspace{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Procedure:  procedure,
		Parameters: params,
		Tables:     tables,
		Regions:    []RegionResult{},
	}
}

// Apply records the completed result for one region, in processing order.
// Duplicate region codes append a second result rather than merging.
func (w *Workspace) Apply(region refdata.Region, unit spatial.Unit, years refdata.ReferenceYears, delta *analysis.Delta) {
	result := RegionResult{
		Code:  region.Code,
		Unit:  unit.String(),
		Years: years,
	}
	if delta != nil {
		result.Tables = delta.Tables
		result.Notes = delta.Notes
		result.Artifacts = delta.Artifacts
	}
	w.Regions = append(w.Regions, result)
}
