package config

import "github.com/hashicorp/hcl/v2"

// Model is the format-agnostic representation of a full run configuration.
type Model struct {
	Run        *Run
	Parameters *Parameters
	Analysis   *Analysis
}

// Run selects the regions to process and names the external data inputs and
// the snapshot artifact.
type Run struct {
	Regions            []string
	SnapshotPath       string
	TransectPath       string
	QParamsPath        string
	ReferenceYearsPath string
}

// Parameters holds the scalar run parameters. All values are immutable for
// the duration of a run.
type Parameters struct {
	// SpawnIndexThreshold is nil when no threshold is applied.
	SpawnIndexThreshold *float64 `json:"spawn_index_threshold,omitempty"`
	MinConsecutiveYears int      `json:"min_consecutive_years"`
	BufferDistanceM     float64  `json:"buffer_distance_m"`
	IntendedHarvestRate float64  `json:"intended_harvest_rate"`
	HarvestRateFrom     int      `json:"harvest_rate_from"`
	PlotResolutionDPI   int      `json:"plot_resolution_dpi"`
	Animate             bool     `json:"animate"`
}

// Analysis names the spatial-analysis procedure to invoke per region and
// carries its raw arguments body for the procedure to decode.
type Analysis struct {
	Procedure string
	Arguments hcl.Body
}
