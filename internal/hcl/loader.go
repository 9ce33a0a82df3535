// Package hcl implements the config.Loader interface for HCL run files.
package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/spawnsci/spawnrun/internal/config"
	"github.com/spawnsci/spawnrun/internal/ctxlog"
	"github.com/spawnsci/spawnrun/internal/fsutil"
)

// Defaults applied when the parameters block omits a value.
const (
	DefaultSnapshotPath        = "spawnrun-snapshot.json"
	DefaultMinConsecutiveYears = 2
	DefaultBufferDistanceM     = 1000
	DefaultIntendedHarvestRate = 0.1
	DefaultHarvestRateFrom     = 1983
	DefaultPlotResolutionDPI   = 300
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL run-configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all recognized top-level blocks from one file.
type fileRoot struct {
	Run        *runBlock        `hcl:"run,block"`
	Parameters *parametersBlock `hcl:"parameters,block"`
	Analyses   []*analysisBlock `hcl:"analysis,block"`
	Remain     hcl.Body         `hcl:",remain"`
}

type runBlock struct {
	Regions            []string `hcl:"regions"`
	SnapshotPath       string   `hcl:"snapshot_path,optional"`
	TransectPath       string   `hcl:"transect_path,optional"`
	QParamsPath        string   `hcl:"q_params_path,optional"`
	ReferenceYearsPath string   `hcl:"reference_years_path,optional"`
}

type parametersBlock struct {
	SpawnIndexThreshold *float64 `hcl:"spawn_index_threshold,optional"`
	MinConsecutiveYears *int     `hcl:"min_consecutive_years,optional"`
	BufferDistanceM     *float64 `hcl:"buffer_distance_m,optional"`
	IntendedHarvestRate *float64 `hcl:"intended_harvest_rate,optional"`
	HarvestRateFrom     *int     `hcl:"harvest_rate_from,optional"`
	PlotResolutionDPI   *int     `hcl:"plot_resolution_dpi,optional"`
	Animate             *bool    `hcl:"animate,optional"`
}

type analysisBlock struct {
	Procedure string          `hcl:"procedure,label"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load orchestrates HCL run-configuration loading. The path may be a single
// .hcl file or a directory searched recursively.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.findFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl run files found at %s", path)
	}
	logger.Debug("Discovered run files.", "count", len(files))

	parser := hclparse.NewParser()

	var (
		run        *runBlock
		params     *parametersBlock
		analysisBl *analysisBlock
	)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse run file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode run file %s: %w", file, diags)
		}

		if root.Run != nil {
			if run != nil {
				return nil, fmt.Errorf("duplicate run block in %s; a run is declared exactly once", file)
			}
			run = root.Run
		}
		if root.Parameters != nil {
			if params != nil {
				return nil, fmt.Errorf("duplicate parameters block in %s", file)
			}
			params = root.Parameters
		}
		for _, a := range root.Analyses {
			if analysisBl != nil {
				return nil, fmt.Errorf("duplicate analysis block in %s; one procedure per run", file)
			}
			analysisBl = a
		}
	}

	if run == nil {
		return nil, fmt.Errorf("no run block found at %s", path)
	}
	if analysisBl == nil {
		return nil, fmt.Errorf("no analysis block found at %s", path)
	}

	model := &config.Model{
		Run:        translateRun(run),
		Parameters: translateParameters(params),
		Analysis:   translateAnalysis(analysisBl),
	}
	if err := validate(model); err != nil {
		return nil, err
	}

	logger.Debug("Run configuration loaded.",
		"regions", len(model.Run.Regions), "procedure", model.Analysis.Procedure)
	return model, nil
}

func (l *Loader) findFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing run path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return fsutil.FindFilesByExtension(path, ".hcl")
}

func translateRun(b *runBlock) *config.Run {
	run := &config.Run{
		Regions:            b.Regions,
		SnapshotPath:       b.SnapshotPath,
		TransectPath:       b.TransectPath,
		QParamsPath:        b.QParamsPath,
		ReferenceYearsPath: b.ReferenceYearsPath,
	}
	if run.SnapshotPath == "" {
		run.SnapshotPath = DefaultSnapshotPath
	}
	return run
}

func translateParameters(b *parametersBlock) *config.Parameters {
	p := &config.Parameters{
		MinConsecutiveYears: DefaultMinConsecutiveYears,
		BufferDistanceM:     DefaultBufferDistanceM,
		IntendedHarvestRate: DefaultIntendedHarvestRate,
		HarvestRateFrom:     DefaultHarvestRateFrom,
		PlotResolutionDPI:   DefaultPlotResolutionDPI,
	}
	if b == nil {
		return p
	}
	p.SpawnIndexThreshold = b.SpawnIndexThreshold
	if b.MinConsecutiveYears != nil {
		p.MinConsecutiveYears = *b.MinConsecutiveYears
	}
	if b.BufferDistanceM != nil {
		p.BufferDistanceM = *b.BufferDistanceM
	}
	if b.IntendedHarvestRate != nil {
		p.IntendedHarvestRate = *b.IntendedHarvestRate
	}
	if b.HarvestRateFrom != nil {
		p.HarvestRateFrom = *b.HarvestRateFrom
	}
	if b.PlotResolutionDPI != nil {
		p.PlotResolutionDPI = *b.PlotResolutionDPI
	}
	if b.Animate != nil {
		p.Animate = *b.Animate
	}
	return p
}

func translateAnalysis(b *analysisBlock) *config.Analysis {
	a := &config.Analysis{Procedure: b.Procedure}
	if b.Arguments != nil {
		a.Arguments = b.Arguments.Body
	}
	return a
}

func validate(m *config.Model) error {
	p := m.Parameters
	if p.SpawnIndexThreshold != nil && *p.SpawnIndexThreshold <= 0 {
		return fmt.Errorf("spawn_index_threshold must be positive when set, got %v", *p.SpawnIndexThreshold)
	}
	if p.MinConsecutiveYears < 1 {
		return fmt.Errorf("min_consecutive_years must be at least 1, got %d", p.MinConsecutiveYears)
	}
	if p.BufferDistanceM < 0 {
		return fmt.Errorf("buffer_distance_m must not be negative, got %v", p.BufferDistanceM)
	}
	if p.IntendedHarvestRate < 0 || p.IntendedHarvestRate > 1 {
		return fmt.Errorf("intended_harvest_rate must be within [0, 1], got %v", p.IntendedHarvestRate)
	}
	if p.PlotResolutionDPI <= 0 {
		return fmt.Errorf("plot_resolution_dpi must be positive, got %d", p.PlotResolutionDPI)
	}
	if m.Analysis.Procedure == "" {
		return fmt.Errorf("analysis block requires a procedure label")
	}
	return nil
}
