package hcl

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spawnsci/spawnrun/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeRunFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const fullRunHCL = `
run {
  regions              = ["CC", "HG"]
  snapshot_path        = "out/snapshot.json"
  transect_path        = "data/transects.csv"
  q_params_path        = "data/q.csv"
  reference_years_path = "data/ry.csv"
}

parameters {
  spawn_index_threshold = 0.05
  min_consecutive_years = 3
  buffer_distance_m     = 500
  intended_harvest_rate = 0.2
  harvest_rate_from     = 1985
  plot_resolution_dpi   = 600
  animate               = true
}

analysis "spawnindex" {
  arguments {
    region_column = "Region"
  }
}
`

func TestLoad_FullConfig(t *testing.T) {
	t.Parallel()

	path := writeRunFile(t, "run.hcl", fullRunHCL)
	model, err := NewLoader().Load(testContext(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"CC", "HG"}, model.Run.Regions)
	assert.Equal(t, "out/snapshot.json", model.Run.SnapshotPath)
	assert.Equal(t, "data/transects.csv", model.Run.TransectPath)
	assert.Equal(t, "data/q.csv", model.Run.QParamsPath)
	assert.Equal(t, "data/ry.csv", model.Run.ReferenceYearsPath)

	p := model.Parameters
	require.NotNil(t, p.SpawnIndexThreshold)
	assert.Equal(t, 0.05, *p.SpawnIndexThreshold)
	assert.Equal(t, 3, p.MinConsecutiveYears)
	assert.Equal(t, 500.0, p.BufferDistanceM)
	assert.Equal(t, 0.2, p.IntendedHarvestRate)
	assert.Equal(t, 1985, p.HarvestRateFrom)
	assert.Equal(t, 600, p.PlotResolutionDPI)
	assert.True(t, p.Animate)

	assert.Equal(t, "spawnindex", model.Analysis.Procedure)
	assert.NotNil(t, model.Analysis.Arguments)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	path := writeRunFile(t, "run.hcl", `
run {
  regions = ["CC"]
}

analysis "spawnindex" {}
`)
	model, err := NewLoader().Load(testContext(), path)
	require.NoError(t, err)

	assert.Equal(t, DefaultSnapshotPath, model.Run.SnapshotPath)

	p := model.Parameters
	assert.Nil(t, p.SpawnIndexThreshold, "threshold is unset unless configured")
	assert.Equal(t, DefaultMinConsecutiveYears, p.MinConsecutiveYears)
	assert.Equal(t, float64(DefaultBufferDistanceM), p.BufferDistanceM)
	assert.Equal(t, DefaultIntendedHarvestRate, p.IntendedHarvestRate)
	assert.Equal(t, DefaultHarvestRateFrom, p.HarvestRateFrom)
	assert.Equal(t, DefaultPlotResolutionDPI, p.PlotResolutionDPI)
	assert.False(t, p.Animate)

	assert.Nil(t, model.Analysis.Arguments, "no arguments block configured")
}

func TestLoad_EmptyRegionSelection(t *testing.T) {
	t.Parallel()

	path := writeRunFile(t, "run.hcl", `
run {
  regions = []
}

analysis "spawnindex" {}
`)
	model, err := NewLoader().Load(testContext(), path)
	require.NoError(t, err)
	assert.Empty(t, model.Run.Regions)
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()

	// Blocks may be split across files in a directory.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.hcl"), []byte(`
run {
  regions = ["CC"]
}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis.hcl"), []byte(`
analysis "spawnindex" {}
`), 0644))

	model, err := NewLoader().Load(testContext(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"CC"}, model.Run.Regions)
	assert.Equal(t, "spawnindex", model.Analysis.Procedure)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{
			name:    "missing run block",
			hcl:     `analysis "spawnindex" {}`,
			wantErr: "no run block",
		},
		{
			name: "missing analysis block",
			hcl: `
run {
  regions = ["CC"]
}
`,
			wantErr: "no analysis block",
		},
		{
			name: "duplicate run block",
			hcl: `
run {
  regions = ["CC"]
}
run {
  regions = ["HG"]
}
analysis "spawnindex" {}
`,
			wantErr: "duplicate run block",
		},
		{
			name: "duplicate analysis block",
			hcl: `
run {
  regions = ["CC"]
}
analysis "spawnindex" {}
analysis "other" {}
`,
			wantErr: "duplicate analysis block",
		},
		{
			name: "harvest rate outside [0,1]",
			hcl: `
run {
  regions = ["CC"]
}
parameters {
  intended_harvest_rate = 1.5
}
analysis "spawnindex" {}
`,
			wantErr: "intended_harvest_rate",
		},
		{
			name: "non-positive threshold",
			hcl: `
run {
  regions = ["CC"]
}
parameters {
  spawn_index_threshold = 0
}
analysis "spawnindex" {}
`,
			wantErr: "spawn_index_threshold",
		},
		{
			name: "min consecutive years below one",
			hcl: `
run {
  regions = ["CC"]
}
parameters {
  min_consecutive_years = 0
}
analysis "spawnindex" {}
`,
			wantErr: "min_consecutive_years",
		},
		{
			name:    "invalid syntax",
			hcl:     `run { regions = `,
			wantErr: "failed to parse",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRunFile(t, "run.hcl", tc.hcl)
			_, err := NewLoader().Load(testContext(), path)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(testContext(), filepath.Join(t.TempDir(), "nope.hcl"))
	assert.ErrorContains(t, err, "error accessing run path")
}
