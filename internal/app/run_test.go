package app_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spawnsci/spawnrun/internal/app"
	"github.com/spawnsci/spawnrun/internal/hcl"
	"github.com/spawnsci/spawnrun/internal/refdata"
	"github.com/spawnsci/spawnrun/internal/spatial"
	"github.com/spawnsci/spawnrun/internal/testutil"
	"github.com/spawnsci/spawnrun/internal/workspace"
)

func recorderRunHCL(regions string) string {
	return fmt.Sprintf(`
run {
  regions = [%s]
}

analysis "recorder" {}
`, regions)
}

func TestRun_EmptySelection(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	result := testutil.RunDriverTest(t, recorderRunHCL(""), recorder)

	require.NoError(t, result.Err)
	assert.Empty(t, recorder.Calls(), "no analysis invocation for an empty selection")

	// The empty-delta snapshot is still persisted.
	ws, err := workspace.ReadSnapshot(result.SnapshotPath)
	require.NoError(t, err)
	assert.Empty(t, ws.Regions)
	assert.NotEmpty(t, ws.RunID)
	assert.NotNil(t, ws.Tables)
}

func TestRun_SingleRegion(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	result := testutil.RunDriverTest(t, recorderRunHCL(`"CC"`), recorder)

	require.NoError(t, result.Err)

	calls := recorder.Calls()
	require.Len(t, calls, 1, "exactly one invocation for one region")
	assert.Equal(t, "CC", calls[0].Region)
	assert.Equal(t, spatial.UnitStatArea, calls[0].Unit)
	assert.Equal(t, "CC", calls[0].Years.Region)

	ws, err := workspace.ReadSnapshot(result.SnapshotPath)
	require.NoError(t, err)
	require.Len(t, ws.Regions, 1)
	assert.Equal(t, "CC", ws.Regions[0].Code)
	assert.Equal(t, "StatArea", ws.Regions[0].Unit)
	assert.Equal(t, []string{"recorded"}, ws.Regions[0].Notes)
}

func TestRun_RegionsProcessInOrder(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	result := testutil.RunDriverTest(t, recorderRunHCL(`"HG", "CC", "A27"`), recorder)

	require.NoError(t, result.Err)

	calls := recorder.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "HG", calls[0].Region)
	assert.Equal(t, "CC", calls[1].Region)
	assert.Equal(t, "A27", calls[2].Region)
	assert.Equal(t, spatial.UnitSection, calls[0].Unit)
	assert.Equal(t, spatial.UnitRegion, calls[2].Unit)
}

func TestRun_MissingReferenceYears(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	result := testutil.RunDriverTest(t, recorderRunHCL(`"ZZZ"`), recorder)

	require.Error(t, result.Err)
	var missingErr *refdata.MissingReferenceYearsError
	require.True(t, errors.As(result.Err, &missingErr))
	assert.Equal(t, "ZZZ", missingErr.Region)

	assert.Empty(t, recorder.Calls(), "zero invocations when the first region is invalid")
	_, err := workspace.ReadSnapshot(result.SnapshotPath)
	assert.Error(t, err, "a failed run writes no snapshot")
}

func TestRun_FailureHaltsBeforeNextRegion(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("shapefile geometry unavailable")
	failing := &testutil.FailingModule{Err: wantErr}
	result := testutil.RunDriverTest(t, `
run {
  regions = ["HG", "CC"]
}

analysis "failing" {}
`, failing)

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, wantErr)
	assert.ErrorContains(t, result.Err, "region HG", "the failing region is named")
	assert.NotContains(t, result.Err.Error(), "CC", "the second region is never attempted")
}

func TestRun_DuplicateRegionsProcessTwice(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	result := testutil.RunDriverTest(t, recorderRunHCL(`"CC", "CC"`), recorder)

	require.NoError(t, result.Err)
	assert.Len(t, recorder.Calls(), 2)

	ws, err := workspace.ReadSnapshot(result.SnapshotPath)
	require.NoError(t, err)
	assert.Len(t, ws.Regions, 2)
}

func TestRun_UnknownSpatialUnit(t *testing.T) {
	t.Parallel()

	// A region can carry a reference window yet sit outside the closed
	// spatial-unit mapping; that must fail loudly, not leave the unit unset.
	tmpDir := t.TempDir()
	ryPath := filepath.Join(tmpDir, "ry.csv")
	require.NoError(t, os.WriteFile(ryPath, []byte("SAR,Start,End\nXX,1990,2000\n"), 0644))
	runPath := filepath.Join(tmpDir, "run.hcl")
	runHCL := fmt.Sprintf(`
run {
  regions              = ["XX"]
  reference_years_path = %q
  snapshot_path        = %q
}

analysis "recorder" {}
`, ryPath, filepath.Join(tmpDir, "snapshot.json"))
	require.NoError(t, os.WriteFile(runPath, []byte(runHCL), 0644))

	appConfig, err := app.NewConfig(app.Config{RunPath: runPath, LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)

	recorder := &testutil.RecorderModule{}
	buf := &testutil.SafeBuffer{}
	driver := app.NewApp(buf, appConfig, hcl.NewLoader(), recorder)

	runErr := driver.Run(context.Background())
	require.Error(t, runErr)
	var unknownErr *spatial.UnknownRegionError
	require.True(t, errors.As(runErr, &unknownErr))
	assert.Equal(t, "XX", unknownErr.Code)
	assert.Empty(t, recorder.Calls())
}

func TestNewApp_UnregisteredProcedurePanics(t *testing.T) {
	t.Parallel()

	recorder := &testutil.RecorderModule{}
	assert.Panics(t, func() {
		testutil.RunDriverTest(t, `
run {
  regions = ["CC"]
}

analysis "no-such-procedure" {}
`, recorder)
	})
}
