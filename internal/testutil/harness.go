// Package testutil provides shared helpers for driver tests: a thread-safe
// log buffer, recorder analysis modules, and a harness that runs the full
// app against a temporary run file.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spawnsci/spawnrun/internal/app"
	"github.com/spawnsci/spawnrun/internal/hcl"
	"github.com/spawnsci/spawnrun/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a driver test run.
type HarnessResult struct {
	LogOutput    string
	Err          error
	App          *app.App
	SnapshotPath string
}

// RunDriverTest writes the given run configuration to a temporary file,
// builds an App with the provided modules, and executes a full run. The
// snapshot path is redirected into the temporary directory.
func RunDriverTest(t *testing.T, runHCL string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	runPath := filepath.Join(tmpDir, "run.hcl")
	require.NoError(t, os.WriteFile(runPath, []byte(runHCL), 0644))

	snapshotPath := filepath.Join(tmpDir, "snapshot.json")
	appConfig, err := app.NewConfig(app.Config{
		RunPath:      runPath,
		SnapshotPath: snapshotPath,
		LogFormat:    "text",
		LogLevel:     "debug",
	})
	require.NoError(t, err)

	buf := &SafeBuffer{}
	driver := app.NewApp(buf, appConfig, hcl.NewLoader(), modules...)
	runErr := driver.Run(context.Background())

	return &HarnessResult{
		LogOutput:    buf.String(),
		Err:          runErr,
		App:          driver,
		SnapshotPath: snapshotPath,
	}
}
