package workspace

import (
	"encoding/json"
	"fmt"
	"os"
)

// Write persists the workspace snapshot to path as indented JSON. The
// snapshot is written in one step at the end of a run; a run that fails
// mid-loop leaves no snapshot behind.
func (w *Workspace) Write(path string) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workspace snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing workspace snapshot to %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads a previously written snapshot. Used by tooling and
// tests to inspect a finished run.
func ReadSnapshot(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workspace snapshot from %s: %w", path, err)
	}
	var w Workspace
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding workspace snapshot from %s: %w", path, err)
	}
	return &w, nil
}
