package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// RunPath points at the HCL run file or a directory of them.
	RunPath string

	// Regions, when non-nil, overrides the region selection from the run
	// file. SnapshotPath, when non-empty, overrides the snapshot output
	// path.
	Regions      []string
	SnapshotPath string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RunPath == "" {
		return nil, errors.New("RunPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
