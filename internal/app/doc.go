// Package app wires the region run driver together: it owns the logger, the
// run configuration, the analysis-procedure registry, and the loaded
// reference tables, and executes the run pipeline in order: validate each
// selected region, invoke the analysis procedure, persist the workspace
// snapshot.
package app
