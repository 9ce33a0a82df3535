// Package config defines the format-agnostic run-configuration model and the
// Loader interface for reading it. The concrete HCL implementation lives in
// the internal/hcl package.
package config
