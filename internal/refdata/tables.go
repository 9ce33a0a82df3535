// Package refdata loads the static reference tables a region run depends on:
// the stock assessment region cross-walk, the per-region reference-year
// windows, and the catchability-parameter table. All tables are loaded once
// at startup and held read-only for the duration of a run.
package refdata

import "fmt"

// Region is one row of the stock assessment region cross-walk.
type Region struct {
	SAR   int    `json:"sar"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Major bool   `json:"major"`
}

// ReferenceYears is the biomass-threshold reference window for one region.
// Start and End are inclusive years with Start <= End; a single-year window
// (Start == End) is valid.
type ReferenceYears struct {
	Region string `json:"region"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// QTable holds the catchability-parameter table. Its schema is owned by the
// spatial-analysis procedure; the driver loads it and passes it through
// unchanged.
type QTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Tables bundles all loaded reference tables.
type Tables struct {
	Regions        []Region         `json:"regions"`
	ReferenceYears []ReferenceYears `json:"reference_years"`
	Q              QTable           `json:"q"`
}

// Region returns the cross-walk row for the given region code.
func (t *Tables) Region(code string) (Region, bool) {
	for _, r := range t.Regions {
		if r.Code == code {
			return r, true
		}
	}
	return Region{}, false
}

// ReferenceYearsFor returns the unique reference-year window for the given
// region code. Absence is a configuration error: the run must not proceed
// for a region without a reference window.
func (t *Tables) ReferenceYearsFor(code string) (ReferenceYears, error) {
	for _, ry := range t.ReferenceYears {
		if ry.Region == code {
			return ry, nil
		}
	}
	return ReferenceYears{}, &MissingReferenceYearsError{Region: code}
}

// LoadError indicates a required reference table is missing, malformed, or
// has the wrong column types. Line is 1-based within the offending file, or
// zero when the failure is not row-specific.
type LoadError struct {
	Table  string
	Line   int
	Reason string
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("loading %s table: line %d: %s", e.Table, e.Line, e.Reason)
	}
	return fmt.Sprintf("loading %s table: %s", e.Table, e.Reason)
}

// MissingReferenceYearsError indicates a selected region has no row in the
// reference-years table.
type MissingReferenceYearsError struct {
	Region string
}

// Error implements the error interface.
func (e *MissingReferenceYearsError) Error() string {
	return fmt.Sprintf("no reference years defined for region %q", e.Region)
}
