// Package spatial defines the spatial-unit granularities used to aggregate
// spawn survey data within a stock assessment region, and the fixed mapping
// from region codes to units.
package spatial

import "fmt"

// Unit is the granularity at which spawn data is aggregated within a region.
type Unit int

const (
	UnitRegion Unit = iota
	UnitStatArea
	UnitSection
	UnitGroup
)

// String returns the display name of the unit.
func (u Unit) String() string {
	switch u {
	case UnitRegion:
		return "Region"
	case UnitStatArea:
		return "StatArea"
	case UnitSection:
		return "Section"
	case UnitGroup:
		return "Group"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// UnknownRegionError indicates a region code with no spatial-unit assignment.
type UnknownRegionError struct {
	Code string
}

// Error implements the error interface.
func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("no spatial unit assigned for region %q", e.Code)
}

// unitByRegion is the closed assignment of region codes to spatial units.
// This is static domain knowledge, not derived from the reference tables.
var unitByRegion = map[string]Unit{
	"HG":   UnitSection,
	"PRD":  UnitSection,
	"CC":   UnitStatArea,
	"SoG":  UnitRegion,
	"WCVI": UnitStatArea,
	"A27":  UnitRegion,
	"A2W":  UnitRegion,
	"All":  UnitRegion,
}

// ResolveUnit returns the spatial unit assigned to the given region code.
// Codes outside the closed mapping fail with UnknownRegionError rather than
// leaving the unit unset.
func ResolveUnit(code string) (Unit, error) {
	unit, ok := unitByRegion[code]
	if !ok {
		return 0, &UnknownRegionError{Code: code}
	}
	return unit, nil
}
