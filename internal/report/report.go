// Package report contains small text-formatting helpers shared by log and
// progress messages: natural-language lists, year windows, and rates.
package report

import (
	"fmt"
	"strings"
)

// List joins items into a natural-language enumeration with an Oxford comma:
// "", "A", "A and B", "A, B, and C".
func List(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// YearWindow formats an inclusive year range. Single-year windows render as
// the bare year.
func YearWindow(start, end int) string {
	if start == end {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d to %d", start, end)
}

// Percent formats a proportion in [0, 1] as a percentage with up to one
// decimal place, e.g. 0.1 -> "10%", 0.125 -> "12.5%".
func Percent(proportion float64) string {
	s := fmt.Sprintf("%.1f", proportion*100)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}
