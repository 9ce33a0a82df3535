package refdata

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spawnsci/spawnrun/internal/ctxlog"
)

// The cross-walk and default reference-year windows are static domain
// knowledge and ship with the binary. An external reference-years file may
// override the embedded default per run.

//go:embed data/region_crosswalk.csv
var crosswalkCSV []byte

//go:embed data/reference_years.csv
var referenceYearsCSV []byte

// Sources names the optional external inputs for a load. Empty paths fall
// back to the embedded defaults (reference years) or an empty table
// (catchability parameters).
type Sources struct {
	ReferenceYearsPath string
	QParamsPath        string
}

// Load reads all reference tables and validates their schemas. Any malformed
// row fails the load with a *LoadError before region processing begins.
func Load(ctx context.Context, src Sources) (*Tables, error) {
	logger := ctxlog.FromContext(ctx)

	regions, err := parseCrosswalk(bytes.NewReader(crosswalkCSV))
	if err != nil {
		return nil, err
	}
	logger.Debug("Region cross-walk loaded.", "regions", len(regions))

	ryReader, ryName, err := openOrEmbedded(src.ReferenceYearsPath, referenceYearsCSV)
	if err != nil {
		return nil, &LoadError{Table: "reference years", Reason: err.Error()}
	}
	defer ryReader.Close()

	years, err := parseReferenceYears(ryReader)
	if err != nil {
		return nil, err
	}
	logger.Debug("Reference years loaded.", "source", ryName, "rows", len(years))

	q, err := loadQTable(src.QParamsPath)
	if err != nil {
		return nil, err
	}
	if src.QParamsPath != "" {
		logger.Debug("Catchability parameters loaded.", "path", src.QParamsPath, "rows", len(q.Rows))
	}

	return &Tables{Regions: regions, ReferenceYears: years, Q: q}, nil
}

// openOrEmbedded returns a reader over the file at path, or over the embedded
// fallback bytes when path is empty.
func openOrEmbedded(path string, fallback []byte) (io.ReadCloser, string, error) {
	if path == "" {
		return io.NopCloser(bytes.NewReader(fallback)), "embedded", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

func parseCrosswalk(r io.Reader) ([]Region, error) {
	const table = "region cross-walk"

	records, err := readAll(table, r)
	if err != nil {
		return nil, err
	}
	if err := requireHeader(table, records, []string{"SAR", "Region", "RegionName", "Major"}); err != nil {
		return nil, err
	}

	regions := make([]Region, 0, len(records)-1)
	seen := make(map[string]struct{})
	for i, rec := range records[1:] {
		line := i + 2

		sar, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("SAR %q is not an integer", rec[0])}
		}
		major, err := strconv.ParseBool(rec[3])
		if err != nil {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("Major %q is not a boolean", rec[3])}
		}
		code := rec[1]
		if code == "" {
			return nil, &LoadError{Table: table, Line: line, Reason: "Region code is empty"}
		}
		if _, dup := seen[code]; dup {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("duplicate region code %q", code)}
		}
		seen[code] = struct{}{}

		regions = append(regions, Region{SAR: sar, Code: code, Name: rec[2], Major: major})
	}
	return regions, nil
}

func parseReferenceYears(r io.Reader) ([]ReferenceYears, error) {
	const table = "reference years"

	records, err := readAll(table, r)
	if err != nil {
		return nil, err
	}
	if err := requireHeader(table, records, []string{"SAR", "Start", "End"}); err != nil {
		return nil, err
	}

	years := make([]ReferenceYears, 0, len(records)-1)
	seen := make(map[string]struct{})
	for i, rec := range records[1:] {
		line := i + 2

		code := rec[0]
		if code == "" {
			return nil, &LoadError{Table: table, Line: line, Reason: "SAR code is empty"}
		}
		start, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("Start %q is not an integer", rec[1])}
		}
		end, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("End %q is not an integer", rec[2])}
		}
		if start > end {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("Start %d is after End %d", start, end)}
		}
		// Exactly-one lookup depends on row uniqueness, so enforce it here.
		if _, dup := seen[code]; dup {
			return nil, &LoadError{Table: table, Line: line, Reason: fmt.Sprintf("duplicate reference-years row for region %q", code)}
		}
		seen[code] = struct{}{}

		years = append(years, ReferenceYears{Region: code, Start: start, End: end})
	}
	return years, nil
}

// loadQTable reads the catchability-parameter table as an opaque header-plus-
// rows grid. An empty path yields an empty table.
func loadQTable(path string) (QTable, error) {
	const table = "catchability parameters"

	if path == "" {
		return QTable{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return QTable{}, &LoadError{Table: table, Reason: err.Error()}
	}
	defer f.Close()

	records, err := readAll(table, f)
	if err != nil {
		return QTable{}, err
	}
	if len(records) == 0 {
		return QTable{}, &LoadError{Table: table, Reason: "file is empty"}
	}
	return QTable{Columns: records[0], Rows: records[1:]}, nil
}

func readAll(table string, r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Table: table, Reason: err.Error()}
	}
	return records, nil
}

func requireHeader(table string, records [][]string, want []string) error {
	if len(records) == 0 {
		return &LoadError{Table: table, Reason: "file is empty"}
	}
	header := records[0]
	if len(header) != len(want) {
		return &LoadError{Table: table, Line: 1, Reason: fmt.Sprintf("expected columns %s, got %s",
			strings.Join(want, ","), strings.Join(header, ","))}
	}
	for i, name := range want {
		if header[i] != name {
			return &LoadError{Table: table, Line: 1, Reason: fmt.Sprintf("expected column %d to be %q, got %q", i+1, name, header[i])}
		}
	}
	return nil
}
