package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// RawTable is a parsed raw trip file.
type RawTable struct {
	Header []string
	Trips  []domain.RawTrip

	index map[string]int
}

// HasColumn reports whether the header contains name.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// HasTripDuration reports whether durations come from the file rather than
// being derived from the timestamps.
func (t *RawTable) HasTripDuration() bool {
	return t.HasColumn(domain.ColTripDuration)
}

// ReadRawFile opens and parses a raw trip CSV file.
func ReadRawFile(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("input file "+path).WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to open input file", err).WithContext("path", path)
	}
	defer f.Close()

	return ReadRaw(f)
}

// ReadRaw parses raw trip CSV data. Every required column must be present
// in the header; short rows are padded with empty cells.
func ReadRaw(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	table := &RawTable{
		Header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		table.Header[i] = name
		if _, dup := table.index[name]; !dup {
			table.index[name] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing", missing)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError already names the line.
			return nil, apperrors.NewParsingError("malformed csv", err)
		}
		line, _ := reader.FieldPos(0)
		table.Trips = append(table.Trips, table.newRawTrip(line, record))
	}

	return table, nil
}

func (t *RawTable) newRawTrip(line int, record []string) domain.RawTrip {
	cells := make([]string, len(t.Header))
	copy(cells, record)

	trip := domain.RawTrip{
		Line:            line,
		Cells:           cells,
		PickupDatetime:  strings.TrimSpace(t.cell(cells, domain.ColPickupDatetime)),
		DropoffDatetime: strings.TrimSpace(t.cell(cells, domain.ColDropoffDatetime)),
		TripDistance:    parseNullableFloat(t.cell(cells, domain.ColTripDistance)),
		TotalAmount:     parseNullableFloat(t.cell(cells, domain.ColTotalAmount)),
		TipAmount:       parseNullableFloat(t.cell(cells, domain.ColTipAmount)),
	}
	if t.HasTripDuration() {
		trip.TripDuration = parseNullableFloat(t.cell(cells, domain.ColTripDuration))
	}
	return trip
}

func (t *RawTable) cell(cells []string, name string) string {
	i, ok := t.index[name]
	if !ok {
		return ""
	}
	return cells[i]
}

// parseNullableFloat returns nil for empty, non-numeric and NaN cells.
func parseNullableFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
