package dataprocessing

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// EnrichedHeader returns the output header: the input columns in order,
// then every derived column the input does not already have.
func EnrichedHeader(rawHeader []string) []string {
	header := make([]string, 0, len(rawHeader)+len(domain.DerivedColumns))
	header = append(header, rawHeader...)

	present := make(map[string]bool, len(rawHeader))
	for _, name := range rawHeader {
		present[name] = true
	}
	for _, name := range domain.DerivedColumns {
		if !present[name] {
			header = append(header, name)
		}
	}
	return header
}

// EnrichedRows renders records under EnrichedHeader(rawHeader). Input
// cells pass through verbatim, except derived columns, which carry the
// derived value. A trip_duration column from the input is kept as given.
func EnrichedRows(rawHeader []string, records []domain.TripRecord) [][]string {
	header := EnrichedHeader(rawHeader)
	rows := make([][]string, len(records))

	for i, rec := range records {
		row := make([]string, len(header))
		for j, name := range header {
			fromInput := j < len(rawHeader)
			if fromInput && name == domain.ColTripDuration && j < len(rec.Cells) {
				row[j] = rec.Cells[j]
				continue
			}
			if v, ok := derivedCell(name, rec); ok {
				row[j] = v
				continue
			}
			if fromInput && j < len(rec.Cells) {
				row[j] = rec.Cells[j]
			}
		}
		rows[i] = row
	}
	return rows
}

func derivedCell(name string, rec domain.TripRecord) (string, bool) {
	switch name {
	case domain.ColTripDuration:
		return FormatFloat(rec.TripDuration), true
	case domain.ColPickupHour:
		return strconv.Itoa(rec.PickupHour), true
	case domain.ColTripSpeedMPH:
		return FormatFloat(rec.TripSpeedMPH), true
	case domain.ColTipPercentage:
		return FormatFloat(rec.TipPercentage), true
	case domain.ColIsPeakHour:
		return strconv.Itoa(rec.IsPeakHour), true
	case domain.ColTripType:
		return string(rec.TripType), true
	}
	return "", false
}

// FormatFloat writes v in its shortest round-trip form. NaN is written as
// an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Enriched column types used when loading a persisted file into a frame.
// trip_type and is_peak_hour stay strings so unexpected values survive
// loading and can be reported.
var enrichedTypes = map[string]series.Type{
	domain.ColTripDistance:  series.Float,
	domain.ColTripDuration:  series.Float,
	domain.ColTripSpeedMPH:  series.Float,
	domain.ColTipPercentage: series.Float,
	domain.ColIsPeakHour:    series.String,
	domain.ColTripType:      series.String,
}

// LoadEnrichedFile reads a persisted enriched CSV into a frame.
func LoadEnrichedFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataframe.DataFrame{}, apperrors.NewNotFoundError("enriched file "+path).WithContext("path", path)
		}
		return dataframe.DataFrame{}, apperrors.NewStorageError("failed to open enriched file", err).WithContext("path", path)
	}
	defer f.Close()

	return LoadEnrichedFrame(f)
}

// LoadEnrichedFrame reads enriched CSV data into a frame. A file holding
// only a header yields a frame with those columns and no rows.
func LoadEnrichedFrame(r io.Reader) (dataframe.DataFrame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, apperrors.NewParsingError("malformed enriched csv", err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, apperrors.NewParsingError("enriched csv has no header row", nil)
	}
	if len(records[0]) > 0 {
		records[0][0] = trimBOM(records[0][0])
	}

	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			t, ok := enrichedTypes[name]
			if !ok {
				t = series.String
			}
			cols[i] = series.New([]string{}, t, name)
		}
		df := dataframe.New(cols...)
		return df, df.Err
	}

	df := dataframe.LoadRecords(records,
		dataframe.WithTypes(enrichedTypes),
		dataframe.DetectTypes(true),
	)
	if df.Err != nil {
		return df, apperrors.NewParsingError("failed to load enriched frame", df.Err)
	}
	return df, nil
}

func trimBOM(s string) string {
	if len(s) >= len(utf8BOM) && s[:len(utf8BOM)] == utf8BOM {
		return s[len(utf8BOM):]
	}
	return s
}
