package validation

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// ColumnCheck is the outcome of one curated-column rule.
type ColumnCheck struct {
	Column     string `json:"column"`
	Present    bool   `json:"present"`
	Violations int    `json:"violations"`
	Message    string `json:"message,omitempty"`
}

// Passed reports whether the column was absent or had no violations.
func (c ColumnCheck) Passed() bool {
	return c.Violations == 0
}

// rule counts the violating values of one column.
type rule struct {
	column string
	label  string
	count  func(col series.Series) int
}

// rules run in this order; the order fixes the order of messages.
var rules = []rule{
	{domain.ColTripSpeedMPH, "Unrealistic speeds found", countUnrealisticSpeeds},
	{domain.ColTipPercentage, "Invalid tip percentages", countInvalidTipPercentages},
	{domain.ColTripType, "Invalid trip types", countInvalidTripTypes},
	{domain.ColIsPeakHour, "Invalid peak hour indicators", countInvalidPeakFlags},
}

// CuratedValidator checks the derived columns of an enriched table
type CuratedValidator struct {
	logger *slog.Logger
}

// NewCuratedValidator creates a curated-data validator
func NewCuratedValidator(logger *slog.Logger) *CuratedValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CuratedValidator{logger: logger.With(slog.String("component", "curated_validator"))}
}

// Check runs every rule against df. Absent columns are reported with
// Present false and are not checked. df is never modified.
func (v *CuratedValidator) Check(df dataframe.DataFrame) []ColumnCheck {
	present := make(map[string]bool)
	for _, name := range df.Names() {
		present[name] = true
	}

	checks := make([]ColumnCheck, 0, len(rules))
	for _, r := range rules {
		check := ColumnCheck{Column: r.column, Present: present[r.column]}
		if check.Present {
			check.Violations = r.count(df.Col(r.column))
			if check.Violations > 0 {
				check.Message = fmt.Sprintf("%s: %d records", r.label, check.Violations)
			}
		}
		checks = append(checks, check)
	}
	return checks
}

// Validate returns one message per violated column, in rule order. An
// empty result means the table is valid.
func (v *CuratedValidator) Validate(df dataframe.DataFrame) []string {
	messages := Messages(v.Check(df))

	v.logger.Info("validation completed",
		slog.Int("rows", df.Nrow()),
		slog.Int("violations", len(messages)))

	return messages
}

// CheckFile runs Check against a persisted enriched CSV.
func (v *CuratedValidator) CheckFile(path string) ([]ColumnCheck, error) {
	df, err := dataprocessing.LoadEnrichedFile(path)
	if err != nil {
		return nil, err
	}
	if df.Err != nil {
		return nil, apperrors.NewParsingError("invalid enriched frame", df.Err)
	}
	checks := v.Check(df)

	v.logger.Info("validation completed",
		slog.String("path", path),
		slog.Int("rows", df.Nrow()),
		slog.Int("violations", TotalViolations(checks)))

	return checks, nil
}

// Messages returns the messages of the failed checks, in check order. The
// result is never nil.
func Messages(checks []ColumnCheck) []string {
	messages := make([]string, 0)
	for _, c := range checks {
		if c.Message != "" {
			messages = append(messages, c.Message)
		}
	}
	return messages
}

// TotalViolations sums the violations of checks.
func TotalViolations(checks []ColumnCheck) int {
	total := 0
	for _, c := range checks {
		total += c.Violations
	}
	return total
}

// NaN compares false both ways, so missing speeds are not flagged.
func countUnrealisticSpeeds(col series.Series) int {
	n := 0
	for _, v := range col.Float() {
		if v > config.MaxTripSpeedMPH {
			n++
		}
	}
	return n
}

func countInvalidTipPercentages(col series.Series) int {
	n := 0
	for _, v := range col.Float() {
		if v < 0 || v > config.MaxTipPercentage {
			n++
		}
	}
	return n
}

func countInvalidTripTypes(col series.Series) int {
	n := 0
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() || !domain.TripType(e.String()).IsValid() {
			n++
		}
	}
	return n
}

// Peak flags may arrive as strings, ints or floats; only a numeric 0 or 1
// is accepted.
func countInvalidPeakFlags(col series.Series) int {
	n := 0
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			n++
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
		if err != nil || math.IsNaN(f) || (f != 0 && f != 1) {
			n++
		}
	}
	return n
}
