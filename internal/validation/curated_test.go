package validation

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	apperrors "taxicli/internal/errors"
	"taxicli/internal/shared/testutil"
	"taxicli/pkg/contracts/domain"
)

func curatedFrame(speeds, tips []float64, types []string, peaks []int) dataframe.DataFrame {
	return dataframe.New(
		series.New(speeds, series.Float, domain.ColTripSpeedMPH),
		series.New(tips, series.Float, domain.ColTipPercentage),
		series.New(types, series.String, domain.ColTripType),
		series.New(peaks, series.Int, domain.ColIsPeakHour),
	)
}

func TestCuratedValidatorValidate(t *testing.T) {
	tests := []struct {
		name string
		df   dataframe.DataFrame
		want []string
	}{
		{
			name: "valid data",
			df: curatedFrame(
				[]float64{50, 30, 80},
				[]float64{10, 20, 5},
				[]string{"short", "medium", "long"},
				[]int{0, 1, 0}),
			want: []string{},
		},
		{
			name: "unrealistic speed",
			df:   dataframe.New(series.New([]float64{150}, series.Float, domain.ColTripSpeedMPH)),
			want: []string{"Unrealistic speeds found: 1 records"},
		},
		{
			name: "invalid tip percentage",
			df:   dataframe.New(series.New([]float64{150}, series.Float, domain.ColTipPercentage)),
			want: []string{"Invalid tip percentages: 1 records"},
		},
		{
			name: "invalid trip type",
			df:   dataframe.New(series.New([]string{"invalid"}, series.String, domain.ColTripType)),
			want: []string{"Invalid trip types: 1 records"},
		},
		{
			name: "invalid peak indicator",
			df:   dataframe.New(series.New([]int{2}, series.Int, domain.ColIsPeakHour)),
			want: []string{"Invalid peak hour indicators: 1 records"},
		},
		{
			name: "every column violated keeps rule order",
			df: curatedFrame(
				[]float64{101, 120, 50},
				[]float64{-1, 50, 100.5},
				[]string{"short", "", "LONG"},
				[]int{1, 3, 0}),
			want: []string{
				"Unrealistic speeds found: 2 records",
				"Invalid tip percentages: 2 records",
				"Invalid trip types: 2 records",
				"Invalid peak hour indicators: 1 records",
			},
		},
		{
			name: "bounds are inclusive",
			df: curatedFrame(
				[]float64{100, 0},
				[]float64{0, 100},
				[]string{"short", "long"},
				[]int{0, 1}),
			want: []string{},
		},
		{
			name: "missing numeric values are not flagged",
			df: dataframe.New(
				series.New([]float64{math.NaN(), 20}, series.Float, domain.ColTripSpeedMPH),
				series.New([]float64{math.NaN(), 5}, series.Float, domain.ColTipPercentage),
			),
			want: []string{},
		},
		{
			name: "missing categorical values are flagged",
			df: dataframe.New(
				series.New([]string{"NaN", "short"}, series.String, domain.ColTripType),
				series.New([]string{"", "1"}, series.String, domain.ColIsPeakHour),
			),
			want: []string{
				"Invalid trip types: 1 records",
				"Invalid peak hour indicators: 1 records",
			},
		},
		{
			name: "unrelated columns only",
			df:   dataframe.New(series.New([]float64{1000}, series.Float, domain.ColTripDistance)),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.df.Err)
			got := NewCuratedValidator(nil).Validate(tt.df)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCuratedValidatorDoesNotMutate(t *testing.T) {
	df := curatedFrame([]float64{150}, []float64{-5}, []string{"bogus"}, []int{7})
	before := df.Records()

	NewCuratedValidator(nil).Validate(df)
	assert.Equal(t, before, df.Records())
}

func TestCuratedValidatorPeakFlagFormats(t *testing.T) {
	df := dataframe.New(series.New(
		[]string{"0", "1", "1.0", "0.000000", " 1 ", "2", "yes", "-1"},
		series.String, domain.ColIsPeakHour))

	checks := NewCuratedValidator(nil).Check(df)
	require.Len(t, checks, 4)
	assert.Equal(t, domain.ColIsPeakHour, checks[3].Column)
	assert.True(t, checks[3].Present)
	assert.Equal(t, 3, checks[3].Violations)
}

func TestCuratedValidatorCheck(t *testing.T) {
	df := dataframe.New(series.New([]float64{150, 20}, series.Float, domain.ColTripSpeedMPH))

	checks := NewCuratedValidator(nil).Check(df)
	require.Len(t, checks, 4)

	assert.Equal(t, ColumnCheck{
		Column:     domain.ColTripSpeedMPH,
		Present:    true,
		Violations: 1,
		Message:    "Unrealistic speeds found: 1 records",
	}, checks[0])
	assert.False(t, checks[0].Passed())

	for _, c := range checks[1:] {
		assert.False(t, c.Present, c.Column)
		assert.True(t, c.Passed(), c.Column)
	}
	assert.Equal(t, 1, TotalViolations(checks))
}

func writeEnriched(t *testing.T, input string) string {
	t.Helper()

	table, err := dataprocessing.ReadRaw(strings.NewReader(input))
	require.NoError(t, err)
	cleaned, _, err := dataprocessing.NewCleaner(config.TimestampPolicyDrop, nil).Clean(table)
	require.NoError(t, err)
	enriched := dataprocessing.NewFeatureDeriver(nil).Derive(cleaned)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(dataprocessing.EnrichedHeader(table.Header)))
	require.NoError(t, w.WriteAll(dataprocessing.EnrichedRows(table.Header, enriched)))

	return testutil.WriteFile(t, t.TempDir(), "enriched.csv", buf.String())
}

func TestCuratedValidatorPipelineOutputIsValid(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := writeEnriched(t, testutil.SampleRawCSV)

	checks, err := NewCuratedValidator(logger).CheckFile(path)
	require.NoError(t, err)
	assert.Empty(t, Messages(checks))

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "validation completed")
	assert.True(t, handler.ContainsAttr("rows", int64(4)))
	assert.True(t, handler.ContainsAttr("path", path))
}

func TestCuratedValidatorNegativeTipIsFlagged(t *testing.T) {
	path := writeEnriched(t, testutil.RawCSV(testutil.RawHeader,
		"2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,-2",
		"2024-01-15 09:00:00,2024-01-15 09:10:00,1,10,2"))

	checks, err := NewCuratedValidator(nil).CheckFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Invalid tip percentages: 1 records"}, Messages(checks))
}

func TestCuratedValidatorCheckFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "header only",
			input: testutil.EnrichedHeader + "\n",
			want:  []string{},
		},
		{
			name:  "violations in file",
			input: testutil.EnrichedHeader + "\n150,10,short,1\n20,10,weird,0\n",
			want: []string{
				"Unrealistic speeds found: 1 records",
				"Invalid trip types: 1 records",
			},
		},
		{
			name:  "empty trip type cell",
			input: testutil.EnrichedHeader + "\n20,10,,0\n",
			want:  []string{"Invalid trip types: 1 records"},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "enriched.csv", tt.input)
			checks, err := NewCuratedValidator(nil).CheckFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Messages(checks))
		})
	}
}

func TestCuratedValidatorFileErrors(t *testing.T) {
	_, err := NewCuratedValidator(nil).CheckFile(t.TempDir() + "/missing.csv")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
