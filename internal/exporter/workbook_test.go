package exporter

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/shared/testutil"
	"taxicli/pkg/contracts/domain"
)

func nan() float64 {
	return math.NaN()
}

func sampleSummary(t *testing.T) domain.DatasetSummary {
	t.Helper()

	table, err := dataprocessing.ReadRaw(strings.NewReader(testutil.SampleRawCSV))
	require.NoError(t, err)
	cleaned, _, err := dataprocessing.NewCleaner(config.TimestampPolicyDrop, nil).Clean(table)
	require.NoError(t, err)
	records := dataprocessing.NewFeatureDeriver(nil).Derive(cleaned)

	return dataprocessing.NewSummarizer(nil, dataprocessing.SummaryOptions{}).Summarize(records)
}

func TestWorkbookExporter_Build(t *testing.T) {
	f, err := NewWorkbookExporter(nil, "tester").Build(sampleSummary(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetSummary,
		SheetSpeedHist,
		SheetTipHist,
		SheetTripTypes,
		SheetPeakHours,
		SheetScatter,
		SheetTipByType,
		SheetSpeedByPeak,
		SheetCorrelation,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetTripTypes)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Trip Type", "Count", "Share"},
		{"short", "2", "0.5"},
		{"medium", "1", "0.25"},
		{"long", "1", "0.25"},
	}, rows)

	rows, err = f.GetRows(SheetSpeedHist)
	require.NoError(t, err)
	assert.Len(t, rows, config.DefaultSpeedBins+1)

	rows, err = f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	require.Len(t, rows, len(dataprocessing.CorrelationColumns)+1)
	assert.Equal(t, domain.ColTripDistance, rows[1][0])
	assert.Equal(t, "1", rows[1][1])

	formats, err := f.GetConditionalFormats(SheetCorrelation)
	require.NoError(t, err)
	require.Contains(t, formats, "B2:F6")
	assert.Equal(t, "3_color_scale", formats["B2:F6"][0].Type)
}

func TestWorkbookExporter_EmptySummary(t *testing.T) {
	empty := dataprocessing.NewSummarizer(nil, dataprocessing.SummaryOptions{}).Summarize(nil)

	f, err := NewWorkbookExporter(nil, "").Build(empty)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetScatter)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, cell := range rows[1][1:] {
		assert.Empty(t, cell, "undefined correlations stay empty")
	}
}

func TestWorkbookExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "nyc_taxi_features.xlsx")

	require.NoError(t, NewWorkbookExporter(nil, "tester").Export(path, sampleSummary(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Rows", "4"}, rows[3])

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "tester", props.Creator)
}

func TestWriteSummaryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "summary.json")
	summary := sampleSummary(t)

	require.NoError(t, WriteSummaryJSON(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(4), decoded["rows"])
	assert.Contains(t, decoded, "correlation")
	assert.NotContains(t, decoded, "Scatter")
}

func TestExportPlots(t *testing.T) {
	dir := t.TempDir()
	enriched := writeEnrichedFixture(t, dir)

	summary, err := NewWorkbookExporter(nil, "").ExportPlots(
		dataprocessing.NewSummarizer(nil, dataprocessing.SummaryOptions{}),
		enriched, filepath.Join(dir, "plots"), "features.xlsx", "summary.json")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Rows)
	assert.FileExists(t, filepath.Join(dir, "plots", "features.xlsx"))
	assert.FileExists(t, filepath.Join(dir, "plots", "summary.json"))
}

func writeEnrichedFixture(t *testing.T, dir string) string {
	t.Helper()

	table, err := dataprocessing.ReadRaw(strings.NewReader(testutil.SampleRawCSV))
	require.NoError(t, err)
	cleaned, _, err := dataprocessing.NewCleaner(config.TimestampPolicyDrop, nil).Clean(table)
	require.NoError(t, err)
	records := dataprocessing.NewFeatureDeriver(nil).Derive(cleaned)

	stream, err := NewCSVWriter(nil, nil).CreateStreamWriter(filepath.Join(dir, "enriched.csv"),
		dataprocessing.EnrichedHeader(table.Header), false)
	require.NoError(t, err)
	for _, row := range dataprocessing.EnrichedRows(table.Header, records) {
		require.NoError(t, stream.WriteRecord(row))
	}
	require.NoError(t, stream.Close())
	return stream.Path()
}
