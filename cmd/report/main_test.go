package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/cli"
	"taxicli/internal/config"
	"taxicli/internal/infrastructure"
	"taxicli/internal/report"
	"taxicli/internal/shared/testutil"
)

const enriched = `trip_distance,trip_duration,trip_speed_mph,tip_percentage,is_peak_hour,trip_type
10,600,60,25,1,short
2,1200,6,10,0,medium
30,2700,40,0,1,long
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TAXI_PATHS_BASE_DIR", dir)
	t.Setenv("TAXI_TELEMETRY_METRICS_ENABLED", "false")
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	testutil.WriteFile(t, dir, "data/nyc_taxi_enriched.csv", enriched)
	return dir
}

func TestRunHTML(t *testing.T) {
	dir := setup(t)

	var stdout, stderr bytes.Buffer
	require.Equal(t, cli.ExitOK, run(nil, &stdout, &stderr), stderr.String())

	htmlPath := filepath.Join(dir, "reports", "report.html")
	assert.Equal(t,
		"HTML report saved to "+htmlPath+"\nAuthor: "+config.DefaultReportAuthor+"\n",
		stdout.String())

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<svg")
	assert.Contains(t, string(html), config.ProjectName)
}

func TestRunMarkdownAndAuthor(t *testing.T) {
	dir := setup(t)
	md := testutil.WriteFile(t, dir, "notes.md", "# Findings\n\nPeak trips tip more.\n")
	out := filepath.Join(dir, "custom", "out.html")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-md", md, "-out", out, "-author", "Fleet Analytics"}, &stdout, &stderr)
	require.Equal(t, cli.ExitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Author: Fleet Analytics\n")

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Peak trips tip more.")
	assert.Contains(t, string(html), "Fleet Analytics")
}

func TestRunErrors(t *testing.T) {
	dir := setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"-in", filepath.Join(dir, "absent.csv")}, want: "not found."},
		{name: "missing markdown", args: []string{"-md", filepath.Join(dir, "absent.md")}, want: "Markdown file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, cli.ExitFailure, run(tt.args, &stdout, &stderr))
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRunPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chrome test in short mode")
	}
	if _, ok := report.FindChrome(); !ok {
		t.Skip("chrome not available")
	}
	dir := setup(t)

	var stdout, stderr bytes.Buffer
	require.Equal(t, cli.ExitOK, run([]string{"-pdf"}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "PDF generated successfully: "+filepath.Join(dir, "reports", "report.pdf"))
}
