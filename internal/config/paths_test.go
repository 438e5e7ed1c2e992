package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsResolve(t *testing.T) {
	base := t.TempDir()
	cfg := Default().Paths
	cfg.BaseDir = base
	cfg.RunsDB = filepath.Join(base, "elsewhere", "runs.db")

	paths, err := cfg.Resolve()
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "nyc_taxi_raw.csv"), paths.RawFile)
	assert.Equal(t, filepath.Join(base, "data", "nyc_taxi_enriched.csv"), paths.EnrichedFile)
	assert.Equal(t, filepath.Join(base, "elsewhere", "runs.db"), paths.RunsDB)
	assert.Equal(t, filepath.Join(base, "plots", "chart.xlsx"), paths.PlotPath("chart.xlsx"))
	assert.Equal(t, filepath.Join(base, "reports", "report.html"), paths.ReportPath("report.html"))
	assert.Equal(t, "/abs/report.pdf", paths.ReportPath("/abs/report.pdf"))
}

func TestPathsResolveDefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	paths, err := Default().Paths.Resolve()
	require.NoError(t, err)
	assert.Equal(t, wd, paths.BaseDir)
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default().Paths
	cfg.BaseDir = t.TempDir()

	paths, err := cfg.Resolve()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{filepath.Dir(paths.EnrichedFile), paths.PlotsDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.csv")))
}
