// Package shared holds helpers used across the taxi pipeline packages that
// don't belong to any single stage.
//
// The testutil subpackage provides an slog capture handler and CSV fixture
// builders for raw and enriched trip tables:
//
//	func TestCurate(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteFile(t, t.TempDir(), "raw.csv", testutil.SampleRawCSV)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "stage_completed")
//	}
package shared
