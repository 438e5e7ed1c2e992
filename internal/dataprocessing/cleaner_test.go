package dataprocessing

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/config"
	apperrors "taxicli/internal/errors"
	"taxicli/internal/shared/testutil"
	"taxicli/pkg/contracts/domain"
)

func mustReadRaw(t *testing.T, input string) *RawTable {
	t.Helper()
	table, err := ReadRaw(strings.NewReader(input))
	require.NoError(t, err)
	return table
}

func TestCleanerSample(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	cleaner := NewCleaner(config.TimestampPolicyDrop, logger)

	records, stats, err := cleaner.Clean(mustReadRaw(t, testutil.SampleRawCSV))
	require.NoError(t, err)

	require.Len(t, records, 4)
	lines := make([]int, len(records))
	for i, r := range records {
		lines[i] = r.Line
	}
	assert.Equal(t, []int{2, 3, 8, 9}, lines)

	assert.Equal(t, 8, stats.RowsRead)
	assert.Equal(t, 4, stats.RowsKept)
	assert.Equal(t, 4, stats.RowsDropped())
	assert.Equal(t, 1, stats.Dropped[domain.DropMissingField])
	assert.Equal(t, 1, stats.Dropped[domain.DropNonPositiveDistance])
	assert.Equal(t, 1, stats.Dropped[domain.DropNonPositiveTotal])
	assert.Equal(t, 1, stats.Dropped[domain.DropNonPositiveDuration])
	assert.Equal(t, 0, stats.Dropped[domain.DropUnparseableTimestamp])

	first := records[0]
	assert.Equal(t, 600.0, first.TripDuration)
	assert.Equal(t, 8, first.PickupHour)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), first.PickupDatetime)
	assert.Equal(t, []int{8, 12, 17, 23}, []int{records[0].PickupHour, records[1].PickupHour, records[2].PickupHour, records[3].PickupHour})

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "rows cleaned")
	assert.True(t, handler.ContainsAttr("rows_kept", int64(4)))
	testutil.AssertNoErrors(t, handler)
}

func TestCleanerKeptRowsSatisfyFilters(t *testing.T) {
	records, _, err := NewCleaner(config.TimestampPolicyDrop, nil).Clean(mustReadRaw(t, testutil.SampleRawCSV))
	require.NoError(t, err)

	for _, r := range records {
		assert.Greater(t, r.TripDistance, 0.0)
		assert.Greater(t, r.TotalAmount, 0.0)
		assert.Greater(t, r.TripDuration, 0.0)
		assert.False(t, r.PickupDatetime.IsZero())
		assert.False(t, r.DropoffDatetime.IsZero())
	}
}

func TestCleanerRowRules(t *testing.T) {
	tests := []struct {
		name   string
		header string
		row    string
		keep   bool
		reason domain.DropReason
	}{
		{
			name: "complete row",
			row:  "2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,1",
			keep: true,
		},
		{
			name: "missing tip is kept",
			row:  "2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,",
			keep: true,
		},
		{
			name:   "missing pickup",
			row:    ",2024-01-15 08:10:00,1,10,1",
			reason: domain.DropMissingField,
		},
		{
			name:   "missing distance",
			row:    "2024-01-15 08:00:00,2024-01-15 08:10:00,,10,1",
			reason: domain.DropMissingField,
		},
		{
			name:   "negative distance",
			row:    "2024-01-15 08:00:00,2024-01-15 08:10:00,-1,10,1",
			reason: domain.DropNonPositiveDistance,
		},
		{
			name:   "missing total",
			row:    "2024-01-15 08:00:00,2024-01-15 08:10:00,1,,1",
			reason: domain.DropNonPositiveTotal,
		},
		{
			name:   "unparseable pickup",
			row:    "yesterday,2024-01-15 08:10:00,1,10,1",
			reason: domain.DropUnparseableTimestamp,
		},
		{
			name:   "equal timestamps",
			row:    "2024-01-15 08:00:00,2024-01-15 08:00:00,1,10,1",
			reason: domain.DropNonPositiveDuration,
		},
		{
			name:   "duration column wins over timestamps",
			header: testutil.RawHeader + ",trip_duration",
			row:    "2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,1,0",
			reason: domain.DropNonPositiveDuration,
		},
		{
			name:   "empty duration column",
			header: testutil.RawHeader + ",trip_duration",
			row:    "2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,1,",
			reason: domain.DropNonPositiveDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if header == "" {
				header = testutil.RawHeader
			}
			records, stats, err := NewCleaner(config.TimestampPolicyDrop, nil).
				Clean(mustReadRaw(t, testutil.RawCSV(header, tt.row)))
			require.NoError(t, err)

			if tt.keep {
				assert.Len(t, records, 1)
				assert.Equal(t, 0, stats.RowsDropped())
				return
			}
			assert.Empty(t, records)
			assert.Equal(t, 1, stats.Dropped[tt.reason])
		})
	}
}

func TestCleanerUsesInputDuration(t *testing.T) {
	input := testutil.RawCSV(testutil.RawHeader+",trip_duration",
		"2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,1,120")

	records, _, err := NewCleaner(config.TimestampPolicyDrop, nil).Clean(mustReadRaw(t, input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 120.0, records[0].TripDuration)
}

func TestCleanerFailPolicy(t *testing.T) {
	input := testutil.RawCSV(testutil.RawHeader,
		"2024-01-15 08:00:00,2024-01-15 08:10:00,1,10,1",
		"2024-01-15 08:00:00,soon,1,10,1")

	_, _, err := NewCleaner(config.TimestampPolicyFail, nil).Clean(mustReadRaw(t, input))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	assert.Contains(t, err.Error(), "dropoff_datetime")
	assert.Contains(t, err.Error(), "line 3")
}

func TestCleanerEmptyTable(t *testing.T) {
	records, stats, err := NewCleaner(config.TimestampPolicyDrop, nil).
		Clean(mustReadRaw(t, testutil.RawCSV(testutil.RawHeader)))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.RowsRead)

	records, _, err = NewCleaner(config.TimestampPolicyDrop, nil).Clean(nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 8, 5, 30, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-15 08:05:30", want: want},
		{in: "2024-01-15T08:05:30", want: want},
		{in: "2024-01-15T08:05:30Z", want: want},
		{in: " 2024-01-15 08:05:30 ", want: want},
		{in: "01/15/2024 08:05:30", want: want},
		{in: "2024-01-15 08:05", want: time.Date(2024, 1, 15, 8, 5, 0, 0, time.UTC)},
		{in: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2024-01-15 08:05:30.250", want: want.Add(250 * time.Millisecond)},
		{in: "", wantErr: true},
		{in: "not a time", wantErr: true},
		{in: "2024-13-45 08:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
