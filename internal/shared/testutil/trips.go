package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RawHeader is the minimal raw input header.
const RawHeader = "pickup_datetime,dropoff_datetime,trip_distance,total_amount,tip_amount"

// SampleRawCSV has eight data rows; four survive cleaning.
//
//	line 2: 10 mi in 10 min at 08:00, kept (60 mph, short, peak)
//	line 3: 2 mi in 20 min at 12:30, kept (6 mph, medium)
//	line 4: zero distance, dropped
//	line 5: zero total, dropped
//	line 6: dropoff before pickup, dropped
//	line 7: missing dropoff, dropped
//	line 8: 30 mi in 45 min at 17:15, total 0 tip, kept (40 mph, long, peak)
//	line 9: 50 mi in 10 min at 23:00, kept (speed clipped to 100)
const SampleRawCSV = RawHeader + `
2024-01-15 08:00:00,2024-01-15 08:10:00,10,20,5
2024-01-15 12:30:00,2024-01-15 12:50:00,2,10,1
2024-01-15 13:00:00,2024-01-15 13:10:00,0,10,1
2024-01-15 14:00:00,2024-01-15 14:10:00,1,0,0
2024-01-15 15:10:00,2024-01-15 15:00:00,1,10,1
2024-01-15 16:00:00,,1,10,1
2024-01-15 17:15:00,2024-01-15 18:00:00,30,80,0
2024-01-15 23:00:00,2024-01-15 23:10:00,50,100,10
`

// RawCSV joins a header and rows into CSV text.
func RawCSV(header string, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

// EnrichedHeader is the header of a minimal enriched file.
const EnrichedHeader = "trip_speed_mph,tip_percentage,trip_type,is_peak_hour"

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
