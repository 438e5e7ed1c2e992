package config

// Application constants
const (
	AppName    = "taxicli"
	AppVersion = "1.0.0"

	ProjectName         = "NYC Taxi Data Enrichment Pipeline"
	DefaultReportAuthor = "Data Engineering Team"
)

// Timestamp policies for rows whose pickup or dropoff cannot be parsed.
const (
	TimestampPolicyDrop = "drop"
	TimestampPolicyFail = "fail"
)

// Feature derivation bounds. These values are part of the data contract
// and are shared by the deriver and the validator.
const (
	SecondsPerHour   = 3600.0
	SecondsPerMinute = 60.0

	MaxTripSpeedMPH  = 100.0
	MaxTipPercentage = 100.0

	// Trip type bins over duration in minutes: (0,10] (10,30] (30,inf).
	ShortTripMaxMinutes  = 10.0
	MediumTripMaxMinutes = 30.0
)

// PeakHours are the pickup hours flagged by is_peak_hour.
var PeakHours = [...]int{7, 8, 17, 18}

// Plot defaults
const (
	DefaultSpeedBins     = 30
	DefaultTipBins       = 20
	DefaultScatterSample = 2000
)
