package domain

import "time"

// Column names of the trip table.
const (
	ColPickupDatetime  = "pickup_datetime"
	ColDropoffDatetime = "dropoff_datetime"
	ColTripDistance    = "trip_distance"
	ColTotalAmount     = "total_amount"
	ColTipAmount       = "tip_amount"
	ColTripDuration    = "trip_duration"
	ColPickupHour      = "pickup_hour"
	ColTripSpeedMPH    = "trip_speed_mph"
	ColTipPercentage   = "tip_percentage"
	ColIsPeakHour      = "is_peak_hour"
	ColTripType        = "trip_type"
)

// RequiredColumns must be present in every raw input file.
var RequiredColumns = []string{
	ColPickupDatetime,
	ColDropoffDatetime,
	ColTripDistance,
	ColTotalAmount,
	ColTipAmount,
}

// DerivedColumns are appended to the enriched output, in this order,
// unless the input already carries a column of the same name.
var DerivedColumns = []string{
	ColTripDuration,
	ColPickupHour,
	ColTripSpeedMPH,
	ColTipPercentage,
	ColIsPeakHour,
	ColTripType,
}

// TripType is the duration bucket of a trip. The zero value is the
// undefined category produced for non-positive durations.
type TripType string

const (
	TripTypeShort     TripType = "short"
	TripTypeMedium    TripType = "medium"
	TripTypeLong      TripType = "long"
	TripTypeUndefined TripType = ""
)

// TripTypes lists the defined categories in display order.
var TripTypes = []TripType{TripTypeShort, TripTypeMedium, TripTypeLong}

// IsValid reports whether t is one of the defined categories.
func (t TripType) IsValid() bool {
	switch t {
	case TripTypeShort, TripTypeMedium, TripTypeLong:
		return true
	}
	return false
}

func (t TripType) String() string {
	return string(t)
}

// RawTrip is one data row of the raw input. Cells holds the original
// values in header order; the pointer fields are nil when the cell is
// empty or not numeric.
type RawTrip struct {
	Line            int      `json:"line"`
	Cells           []string `json:"cells"`
	PickupDatetime  string   `json:"pickup_datetime"`
	DropoffDatetime string   `json:"dropoff_datetime"`
	TripDistance    *float64 `json:"trip_distance,omitempty"`
	TotalAmount     *float64 `json:"total_amount,omitempty"`
	TipAmount       *float64 `json:"tip_amount,omitempty"`
	TripDuration    *float64 `json:"trip_duration,omitempty"`
}

// TripRecord is a cleaned trip, enriched once features are derived.
type TripRecord struct {
	Line            int       `json:"line"`
	Cells           []string  `json:"-"`
	PickupDatetime  time.Time `json:"pickup_datetime"`
	DropoffDatetime time.Time `json:"dropoff_datetime"`
	TripDistance    float64   `json:"trip_distance"`
	TotalAmount     float64   `json:"total_amount"`
	TipAmount       *float64  `json:"tip_amount,omitempty"`
	TripDuration    float64   `json:"trip_duration"`
	PickupHour      int       `json:"pickup_hour"`

	TripSpeedMPH  float64  `json:"trip_speed_mph"`
	TipPercentage float64  `json:"tip_percentage"`
	IsPeakHour    int      `json:"is_peak_hour"`
	TripType      TripType `json:"trip_type"`
}

// DropReason names the cleaning filter that rejected a row.
type DropReason string

const (
	DropMissingField         DropReason = "missing_field"
	DropNonPositiveDistance  DropReason = "non_positive_distance"
	DropNonPositiveTotal     DropReason = "non_positive_total"
	DropUnparseableTimestamp DropReason = "unparseable_timestamp"
	DropNonPositiveDuration  DropReason = "non_positive_duration"
)

// DropReasons lists every reason in the order the filters are applied.
var DropReasons = []DropReason{
	DropMissingField,
	DropNonPositiveDistance,
	DropNonPositiveTotal,
	DropUnparseableTimestamp,
	DropNonPositiveDuration,
}

// CleanStats counts what the cleaner did with its input.
type CleanStats struct {
	RowsRead int                `json:"rows_read"`
	RowsKept int                `json:"rows_kept"`
	Dropped  map[DropReason]int `json:"dropped"`
}

// NewCleanStats returns stats with every reason initialised to zero.
func NewCleanStats() CleanStats {
	dropped := make(map[DropReason]int, len(DropReasons))
	for _, r := range DropReasons {
		dropped[r] = 0
	}
	return CleanStats{Dropped: dropped}
}

// RowsDropped is the total number of rejected rows.
func (s CleanStats) RowsDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}
