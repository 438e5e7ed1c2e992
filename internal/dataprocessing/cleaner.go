package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taxicli/internal/config"
	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// timestampLayouts are tried in order. Fractional seconds after the seconds
// field are accepted by time.Parse even when the layout omits them, and
// layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// ParseTimestamp parses a trip timestamp in any accepted layout.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Cleaner filters raw trips down to complete, positive-valued records.
type Cleaner struct {
	policy string
	logger *slog.Logger
}

// NewCleaner creates a cleaner. policy is config.TimestampPolicyDrop or
// config.TimestampPolicyFail; anything else behaves as drop.
func NewCleaner(policy string, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		policy: policy,
		logger: logger.With(slog.String("component", "cleaner")),
	}
}

// Clean returns the rows that pass every filter, in input order:
// pickup, dropoff and distance present; distance > 0; total > 0;
// parseable timestamps; duration > 0. pickup_hour is derived for every
// kept row. Rejected rows are counted, never corrected.
func (c *Cleaner) Clean(table *RawTable) ([]domain.TripRecord, domain.CleanStats, error) {
	stats := domain.NewCleanStats()
	if table == nil {
		return nil, stats, nil
	}

	stats.RowsRead = len(table.Trips)
	derive := !table.HasTripDuration()
	records := make([]domain.TripRecord, 0, len(table.Trips))

	for _, raw := range table.Trips {
		rec, reason, err := c.cleanRow(raw, derive)
		if err != nil {
			return nil, stats, err
		}
		if reason != "" {
			stats.Dropped[reason]++
			c.logger.Debug("row dropped",
				slog.Int("line", raw.Line),
				slog.String("reason", string(reason)))
			continue
		}
		records = append(records, rec)
	}

	stats.RowsKept = len(records)

	c.logger.Info("rows cleaned",
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows_kept", stats.RowsKept),
		slog.Int("rows_dropped", stats.RowsDropped()),
		slog.Bool("duration_derived", derive))

	return records, stats, nil
}

func (c *Cleaner) cleanRow(raw domain.RawTrip, deriveDuration bool) (domain.TripRecord, domain.DropReason, error) {
	if raw.PickupDatetime == "" || raw.DropoffDatetime == "" || raw.TripDistance == nil {
		return domain.TripRecord{}, domain.DropMissingField, nil
	}
	if !(*raw.TripDistance > 0) {
		return domain.TripRecord{}, domain.DropNonPositiveDistance, nil
	}
	if raw.TotalAmount == nil || !(*raw.TotalAmount > 0) {
		return domain.TripRecord{}, domain.DropNonPositiveTotal, nil
	}

	pickup, err := ParseTimestamp(raw.PickupDatetime)
	if err != nil {
		return c.timestampFailure(raw, domain.ColPickupDatetime, err)
	}
	dropoff, err := ParseTimestamp(raw.DropoffDatetime)
	if err != nil {
		return c.timestampFailure(raw, domain.ColDropoffDatetime, err)
	}

	var duration float64
	if deriveDuration {
		duration = dropoff.Sub(pickup).Seconds()
	} else if raw.TripDuration != nil {
		duration = *raw.TripDuration
	}
	if !(duration > 0) {
		return domain.TripRecord{}, domain.DropNonPositiveDuration, nil
	}

	return domain.TripRecord{
		Line:            raw.Line,
		Cells:           raw.Cells,
		PickupDatetime:  pickup,
		DropoffDatetime: dropoff,
		TripDistance:    *raw.TripDistance,
		TotalAmount:     *raw.TotalAmount,
		TipAmount:       raw.TipAmount,
		TripDuration:    duration,
		PickupHour:      pickup.Hour(),
	}, "", nil
}

func (c *Cleaner) timestampFailure(raw domain.RawTrip, column string, cause error) (domain.TripRecord, domain.DropReason, error) {
	if c.policy == config.TimestampPolicyFail {
		return domain.TripRecord{}, "", apperrors.NewParsingError(
			fmt.Sprintf("unparseable %s on line %d", column, raw.Line), cause).
			WithContext("line", raw.Line).
			WithContext("column", column)
	}
	return domain.TripRecord{}, domain.DropUnparseableTimestamp, nil
}
