package dataprocessing

import (
	"log/slog"
	"math"

	"taxicli/internal/config"
	"taxicli/pkg/contracts/domain"
)

// TripSpeedMPH converts distance in miles over duration in seconds to miles
// per hour, capped at config.MaxTripSpeedMPH. There is no lower bound.
func TripSpeedMPH(distance, durationSeconds float64) float64 {
	speed := distance / (durationSeconds / config.SecondsPerHour)
	if speed > config.MaxTripSpeedMPH {
		return config.MaxTripSpeedMPH
	}
	return speed
}

// TipPercentage is tip over total times 100, capped at
// config.MaxTipPercentage. A zero total or a missing tip yields 0.
// Negative tips are kept as negative percentages.
func TipPercentage(tip *float64, total float64) float64 {
	if tip == nil || total == 0 {
		return 0
	}
	pct := *tip / total * 100
	if math.IsNaN(pct) {
		return 0
	}
	if pct > config.MaxTipPercentage {
		return config.MaxTipPercentage
	}
	return pct
}

// IsPeakHour returns 1 when hour is one of config.PeakHours, else 0.
func IsPeakHour(hour int) int {
	for _, h := range config.PeakHours {
		if hour == h {
			return 1
		}
	}
	return 0
}

// ClassifyTripType bins the duration in minutes into (0,10] short,
// (10,30] medium and (30,inf) long. Non-positive durations get the
// undefined category.
func ClassifyTripType(durationSeconds float64) domain.TripType {
	minutes := durationSeconds / config.SecondsPerMinute
	switch {
	case !(minutes > 0):
		return domain.TripTypeUndefined
	case minutes <= config.ShortTripMaxMinutes:
		return domain.TripTypeShort
	case minutes <= config.MediumTripMaxMinutes:
		return domain.TripTypeMedium
	default:
		return domain.TripTypeLong
	}
}

// FeatureDeriver adds the analytic columns to cleaned records.
type FeatureDeriver struct {
	logger *slog.Logger
}

// NewFeatureDeriver creates a feature deriver
func NewFeatureDeriver(logger *slog.Logger) *FeatureDeriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureDeriver{logger: logger.With(slog.String("component", "feature_deriver"))}
}

// Derive returns a copy of records with speed, tip percentage, peak flag
// and trip type set. The input slice is not modified and no rows are added
// or removed.
func (d *FeatureDeriver) Derive(records []domain.TripRecord) []domain.TripRecord {
	out := make([]domain.TripRecord, len(records))
	undefined := 0

	for i, rec := range records {
		rec.TripSpeedMPH = TripSpeedMPH(rec.TripDistance, rec.TripDuration)
		rec.TipPercentage = TipPercentage(rec.TipAmount, rec.TotalAmount)
		rec.IsPeakHour = IsPeakHour(rec.PickupHour)
		rec.TripType = ClassifyTripType(rec.TripDuration)
		if rec.TripType == domain.TripTypeUndefined {
			undefined++
		}
		out[i] = rec
	}

	d.logger.Info("features derived",
		slog.Int("rows", len(out)),
		slog.Int("undefined_trip_type", undefined))

	return out
}
