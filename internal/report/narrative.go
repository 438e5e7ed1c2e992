package report

import (
	"fmt"
	"strings"

	"taxicli/internal/config"
	"taxicli/pkg/contracts/domain"
)

// Narrative writes the default Markdown article for a dataset summary.
// violations are the validator messages of the same dataset.
func Narrative(s domain.DatasetSummary, violations []string) string {
	var b strings.Builder

	b.WriteString("# NYC Taxi Trip Features\n\n")
	b.WriteString("## Data Source and Preprocessing\n\n")
	fmt.Fprintf(&b, "The curated dataset holds **%d** trips", s.Rows)
	if s.Source != "" {
		fmt.Fprintf(&b, " read from `%s`", s.Source)
	}
	b.WriteString(". Rows without pickup or dropoff timestamps, with non-positive distance, ")
	b.WriteString("non-positive fare total or non-positive duration were dropped before enrichment.\n\n")

	b.WriteString("## Feature Engineering Implementation\n\n")
	fmt.Fprintf(&b, "- **trip_speed_mph**: distance over duration in hours, capped at %g mph.\n", config.MaxTripSpeedMPH)
	fmt.Fprintf(&b, "- **tip_percentage**: tip over total fare, capped at %g%%; zero when the total is zero.\n", config.MaxTipPercentage)
	fmt.Fprintf(&b, "- **is_peak_hour**: 1 for pickups at hours %s, otherwise 0.\n", peakHourList())
	fmt.Fprintf(&b, "- **trip_type**: short up to %g minutes, medium up to %g minutes, long beyond.\n\n",
		config.ShortTripMaxMinutes, config.MediumTripMaxMinutes)

	b.WriteString("## Results and Analysis\n\n")
	b.WriteString("| Metric | Mean | Median | Min | Max |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Speed (mph) | %.2f | %.2f | %.2f | %.2f |\n", s.Speed.Mean, s.Speed.Median, s.Speed.Min, s.Speed.Max)
	fmt.Fprintf(&b, "| Tip (%%) | %.2f | %.2f | %.2f | %.2f |\n\n", s.Tip.Mean, s.Tip.Median, s.Tip.Min, s.Tip.Max)

	b.WriteString("| Trip type | Trips | Share | Median tip (%) |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for i, c := range s.TripTypes {
		median := 0.0
		if i < len(s.TipByType) {
			median = s.TipByType[i].Median
		}
		fmt.Fprintf(&b, "| %s | %d | %.1f%% | %.2f |\n", c.Label, c.Count, c.Share*100, median)
	}
	b.WriteString("\n")

	for _, c := range s.PeakHours {
		if c.Label == "Peak" {
			fmt.Fprintf(&b, "Peak-hour pickups account for %.1f%% of trips.\n\n", c.Share*100)
		}
	}

	b.WriteString("## Data Validation Framework\n\n")
	if len(violations) == 0 {
		b.WriteString("All derived columns passed validation: speeds within bounds, tip percentages in ")
		b.WriteString("[0, 100], trip types and peak indicators from their allowed sets.\n")
	} else {
		b.WriteString("The validator reported:\n\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}

	return b.String()
}

func peakHourList() string {
	parts := make([]string, len(config.PeakHours))
	for i, h := range config.PeakHours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
