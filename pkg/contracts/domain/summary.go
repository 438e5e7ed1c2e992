package domain

import (
	"encoding/json"
	"math"
	"time"
)

// HistogramBin is one equal-width bin of a histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram holds bins over [Min, Max].
type Histogram struct {
	Column string         `json:"column"`
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
	Bins   []HistogramBin `json:"bins"`
}

// ColumnStats are the descriptive statistics of one numeric column.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// BoxStats is the five-number summary of a group.
type BoxStats struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// CategoryCount is a labelled count with its share of the total.
type CategoryCount struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// CorrelationMatrix is a square Pearson matrix over Columns. A cell is
// NaN when either column has zero variance; JSON encoding maps it to null.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"-"`
}

// ScatterPoint pairs a trip distance with its speed.
type ScatterPoint struct {
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
}

// DatasetSummary aggregates an enriched dataset for plots, reports and the API.
type DatasetSummary struct {
	Source       string            `json:"source"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Rows         int               `json:"rows"`
	Speed        ColumnStats       `json:"speed"`
	Tip          ColumnStats       `json:"tip_percentage"`
	SpeedHist    Histogram         `json:"speed_histogram"`
	TipHist      Histogram         `json:"tip_histogram"`
	PeakSpeed    Histogram         `json:"peak_speed_histogram"`
	OffPeakSpeed Histogram         `json:"off_peak_speed_histogram"`
	TripTypes    []CategoryCount   `json:"trip_types"`
	PeakHours    []CategoryCount   `json:"peak_hours"`
	TipByType    []BoxStats        `json:"tip_by_trip_type"`
	Correlation  CorrelationMatrix `json:"correlation"`
	Scatter      []ScatterPoint    `json:"-"`
}

// MarshalJSON writes NaN cells as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			v := v
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{Columns: m.Columns, Values: values})
}
