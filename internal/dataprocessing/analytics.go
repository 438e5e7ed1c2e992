package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"taxicli/internal/config"
	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// CorrelationColumns are the feature columns of the correlation matrix.
var CorrelationColumns = []string{
	domain.ColTripDistance,
	domain.ColTripDuration,
	domain.ColTripSpeedMPH,
	domain.ColTipPercentage,
	domain.ColIsPeakHour,
}

// SummaryOptions controls histogram resolution and scatter sampling.
type SummaryOptions struct {
	SpeedBins     int
	TipBins       int
	ScatterSample int
}

// DefaultSummaryOptions returns the plot defaults
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{
		SpeedBins:     config.DefaultSpeedBins,
		TipBins:       config.DefaultTipBins,
		ScatterSample: config.DefaultScatterSample,
	}
}

// Summarizer computes the statistics behind the plots, the report and the
// dataset API.
type Summarizer struct {
	opts   SummaryOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewSummarizer creates a summarizer; zero option fields take defaults.
func NewSummarizer(logger *slog.Logger, opts SummaryOptions) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSummaryOptions()
	if opts.SpeedBins <= 0 {
		opts.SpeedBins = def.SpeedBins
	}
	if opts.TipBins <= 0 {
		opts.TipBins = def.TipBins
	}
	if opts.ScatterSample <= 0 {
		opts.ScatterSample = def.ScatterSample
	}
	return &Summarizer{
		opts:   opts,
		logger: logger.With(slog.String("component", "summarizer")),
		now:    time.Now,
	}
}

// featureColumns is the columnar view the statistics run over.
type featureColumns struct {
	distance []float64
	duration []float64
	speed    []float64
	tip      []float64
	peak     []float64
	types    []string
}

func (c featureColumns) byName(name string) []float64 {
	switch name {
	case domain.ColTripDistance:
		return c.distance
	case domain.ColTripDuration:
		return c.duration
	case domain.ColTripSpeedMPH:
		return c.speed
	case domain.ColTipPercentage:
		return c.tip
	case domain.ColIsPeakHour:
		return c.peak
	}
	return nil
}

// Summarize computes the summary of enriched records.
func (s *Summarizer) Summarize(records []domain.TripRecord) domain.DatasetSummary {
	cols := featureColumns{
		distance: make([]float64, len(records)),
		duration: make([]float64, len(records)),
		speed:    make([]float64, len(records)),
		tip:      make([]float64, len(records)),
		peak:     make([]float64, len(records)),
		types:    make([]string, len(records)),
	}
	for i, r := range records {
		cols.distance[i] = r.TripDistance
		cols.duration[i] = r.TripDuration
		cols.speed[i] = r.TripSpeedMPH
		cols.tip[i] = r.TipPercentage
		cols.peak[i] = float64(r.IsPeakHour)
		cols.types[i] = string(r.TripType)
	}
	return s.summarize(cols, "")
}

// SummarizeFile loads a persisted enriched CSV and summarizes it.
func (s *Summarizer) SummarizeFile(path string) (domain.DatasetSummary, error) {
	df, err := LoadEnrichedFile(path)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	summary, err := s.SummarizeFrame(df)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	summary.Source = path
	return summary, nil
}

// SummarizeFrame summarizes an enriched frame. Every correlation column and
// trip_type must be present.
func (s *Summarizer) SummarizeFrame(df dataframe.DataFrame) (domain.DatasetSummary, error) {
	if df.Err != nil {
		return domain.DatasetSummary{}, apperrors.NewParsingError("invalid enriched frame", df.Err)
	}

	names := make(map[string]bool)
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, want := range append(append([]string{}, CorrelationColumns...), domain.ColTripType) {
		if !names[want] {
			return domain.DatasetSummary{}, apperrors.NewParsingError(
				fmt.Sprintf("enriched data lacks column %s", want), nil)
		}
	}

	cols := featureColumns{
		distance: df.Col(domain.ColTripDistance).Float(),
		duration: df.Col(domain.ColTripDuration).Float(),
		speed:    df.Col(domain.ColTripSpeedMPH).Float(),
		tip:      df.Col(domain.ColTipPercentage).Float(),
		peak:     df.Col(domain.ColIsPeakHour).Float(),
		types:    df.Col(domain.ColTripType).Records(),
	}
	return s.summarize(cols, ""), nil
}

func (s *Summarizer) summarize(cols featureColumns, source string) domain.DatasetSummary {
	rows := len(cols.speed)

	summary := domain.DatasetSummary{
		Source:      source,
		GeneratedAt: s.now().UTC(),
		Rows:        rows,
		Speed:       describe(cols.speed),
		Tip:         describe(cols.tip),
		SpeedHist:   histogram(domain.ColTripSpeedMPH, cols.speed, s.opts.SpeedBins),
		TipHist:     histogram(domain.ColTipPercentage, cols.tip, s.opts.TipBins),
	}

	var peakSpeed, offPeakSpeed []float64
	for i, v := range cols.speed {
		switch cols.peak[i] {
		case 1:
			peakSpeed = append(peakSpeed, v)
		case 0:
			offPeakSpeed = append(offPeakSpeed, v)
		}
	}
	lo, hi := summary.SpeedHist.Min, summary.SpeedHist.Max
	summary.PeakSpeed = histogramRange(domain.ColTripSpeedMPH, peakSpeed, s.opts.SpeedBins, lo, hi)
	summary.OffPeakSpeed = histogramRange(domain.ColTripSpeedMPH, offPeakSpeed, s.opts.SpeedBins, lo, hi)

	summary.TripTypes = tripTypeCounts(cols.types, rows)
	summary.PeakHours = []domain.CategoryCount{
		category("Off-Peak", len(offPeakSpeed), rows),
		category("Peak", len(peakSpeed), rows),
	}
	summary.TipByType = tipBoxStats(cols)
	summary.Correlation = correlationMatrix(cols)
	summary.Scatter = scatterSample(cols, s.opts.ScatterSample)

	s.logger.Debug("dataset summarized",
		slog.Int("rows", rows),
		slog.Float64("mean_speed", summary.Speed.Mean),
		slog.Float64("mean_tip_percentage", summary.Tip.Mean))

	return summary
}

// finite drops NaN and infinite values.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func describe(values []float64) domain.ColumnStats {
	vals := finite(values)
	if len(vals) == 0 {
		return domain.ColumnStats{}
	}
	sort.Float64s(vals)

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return domain.ColumnStats{
		Count:  len(vals),
		Mean:   sum / float64(len(vals)),
		Min:    vals[0],
		Max:    vals[len(vals)-1],
		Median: quantile(vals, 0.5),
	}
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

func histogram(column string, values []float64, bins int) domain.Histogram {
	vals := finite(values)
	if len(vals) == 0 {
		return domain.Histogram{Column: column}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return histogramRange(column, vals, bins, lo, hi)
}

// histogramRange counts values into bins equal-width bins over [lo, hi].
// The last bin is closed on the right; values outside the range are skipped.
func histogramRange(column string, values []float64, bins int, lo, hi float64) domain.Histogram {
	h := domain.Histogram{Column: column, Min: lo, Max: hi}
	if bins <= 0 || !(hi > lo) {
		return h
	}

	width := (hi - lo) / float64(bins)
	h.Bins = make([]domain.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Bins[idx].Count++
	}
	return h
}

func category(label string, count, total int) domain.CategoryCount {
	c := domain.CategoryCount{Label: label, Count: count}
	if total > 0 {
		c.Share = float64(count) / float64(total)
	}
	return c
}

func tripTypeCounts(types []string, total int) []domain.CategoryCount {
	counts := make(map[string]int, len(domain.TripTypes))
	for _, t := range types {
		counts[t]++
	}
	out := make([]domain.CategoryCount, 0, len(domain.TripTypes))
	for _, t := range domain.TripTypes {
		out = append(out, category(string(t), counts[string(t)], total))
	}
	return out
}

func tipBoxStats(cols featureColumns) []domain.BoxStats {
	groups := make(map[string][]float64, len(domain.TripTypes))
	for i, t := range cols.types {
		v := cols.tip[i]
		if math.IsNaN(v) {
			continue
		}
		groups[t] = append(groups[t], v)
	}

	out := make([]domain.BoxStats, 0, len(domain.TripTypes))
	for _, t := range domain.TripTypes {
		vals := groups[string(t)]
		box := domain.BoxStats{Group: string(t), Count: len(vals)}
		if len(vals) > 0 {
			sort.Float64s(vals)
			box.Min = vals[0]
			box.Q1 = quantile(vals, 0.25)
			box.Median = quantile(vals, 0.5)
			box.Q3 = quantile(vals, 0.75)
			box.Max = vals[len(vals)-1]
		}
		out = append(out, box)
	}
	return out
}

func correlationMatrix(cols featureColumns) domain.CorrelationMatrix {
	n := len(CorrelationColumns)
	m := domain.CorrelationMatrix{
		Columns: append([]string{}, CorrelationColumns...),
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(cols.byName(CorrelationColumns[i]), cols.byName(CorrelationColumns[j]))
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// pearson correlates x and y over the rows where both are finite. It is NaN
// when fewer than two such rows exist or either side has zero variance.
func pearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(len(xs))
	my /= float64(len(ys))

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

// scatterSample takes every k-th row so at most limit points remain.
func scatterSample(cols featureColumns, limit int) []domain.ScatterPoint {
	n := len(cols.speed)
	if n == 0 || limit <= 0 {
		return nil
	}
	step := 1
	if n > limit {
		step = (n + limit - 1) / limit
	}

	points := make([]domain.ScatterPoint, 0, n/step+1)
	for i := 0; i < n; i += step {
		if math.IsNaN(cols.distance[i]) || math.IsNaN(cols.speed[i]) {
			continue
		}
		points = append(points, domain.ScatterPoint{Distance: cols.distance[i], Speed: cols.speed[i]})
	}
	return points
}
