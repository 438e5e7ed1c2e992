package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"taxicli/internal/dataprocessing"
	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// Workbook sheet names, in display order.
const (
	SheetSummary     = "Summary"
	SheetSpeedHist   = "Speed Histogram"
	SheetTipHist     = "Tip Histogram"
	SheetTripTypes   = "Trip Types"
	SheetPeakHours   = "Peak Hours"
	SheetScatter     = "Speed vs Distance"
	SheetTipByType   = "Tip by Trip Type"
	SheetSpeedByPeak = "Speed by Peak"
	SheetCorrelation = "Correlation"
)

const (
	chartCell   = "H2"
	chartWidth  = 720
	chartHeight = 400
)

// WorkbookExporter writes the chart workbook for a dataset summary
type WorkbookExporter struct {
	logger  *slog.Logger
	creator string
}

// NewWorkbookExporter creates a workbook exporter; creator is recorded in
// the document properties.
func NewWorkbookExporter(logger *slog.Logger, creator string) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{
		logger:  logger.With(slog.String("component", "workbook_exporter")),
		creator: creator,
	}
}

// Export builds the workbook and saves it to path.
func (e *WorkbookExporter) Export(path string, summary domain.DatasetSummary) error {
	f, err := e.Build(summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create plots directory", err).WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	e.logger.Info("workbook written",
		slog.String("path", path),
		slog.Int("rows", summary.Rows),
		slog.Int("sheets", len(f.GetSheetList())))
	return nil
}

// Build lays out one sheet per chart. Sheets whose data is empty keep
// their table header but get no chart.
func (e *WorkbookExporter) Build(summary domain.DatasetSummary) (*excelize.File, error) {
	f := excelize.NewFile()

	b := &workbookBuilder{f: f}
	b.headerStyle, b.err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if b.err == nil {
		b.err = f.SetSheetName(f.GetSheetName(0), SheetSummary)
	}

	b.writeSummary(summary)
	b.writeHistogram(SheetSpeedHist, "Trip Speed Distribution", "Speed (mph)", summary.SpeedHist)
	b.writeHistogram(SheetTipHist, "Tip Percentage Distribution", "Tip (%)", summary.TipHist)
	b.writeCategories(SheetTripTypes, "Trip Type", "Trips by Type", excelize.Col, summary.TripTypes)
	b.writeCategories(SheetPeakHours, "Period", "Peak vs Off-Peak Trips", excelize.Pie, summary.PeakHours)
	b.writeScatter(summary.Scatter)
	b.writeTipByType(summary.TipByType)
	b.writeSpeedByPeak(summary.OffPeakSpeed, summary.PeakSpeed)
	b.writeCorrelation(summary.Correlation)

	if b.err == nil {
		b.err = f.SetDocProps(&excelize.DocProperties{
			Title:   "NYC Taxi Trip Features",
			Creator: e.creator,
			Created: summary.GeneratedAt.UTC().Format(time.RFC3339),
		})
	}
	if b.err != nil {
		f.Close()
		return nil, apperrors.NewRenderError("failed to build workbook", b.err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// workbookBuilder stops at the first error.
type workbookBuilder struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (b *workbookBuilder) newSheet(name string) {
	if b.err != nil {
		return
	}
	_, b.err = b.f.NewSheet(name)
}

func (b *workbookBuilder) row(sheet string, row int, values ...interface{}) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetSheetRow(sheet, cell, &values)
}

func (b *workbookBuilder) header(sheet string, names ...interface{}) {
	b.row(sheet, 1, names...)
	if b.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(names), 1)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, "A1", last, b.headerStyle)
	if b.err == nil {
		b.err = b.f.SetColWidth(sheet, "A", "A", 18)
	}
}

func (b *workbookBuilder) chart(sheet string, chart *excelize.Chart) {
	if b.err != nil {
		return
	}
	chart.Dimension = excelize.ChartDimension{Width: chartWidth, Height: chartHeight}
	b.err = b.f.AddChart(sheet, chartCell, chart)
}

// rangeRef addresses rows from..to of one column on sheet.
func rangeRef(sheet, col string, from, to int) string {
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, col, from, col, to)
}

func title(text string) []excelize.RichTextRun {
	return []excelize.RichTextRun{{Text: text}}
}

func (b *workbookBuilder) writeSummary(s domain.DatasetSummary) {
	sheet := SheetSummary
	b.header(sheet, "Metric", "Value")

	rows := [][]interface{}{
		{"Source", s.Source},
		{"Generated at", s.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Rows", s.Rows},
		{"Mean speed (mph)", s.Speed.Mean},
		{"Median speed (mph)", s.Speed.Median},
		{"Max speed (mph)", s.Speed.Max},
		{"Mean tip (%)", s.Tip.Mean},
		{"Median tip (%)", s.Tip.Median},
	}
	for _, c := range s.TripTypes {
		rows = append(rows, []interface{}{c.Label + " trips", fmt.Sprintf("%d (%s)", c.Count, formatPercent(c.Share))})
	}
	for _, c := range s.PeakHours {
		rows = append(rows, []interface{}{c.Label + " trips", fmt.Sprintf("%d (%s)", c.Count, formatPercent(c.Share))})
	}

	for i, r := range rows {
		b.row(sheet, i+2, r...)
	}
	if b.err == nil {
		b.err = b.f.SetColWidth(sheet, "A", "B", 24)
	}
}

func (b *workbookBuilder) writeHistogram(sheet, chartTitle, axis string, h domain.Histogram) {
	b.newSheet(sheet)
	b.header(sheet, "Bin", "Lower", "Upper", "Count")
	for i, bin := range h.Bins {
		b.row(sheet, i+2, formatRange(bin.Lower, bin.Upper), bin.Lower, bin.Upper, bin.Count)
	}
	if len(h.Bins) == 0 {
		return
	}

	last := len(h.Bins) + 1
	gap := uint(0)
	b.chart(sheet, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$D$1", sheet),
			Categories: rangeRef(sheet, "A", 2, last),
			Values:     rangeRef(sheet, "D", 2, last),
		}},
		Title:    title(chartTitle),
		Legend:   excelize.ChartLegend{Position: "none"},
		XAxis:    excelize.ChartAxis{Title: title(axis)},
		YAxis:    excelize.ChartAxis{Title: title("Trips"), MajorGridLines: true},
		GapWidth: &gap,
	})
}

func (b *workbookBuilder) writeCategories(sheet, label, chartTitle string, kind excelize.ChartType, counts []domain.CategoryCount) {
	b.newSheet(sheet)
	b.header(sheet, label, "Count", "Share")
	for i, c := range counts {
		b.row(sheet, i+2, c.Label, c.Count, c.Share)
	}
	if len(counts) == 0 {
		return
	}

	last := len(counts) + 1
	chart := &excelize.Chart{
		Type: kind,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: rangeRef(sheet, "A", 2, last),
			Values:     rangeRef(sheet, "B", 2, last),
		}},
		Title: title(chartTitle),
	}
	if kind == excelize.Pie {
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true, ShowCatName: true}
		chart.Legend = excelize.ChartLegend{Position: "right"}
	} else {
		chart.Legend = excelize.ChartLegend{Position: "none"}
		chart.YAxis = excelize.ChartAxis{Title: title("Trips"), MajorGridLines: true}
	}
	b.chart(sheet, chart)
}

func (b *workbookBuilder) writeScatter(points []domain.ScatterPoint) {
	sheet := SheetScatter
	b.newSheet(sheet)
	b.header(sheet, "Trip Distance (mi)", "Trip Speed (mph)")
	for i, p := range points {
		b.row(sheet, i+2, p.Distance, p.Speed)
	}
	if len(points) == 0 {
		return
	}

	last := len(points) + 1
	b.chart(sheet, &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: rangeRef(sheet, "A", 2, last),
			Values:     rangeRef(sheet, "B", 2, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 4},
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
		}},
		Title:  title("Trip Speed vs Distance"),
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: title("Distance (mi)")},
		YAxis:  excelize.ChartAxis{Title: title("Speed (mph)"), MajorGridLines: true},
	})
}

// writeTipByType plots the five-number summary per trip type as one line
// series per statistic, the closest native chart to a box plot.
func (b *workbookBuilder) writeTipByType(boxes []domain.BoxStats) {
	sheet := SheetTipByType
	b.newSheet(sheet)
	b.header(sheet, "Trip Type", "Count", "Min", "Q1", "Median", "Q3", "Max")
	for i, box := range boxes {
		b.row(sheet, i+2, box.Group, box.Count, box.Min, box.Q1, box.Median, box.Q3, box.Max)
	}
	if len(boxes) == 0 {
		return
	}

	last := len(boxes) + 1
	var series []excelize.ChartSeries
	for _, col := range []string{"C", "D", "E", "F", "G"} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: rangeRef(sheet, "A", 2, last),
			Values:     rangeRef(sheet, col, 2, last),
			Marker:     excelize.ChartMarker{Symbol: "dash", Size: 8},
		})
	}
	b.chart(sheet, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  title("Tip Percentage by Trip Type"),
		Legend: excelize.ChartLegend{Position: "bottom"},
		YAxis:  excelize.ChartAxis{Title: title("Tip (%)"), MajorGridLines: true},
	})
}

func (b *workbookBuilder) writeSpeedByPeak(offPeak, peak domain.Histogram) {
	sheet := SheetSpeedByPeak
	b.newSheet(sheet)
	b.header(sheet, "Bin", "Off-Peak", "Peak")

	n := len(offPeak.Bins)
	if len(peak.Bins) < n {
		n = len(peak.Bins)
	}
	for i := 0; i < n; i++ {
		bin := offPeak.Bins[i]
		b.row(sheet, i+2, formatRange(bin.Lower, bin.Upper), bin.Count, peak.Bins[i].Count)
	}
	if n == 0 {
		return
	}

	last := n + 1
	gap := uint(0)
	overlap := 100
	b.chart(sheet, &excelize.Chart{
		Type: excelize.ColStacked,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", sheet),
				Categories: rangeRef(sheet, "A", 2, last),
				Values:     rangeRef(sheet, "B", 2, last),
			},
			{
				Name:       fmt.Sprintf("'%s'!$C$1", sheet),
				Categories: rangeRef(sheet, "A", 2, last),
				Values:     rangeRef(sheet, "C", 2, last),
			},
		},
		Title:    title("Trip Speed by Peak Hour"),
		Legend:   excelize.ChartLegend{Position: "top"},
		XAxis:    excelize.ChartAxis{Title: title("Speed (mph)")},
		YAxis:    excelize.ChartAxis{Title: title("Trips"), MajorGridLines: true},
		GapWidth: &gap,
		Overlap:  &overlap,
	})
}

// writeCorrelation renders the matrix as a red-white-blue heatmap fixed to
// [-1, 1]. Undefined cells stay empty.
func (b *workbookBuilder) writeCorrelation(m domain.CorrelationMatrix) {
	sheet := SheetCorrelation
	b.newSheet(sheet)

	head := []interface{}{""}
	for _, c := range m.Columns {
		head = append(head, c)
	}
	b.header(sheet, head...)
	for i, name := range m.Columns {
		row := []interface{}{name}
		for j := range m.Columns {
			var v float64
			if i < len(m.Values) && j < len(m.Values[i]) {
				v = m.Values[i][j]
			}
			row = append(row, cellValue(v))
		}
		b.row(sheet, i+2, row...)
	}
	if len(m.Columns) == 0 || b.err != nil {
		return
	}

	bottomRight, err := excelize.CoordinatesToCellName(len(m.Columns)+1, len(m.Columns)+1)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetConditionalFormat(sheet, "B2:"+bottomRight, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MidType:  "num",
		MaxType:  "num",
		MinValue: "-1",
		MidValue: "0",
		MaxValue: "1",
		MinColor: "#5A8AC6",
		MidColor: "#FFFFFF",
		MaxColor: "#F8696B",
	}})
	if b.err == nil {
		b.err = b.f.SetColWidth(sheet, "A", "F", 16)
	}
}

// WriteSummaryJSON writes summary as indented JSON.
func WriteSummaryJSON(path string, summary domain.DatasetSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return apperrors.NewRenderError("failed to encode summary", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create summary directory", err).WithContext("path", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.NewStorageError("failed to write summary", err).WithContext("path", path)
	}
	return nil
}

// ExportPlots summarizes the enriched file at input and writes the
// workbook and summary JSON into dir. It returns the summary.
func (e *WorkbookExporter) ExportPlots(summarizer *dataprocessing.Summarizer, input, dir, workbook, summaryFile string) (domain.DatasetSummary, error) {
	summary, err := summarizer.SummarizeFile(input)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	if err := e.Export(filepath.Join(dir, workbook), summary); err != nil {
		return summary, err
	}
	if err := WriteSummaryJSON(filepath.Join(dir, summaryFile), summary); err != nil {
		return summary, err
	}
	return summary, nil
}
