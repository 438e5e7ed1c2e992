package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"taxicli/internal/config"
	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

// Input is everything one report page is built from.
type Input struct {
	Summary    domain.DatasetSummary
	Violations []string
	// Markdown replaces the generated narrative when set.
	Markdown []byte
	Author   string
	Project  string
	Date     time.Time
}

// pageModel is the template model.
type pageModel struct {
	Title     string
	Project   string
	Logo      template.HTML
	Body      template.HTML
	Stats     []statRow
	Charts    []template.HTML
	Author    string
	Date      string
	Generated string
}

type statRow struct {
	Label string
	Value string
}

// Renderer turns a dataset summary into a standalone HTML page
type Renderer struct {
	md     goldmark.Markdown
	tmpl   *template.Template
	logger *slog.Logger
}

// NewRenderer creates a report renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		tmpl:   template.Must(template.New("report").Parse(pageTemplate)),
		logger: logger.With(slog.String("component", "report_renderer")),
	}
}

// Render returns the HTML page for in.
func (r *Renderer) Render(in Input) ([]byte, error) {
	source := in.Markdown
	if len(bytes.TrimSpace(source)) == 0 {
		source = []byte(Narrative(in.Summary, in.Violations))
	}

	var body bytes.Buffer
	if err := r.md.Convert(source, &body); err != nil {
		return nil, apperrors.NewRenderError("failed to convert markdown", err)
	}

	if in.Project == "" {
		in.Project = config.ProjectName
	}
	if in.Author == "" {
		in.Author = config.DefaultReportAuthor
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	model := pageModel{
		Title:     in.Project,
		Project:   in.Project,
		Logo:      Logo(),
		Body:      template.HTML(body.String()),
		Stats:     statRows(in.Summary, in.Violations),
		Charts:    charts(in.Summary),
		Author:    in.Author,
		Date:      in.Date.Format("January 2, 2006"),
		Generated: in.Date.UTC().Format(time.RFC3339),
	}

	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, model); err != nil {
		return nil, apperrors.NewRenderError("failed to render report template", err)
	}

	r.logger.Debug("report rendered",
		slog.Int("bytes", out.Len()),
		slog.Bool("custom_markdown", len(in.Markdown) > 0))

	return out.Bytes(), nil
}

// RenderToFile renders in and writes it to path.
func (r *Renderer) RenderToFile(path string, in Input) ([]byte, error) {
	html, err := r.Render(in)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create report directory", err).WithContext("path", path)
	}
	if err := os.WriteFile(path, html, 0644); err != nil {
		return nil, apperrors.NewStorageError("failed to write report", err).WithContext("path", path)
	}

	r.logger.Info("report written", slog.String("path", path))
	return html, nil
}

func statRows(s domain.DatasetSummary, violations []string) []statRow {
	rows := []statRow{
		{"Trips", fmt.Sprintf("%d", s.Rows)},
		{"Mean speed", fmt.Sprintf("%.2f mph", s.Speed.Mean)},
		{"Median speed", fmt.Sprintf("%.2f mph", s.Speed.Median)},
		{"Mean tip", fmt.Sprintf("%.2f%%", s.Tip.Mean)},
		{"Median tip", fmt.Sprintf("%.2f%%", s.Tip.Median)},
	}
	for _, c := range s.PeakHours {
		rows = append(rows, statRow{c.Label + " trips", fmt.Sprintf("%d (%.1f%%)", c.Count, c.Share*100)})
	}
	rows = append(rows, statRow{"Validation", validationLabel(violations)})
	return rows
}

func validationLabel(violations []string) string {
	if len(violations) == 0 {
		return "passed"
	}
	return fmt.Sprintf("%d issue(s)", len(violations))
}

func charts(s domain.DatasetSummary) []template.HTML {
	out := []template.HTML{BarChart("Trips by Type", CategoryBars(s.TripTypes))}
	if len(s.SpeedHist.Bins) > 0 {
		out = append(out, BarChart("Trip Speed Distribution (mph)", HistogramBars(s.SpeedHist)))
	}
	if len(s.TipHist.Bins) > 0 {
		out = append(out, BarChart("Tip Percentage Distribution", HistogramBars(s.TipHist)))
	}
	out = append(out, BarChart("Peak vs Off-Peak Trips", CategoryBars(s.PeakHours)))
	return out
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="generator" content="taxicli">
<meta name="date" content="{{.Generated}}">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 18mm; }
body { font-family: Helvetica, Arial, sans-serif; color: #1F2937; max-width: 820px; margin: 0 auto; line-height: 1.5; }
header { text-align: center; border-bottom: 3px solid #F7B500; padding-bottom: 12px; margin-bottom: 24px; }
header h1 { color: #1F4E79; margin: 8px 0 0; }
header p { color: #4B5563; margin: 4px 0 0; }
h1, h2, h3 { color: #1F4E79; }
h2 { border-left: 4px solid #5A8AC6; padding-left: 8px; }
table { border-collapse: collapse; margin: 12px 0; }
th, td { border: 1px solid #D1D5DB; padding: 4px 10px; }
th { background: #DDEBF7; }
table.stats td:first-child { font-weight: bold; }
.charts { display: flex; flex-wrap: wrap; gap: 12px; justify-content: center; page-break-inside: avoid; }
code { background: #F3F4F6; padding: 1px 4px; }
footer.signature { margin-top: 36px; border-top: 1px solid #9CA3AF; padding-top: 12px; page-break-inside: avoid; }
footer.signature dt { font-weight: bold; float: left; width: 80px; }
footer.signature dd { margin-left: 90px; }
</style>
</head>
<body>
<header>
{{.Logo}}
<h1>{{.Project}}</h1>
<p>Feature engineering for urban transportation analytics</p>
</header>
<section>
<h2>Summary</h2>
<table class="stats">
{{range .Stats}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
</section>
<section class="charts">
{{range .Charts}}{{.}}
{{end}}</section>
<article>
{{.Body}}
</article>
<footer class="signature">
<dl>
<dt>Author</dt><dd>{{.Author}}</dd>
<dt>Date</dt><dd>{{.Date}}</dd>
<dt>Project</dt><dd>{{.Project}}</dd>
</dl>
</footer>
</body>
</html>
`
