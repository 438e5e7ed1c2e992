package report

import (
	"fmt"
	"html/template"
	"strings"

	"taxicli/pkg/contracts/domain"
)

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

const (
	chartWidth   = 560
	chartHeight  = 240
	chartPadding = 32
)

var barColors = []string{"#F7B500", "#1F4E79", "#5A8AC6", "#70AD47", "#C00000"}

// Logo returns the inline SVG taxi badge used in the report header.
func Logo() template.HTML {
	return template.HTML(`<svg class="logo" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 150" width="160" height="120" role="img" aria-label="NYC Taxi">
<rect x="4" y="4" width="192" height="142" rx="18" fill="#1F2937"/>
<path d="M40 88 L56 56 H144 L160 88 Z" fill="#F7B500"/>
<rect x="30" y="86" width="140" height="28" rx="8" fill="#F7B500"/>
<rect x="80" y="40" width="40" height="14" rx="3" fill="#FFFFFF"/>
<text x="100" y="51" font-family="Helvetica, Arial, sans-serif" font-size="10" font-weight="bold" text-anchor="middle" fill="#1F2937">TAXI</text>
<rect x="64" y="62" width="32" height="22" fill="#BFDBFE"/>
<rect x="104" y="62" width="32" height="22" fill="#BFDBFE"/>
<circle cx="60" cy="116" r="12" fill="#111827"/>
<circle cx="140" cy="116" r="12" fill="#111827"/>
<text x="100" y="140" font-family="Helvetica, Arial, sans-serif" font-size="12" font-weight="bold" text-anchor="middle" fill="#F7B500">NYC</text>
</svg>`)
}

// BarChart renders bars as an inline SVG chart. Labels are escaped.
func BarChart(title string, bars []Bar) template.HTML {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="chart" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-label="%s">`,
		chartWidth, chartHeight, chartWidth, chartHeight, template.HTMLEscapeString(title))
	fmt.Fprintf(&b, `<text x="%d" y="18" font-size="14" font-weight="bold" text-anchor="middle">%s</text>`,
		chartWidth/2, template.HTMLEscapeString(title))

	maxValue := 0.0
	for _, bar := range bars {
		if bar.Value > maxValue {
			maxValue = bar.Value
		}
	}

	plotTop := chartPadding
	plotBottom := chartHeight - chartPadding
	plotHeight := float64(plotBottom - plotTop)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#9CA3AF"/>`,
		chartPadding, plotBottom, chartWidth-chartPadding, plotBottom)

	if len(bars) > 0 {
		slot := float64(chartWidth-2*chartPadding) / float64(len(bars))
		width := slot * 0.7
		for i, bar := range bars {
			h := 0.0
			if maxValue > 0 && bar.Value > 0 {
				h = bar.Value / maxValue * (plotHeight - 16)
			}
			x := float64(chartPadding) + float64(i)*slot + (slot-width)/2
			y := float64(plotBottom) - h
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
				x, y, width, h, barColors[i%len(barColors)])
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="11" text-anchor="middle">%s</text>`,
				x+width/2, y-4, formatValue(bar.Value))
			if len(bars) <= 12 {
				fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="11" text-anchor="middle">%s</text>`,
					x+width/2, plotBottom+16, template.HTMLEscapeString(bar.Label))
			}
		}
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// CategoryBars converts category counts into bars.
func CategoryBars(counts []domain.CategoryCount) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Label: c.Label, Value: float64(c.Count)}
	}
	return bars
}

// HistogramBars converts histogram bins into bars labelled by lower edge.
func HistogramBars(h domain.Histogram) []Bar {
	bars := make([]Bar, len(h.Bins))
	for i, bin := range h.Bins {
		bars[i] = Bar{Label: fmt.Sprintf("%.0f", bin.Lower), Value: float64(bin.Count)}
	}
	return bars
}
