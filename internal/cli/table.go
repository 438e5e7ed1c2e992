package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"taxicli/internal/operations"
	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

func newTable(headers ...interface{}) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row(headers))
	return tw
}

func alignRight(tw table.Writer, columns ...int) {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      n,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
}

// StepTable renders the per-step outcome of a pipeline run
func StepTable(steps []operations.StepSummary) string {
	tw := newTable("Step", "Status", "Rows", "Duration", "Detail")
	for _, s := range steps {
		detail := s.Message
		if s.Error != "" {
			detail = s.Error
		}
		tw.AppendRow(table.Row{s.Name, string(s.Status), strconv.Itoa(s.Rows), s.Duration.Round(time.Millisecond).String(), detail})
	}
	alignRight(tw, 3, 4)
	return tw.Render()
}

// DropTable renders the cleaning statistics
func DropTable(stats domain.CleanStats) string {
	tw := newTable("Reason", "Rows")
	for _, reason := range domain.DropReasons {
		tw.AppendRow(table.Row{string(reason), strconv.Itoa(stats.Dropped[reason])})
	}
	tw.AppendFooter(table.Row{"kept", fmt.Sprintf("%d of %d", stats.RowsKept, stats.RowsRead)})
	alignRight(tw, 2)
	return tw.Render()
}

// ChecksTable renders the per-column validator checks
func ChecksTable(checks []validation.ColumnCheck) string {
	tw := newTable("Column", "Present", "Violations", "Result")
	for _, c := range checks {
		result := "ok"
		if !c.Passed() {
			result = "FAIL"
		}
		present := "yes"
		if !c.Present {
			present = "no"
		}
		tw.AppendRow(table.Row{c.Column, present, strconv.Itoa(c.Violations), result})
	}
	alignRight(tw, 3)
	return tw.Render()
}
