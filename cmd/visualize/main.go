// Command visualize writes the chart workbook and summary.json for an
// enriched trip file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"taxicli/internal/cli"
	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/exporter"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "enriched CSV (defaults to paths.enriched_file)")
	outDir := fs.String("out-dir", "", "directory for the workbook and summary (defaults to paths.plots_dir)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}

	env, err := cli.Bootstrap("visualize")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer env.Close()

	input := env.Paths.EnrichedFile
	if *in != "" {
		input = cli.AbsPath(*in)
	}
	dir := env.Paths.PlotsDir
	if *outDir != "" {
		dir = cli.AbsPath(*outDir)
	}
	if !config.FileExists(input) {
		fmt.Fprintf(stderr, "Input file %s not found.\n", input)
		return cli.ExitFailure
	}

	summarizer := dataprocessing.NewSummarizer(env.Logger, dataprocessing.OptionsFromConfig(env.Config).Summary)
	workbook := exporter.NewWorkbookExporter(env.Logger, env.Config.Report.Author)

	summary, err := workbook.ExportPlots(summarizer, input, dir, env.Config.Plots.Workbook, env.Config.Plots.SummaryFile)
	if err != nil {
		env.Logger.Error("failed to export plots", slog.String("input", input), slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "visualization failed: %v\n", err)
		return cli.ExitFailure
	}

	env.Logger.Info("plots exported", slog.String("dir", dir), slog.Int("rows", summary.Rows))
	fmt.Fprintf(stdout, "Visualizations saved to %s/\n", dir)
	return cli.ExitOK
}
