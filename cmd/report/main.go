// Command report renders the project report as HTML and, with -pdf,
// prints it to A4 PDF through headless Chrome.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taxicli/internal/cli"
	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/infrastructure"
	"taxicli/internal/report"
	"taxicli/internal/validation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "enriched CSV (defaults to paths.enriched_file)")
	md := fs.String("md", "", "Markdown narrative replacing the generated one (defaults to report.markdown)")
	out := fs.String("out", "", "HTML file to write (defaults to report.html_file under paths.reports_dir)")
	pdf := fs.Bool("pdf", false, "also print the report to PDF")
	author := fs.String("author", "", "author for the signature block (defaults to report.author)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}

	env, err := cli.Bootstrap("report")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer env.Close()
	logger := env.Logger
	cfg := env.Config

	input := env.Paths.EnrichedFile
	if *in != "" {
		input = cli.AbsPath(*in)
	}
	htmlPath := env.Paths.ReportPath(cfg.Report.HTMLFile)
	if *out != "" {
		htmlPath = cli.AbsPath(*out)
	}
	name := cfg.Report.Author
	if *author != "" {
		name = *author
	}
	if !config.FileExists(input) {
		fmt.Fprintf(stderr, "Input file %s not found.\n", input)
		return cli.ExitFailure
	}

	var narrative []byte
	mdPath := cfg.Report.Markdown
	if mdPath != "" && !filepath.IsAbs(mdPath) {
		mdPath = filepath.Join(env.Paths.BaseDir, mdPath)
	}
	if *md != "" {
		mdPath = cli.AbsPath(*md)
	}
	if mdPath != "" {
		narrative, err = os.ReadFile(mdPath)
		if err != nil {
			fmt.Fprintf(stderr, "Markdown file %s not found.\n", mdPath)
			return cli.ExitFailure
		}
	}

	summary, err := dataprocessing.NewSummarizer(logger, dataprocessing.OptionsFromConfig(cfg).Summary).SummarizeFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "report failed: %v\n", err)
		return cli.ExitFailure
	}
	checks, err := validation.NewCuratedValidator(logger).CheckFile(input)
	if err != nil {
		fmt.Fprintf(stderr, "report failed: %v\n", err)
		return cli.ExitFailure
	}

	html, err := report.NewRenderer(logger).RenderToFile(htmlPath, report.Input{
		Summary:    summary,
		Violations: validation.Messages(checks),
		Markdown:   narrative,
		Author:     name,
		Project:    cfg.Report.Project,
		Date:       time.Now(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "report failed: %v\n", err)
		return cli.ExitFailure
	}
	fmt.Fprintf(stdout, "HTML report saved to %s\n", htmlPath)

	if *pdf {
		pdfPath := env.Paths.ReportPath(cfg.Report.PDFFile)
		if *out != "" || cfg.Report.PDFFile == "" {
			pdfPath = strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".pdf"
		}
		chrome, found := report.FindChrome()
		if !found {
			logger.Warn("chrome not found on PATH, letting chromedp search", slog.String("env", report.ChromePathEnv))
		}

		printer := report.NewPDFPrinter(chrome, cfg.Report.ChromeTimeout, logger)
		if err := printer.PrintFile(infrastructure.EnsureTraceID(context.Background()), html, pdfPath); err != nil {
			fmt.Fprintf(stderr, "PDF generation failed: %v\n", err)
			return cli.ExitFailure
		}
		fmt.Fprintf(stdout, "PDF generated successfully: %s\n", pdfPath)
	}

	fmt.Fprintf(stdout, "Author: %s\n", name)
	return cli.ExitOK
}
