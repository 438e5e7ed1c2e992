// Command validate runs the quality checks on an enriched trip file and
// prints every finding.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"taxicli/internal/cli"
	"taxicli/internal/config"
	"taxicli/internal/infrastructure"
	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(domain.CommandValidate, flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "enriched CSV to check (defaults to paths.enriched_file)")
	failOnViolations := fs.Bool("fail-on-violations", false, "exit with status 2 when any check fails")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}

	env, err := cli.Bootstrap(domain.CommandValidate)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer env.Close()

	input := env.Paths.EnrichedFile
	if *in != "" {
		input = cli.AbsPath(*in)
	}
	if !config.FileExists(input) {
		fmt.Fprintf(stderr, "File %s not found.\n", input)
		return cli.ExitFailure
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	started := time.Now()
	checks, err := validation.NewCuratedValidator(env.Logger).CheckFile(input)
	runRecord := domain.RunRecord{
		Command:    domain.CommandValidate,
		Input:      input,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     domain.RunStatusSucceeded,
	}
	if err != nil {
		runRecord.Status = domain.RunStatusFailed
		runRecord.Error = err.Error()
		cli.RecordRun(ctx, env.Paths.RunsDB, runRecord, env.Logger)
		fmt.Fprintf(stderr, "validation failed: %v\n", err)
		return cli.ExitFailure
	}

	violations := validation.Messages(checks)
	runRecord.Violations = validation.TotalViolations(checks)
	cli.RecordRun(ctx, env.Paths.RunsDB, runRecord, env.Logger)

	if cli.IsTerminal(stdout) {
		fmt.Fprintln(stdout, cli.ChecksTable(checks))
	}

	if len(violations) == 0 {
		fmt.Fprintln(stdout, "Data validated successfully.")
		return cli.ExitOK
	}

	fmt.Fprintln(stdout, "Validation errors found:")
	for _, v := range violations {
		fmt.Fprintf(stdout, "- %s\n", v)
	}
	if *failOnViolations {
		return cli.ExitViolations
	}
	return cli.ExitOK
}
