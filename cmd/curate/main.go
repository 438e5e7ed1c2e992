// Command curate cleans the raw trip file, derives the feature columns,
// writes the enriched file and validates it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"taxicli/internal/cli"
	"taxicli/internal/config"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/exporter"
	"taxicli/internal/infrastructure"
	"taxicli/internal/operations"
	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(domain.CommandCurate, flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "raw trip CSV (defaults to paths.raw_file)")
	out := fs.String("out", "", "enriched CSV to write (defaults to paths.enriched_file)")
	policy := fs.String("timestamp-policy", "", "unparseable timestamps: drop or fail (defaults to cleaning.timestamp_policy)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}

	env, err := cli.Bootstrap(domain.CommandCurate)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer env.Close()
	logger := env.Logger

	input := env.Paths.RawFile
	if *in != "" {
		input = cli.AbsPath(*in)
	}
	output := env.Paths.EnrichedFile
	if *out != "" {
		output = cli.AbsPath(*out)
	}
	tsPolicy := env.Config.Cleaning.TimestampPolicy
	if *policy != "" {
		tsPolicy = *policy
	}
	if tsPolicy != config.TimestampPolicyDrop && tsPolicy != config.TimestampPolicyFail {
		fmt.Fprintf(stderr, "invalid -timestamp-policy %q: want %s or %s\n", tsPolicy, config.TimestampPolicyDrop, config.TimestampPolicyFail)
		return cli.ExitFailure
	}

	if !config.FileExists(input) {
		fmt.Fprintf(stderr, "Input file %s not found.\n", input)
		return cli.ExitFailure
	}

	registry, err := operations.NewCurationRegistry(operations.StepDependencies{
		Writer:          exporter.NewCSVWriter(env.Paths, logger),
		Processor:       dataprocessing.NewFeatureDeriver(logger),
		TimestampPolicy: tsPolicy,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to build pipeline", slog.String("error", err.Error()))
		return cli.ExitFailure
	}
	tracer, err := operations.NewOperationTracer(env.Providers)
	if err != nil {
		logger.Warn("operation tracing disabled", slog.String("error", err.Error()))
	}
	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger)

	ctx := infrastructure.EnsureTraceID(context.Background())
	started := time.Now()
	resp, execErr := manager.Execute(ctx, operations.OperationRequest{
		Input:           input,
		Output:          output,
		TimestampPolicy: tsPolicy,
	})

	if cli.IsTerminal(stdout) {
		fmt.Fprintln(stdout, cli.StepTable(resp.Steps))
		fmt.Fprintln(stdout, cli.DropTable(resp.Stats))
	}

	runRecord := domain.RunRecord{
		ID:         resp.ID,
		Command:    domain.CommandCurate,
		Input:      input,
		Output:     resp.Output,
		StartedAt:  started,
		FinishedAt: time.Now(),
		RowsIn:     resp.Stats.RowsRead,
		RowsOut:    resp.Stats.RowsKept,
		Dropped:    resp.Stats.Dropped,
		Violations: validation.TotalViolations(resp.Checks),
		Status:     domain.RunStatusSucceeded,
	}
	if execErr != nil {
		runRecord.Status = domain.RunStatusFailed
		runRecord.Error = execErr.Error()
	}
	cli.RecordRun(ctx, env.Paths.RunsDB, runRecord, logger)

	if execErr != nil {
		fmt.Fprintf(stderr, "curation failed at step %s: %v\n", operations.FailedStep(execErr), execErr)
		return cli.ExitFailure
	}

	for _, v := range resp.Violations {
		logger.Warn("validation finding", slog.String("violation", v))
	}
	fmt.Fprintf(stdout, "Enriched data saved to %s\n", resp.Output)
	return cli.ExitOK
}
