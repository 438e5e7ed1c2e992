// Command web serves the read-only viewer over the enriched dataset and the
// run ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taxicli/internal/app"
	"taxicli/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", 0, "listen port (defaults to server.port)")
	if err := fs.Parse(args); err != nil {
		return cli.ExitFailure
	}

	env, err := cli.Bootstrap("web")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cli.ExitFailure
	}
	defer env.Close()

	if *port != 0 {
		if *port < 1 || *port > 65535 {
			fmt.Fprintf(stderr, "invalid -port %d\n", *port)
			return cli.ExitFailure
		}
		env.Config.Server.Port = *port
	}

	if err := env.Paths.EnsureDirectories(); err != nil {
		env.Logger.Error("failed to create directories", slog.String("error", err.Error()))
		return cli.ExitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(ctx, env.Config, env.Paths, env.Logger, env.Providers)
	if err != nil {
		env.Logger.Error("failed to initialize application", slog.String("error", err.Error()))
		return cli.ExitFailure
	}

	if err := application.Run(ctx); err != nil {
		env.Logger.Error("application error", slog.String("error", err.Error()))
		return cli.ExitFailure
	}
	return cli.ExitOK
}
