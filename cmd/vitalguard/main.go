// Command vitalguard is the CLI entry point for the VitalGuard scoring engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/VitalGuard/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.Dependencies{
		OpenStores: openStores,
		Migrate:    migrate,
	})
	stop()
	os.Exit(cli.ExitCode(err))
}
