package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghbulk/ghbulk/internal/cli"
)

var version = "dev"

func main() {
	// One cancellation signal per invocation: SIGINT/SIGTERM aborts in-flight
	// and not-yet-issued requests of whatever operation is running.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{}
	root := cli.NewRootCommand(app, version)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
