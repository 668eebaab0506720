package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/certipro/internal/cmd"
	"github.com/felixgeelhaar/certipro/internal/exitcode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Errors have already been reported by the command tree.
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		if ctx.Err() == context.Canceled {
			exitcode.Exit(exitcode.Interrupted)
		}
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
