// Package appshell runs a command-line entry point under signal-driven
// cancellation.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main calls run with a context canceled by SIGINT or SIGTERM and exits with
// its code. An interrupted run that reported success exits 130.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, run))
}

// Run is Main without the process exit, for tests.
func Run(parent context.Context, argv []string, stdout, stderr io.Writer, run func(context.Context, []string, io.Writer, io.Writer) int) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
