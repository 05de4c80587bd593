// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gtile/internal/writers"
)

// RunContext runs the gtile command line and returns the process exit code:
// 0 on success (including help and version), 1 on failure, 130 when ctx was
// canceled.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	root, e := newRootCmd(stdout, stderr)
	defer func() { _ = e.close() }()
	if argv == nil {
		argv = []string{} // cobra falls back to os.Args on nil
	}
	root.SetArgs(argv)
	err := root.ExecuteContext(parent)
	if parent.Err() != nil {
		return 130
	}
	if err == nil || writers.IsBrokenPipe(err) {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	_, _ = fmt.Fprintf(stderr, "gtile: %v\n", err)
	return 1
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
