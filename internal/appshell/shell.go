// Package appshell runs a command under signal handling and turns its
// result into a process exit code.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes shared by every command.
const (
	ExitOK          = 0
	ExitUsage       = 2 // bad flags or configuration
	ExitRuntime     = 3 // capture, log or I/O failure
	ExitInterrupted = 130
)

// Run is the signature of a command entry point.
type Run func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Normalize maps a successful run that ended through cancellation to
// ExitInterrupted.
func Normalize(ctx context.Context, code int) int {
	if ctx.Err() != nil && code == ExitOK {
		return ExitInterrupted
	}
	return code
}

// Main cancels the run context on SIGINT or SIGTERM and exits with the
// normalized code.
func Main(run Run) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Normalize(ctx, run(ctx, os.Args[1:], os.Stdout, os.Stderr))
	stop()
	os.Exit(code)
}
