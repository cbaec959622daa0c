// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cellscope/internal/appshell"
	"cellscope/internal/config"
	"cellscope/internal/version"
	"cellscope/internal/writers"
	"github.com/spf13/cobra"
)

// exitError carries the exit code a command wants.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error   { return &exitError{code: appshell.ExitUsage, err: err} }
func runtimeErr(err error) error { return &exitError{code: appshell.ExitRuntime, err: err} }

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return appshell.ExitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, config.ErrInvalid):
		return appshell.ExitUsage
	case writers.IsBrokenPipe(err):
		return appshell.ExitOK
	}
	// cobra reports unknown flags and commands as plain errors.
	return appshell.ExitUsage
}

// NewRootCmd builds the cellscope command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "cellscope",
		Short: "Live cell detection with simulated microbe reports",
		Long: `cellscope detects blob-like shapes in a camera feed or image folder,
pairs every frame with a simulated microbe identity, its disease record and a
DNA sequence with its reverse complement, and logs one row per frame.

Microbe identities are drawn at random; this is a demonstration, not a
diagnostic tool.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("cellscope version {{.Version}}\n")

	root.AddCommand(newRunCmd(), newCatalogCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cellscope version %s\n", version.Version)
			return err
		},
	}
}

// RunContext executes argv and returns the exit code. Errors are printed to
// stderr.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)
	code := exitCode(err)
	if err != nil && code != appshell.ExitOK {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		if code == appshell.ExitUsage && !errors.Is(err, config.ErrInvalid) {
			_, _ = fmt.Fprintln(stderr, "Run 'cellscope --help' for usage.")
		}
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
