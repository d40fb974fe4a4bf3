// Package cli is the debugpanel command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Build-time variables (set via -ldflags).
var (
	Version = "dev"
	Commit  = "unknown"
)

// App holds the process-level dependencies of the command tree.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Executable is started with the job-worker command when the pool
	// type is process-pool. WorkerArgs go before "job-worker" and
	// WorkerEnv is appended to the child environment.
	Executable string
	WorkerArgs []string
	WorkerEnv  []string

	Prompter Prompter
	// StderrIsTerminal turns the progress bar on unless --progress is
	// given explicitly.
	StderrIsTerminal bool
}

// NewApp wires the App to the real process.
func NewApp() *App {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return &App{
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Executable:       exe,
		Prompter:         NewTerminalPrompter(os.Stdin, os.Stderr),
		StderrIsTerminal: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(app.Stderr, "Error:", err)
	}
	return ExitCode(err)
}

// Exit codes.
const (
	ExitOK          = 0
	ExitJobsFailed  = 1
	ExitConfigError = 2
)

// ExitError carries an exit code other than ExitConfigError.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the command tree to an exit code.
// Anything that is not an *ExitError happened before a job was sent.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitConfigError
}
