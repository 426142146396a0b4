// Package runner executes external tools (ffmpeg, HandBrakeCLI) and
// reports their captured output.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Result holds the outcome of an external command.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandError reports a command that exited non-zero, carrying its
// captured stderr. Retry policy belongs to callers; the runner never
// retries.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed with status %d", e.Cmd, e.ExitCode)
}

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec runs commands via os/exec, checking the exit status.
type Exec struct {
	log *slog.Logger
}

// NewExec creates a checked command runner.
func NewExec(log *slog.Logger) *Exec {
	if log == nil {
		log = slog.Default()
	}
	return &Exec{log: log}
}

// Run executes the command and captures stdout/stderr. On non-zero exit
// the captured stderr is surfaced to the process diagnostic stream and a
// *CommandError is returned.
func (r *Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmdline := name + " " + strings.Join(args, " ")
	r.log.Debug("exec", "cmd", cmdline)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	res.ExitCode = exitErr.ExitCode()
	fmt.Fprintln(os.Stderr, stderr.String())
	return res, &CommandError{Cmd: cmdline, ExitCode: res.ExitCode, Stderr: stderr.String()}
}
