// Package command runs external programs synchronously.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"flutter-bootstrap/internal/logger"
)

// Result is the outcome of a finished child process.
type Result struct {
	ExitCode int
	Output   string
}

// Success reports a zero exit status.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes a program and blocks until it exits.
// err is non-nil only when the program could not be started or was interrupted;
// a program that ran and exited non-zero is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs programs with os/exec. Output is streamed to Stdout while it is
// captured, and input is passed through so installers can prompt (license acceptance).
type ExecRunner struct {
	// Input returns the stdin handed to each child. It is called per run so a
	// shared reader (the prompter's) can hand over whatever it has not consumed.
	// Nil runs children without input.
	Input func() io.Reader
	// Stdout receives the child's combined output as it is produced.
	Stdout io.Writer
}

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Input:  func() io.Reader { return os.Stdin },
		Stdout: os.Stdout,
	}
}

// Run starts name with args and waits for it.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))

	var captured bytes.Buffer
	out := io.Writer(&captured)
	if r.Stdout != nil {
		out = io.MultiWriter(r.Stdout, &captured)
	}
	cmd.Stdout = out
	cmd.Stderr = out
	if r.Input != nil {
		cmd.Stdin = r.Input()
	}

	err := cmd.Run()
	res := Result{Output: captured.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		logger.Debug("[DEBUG] %s exited with status %d\n", name, res.ExitCode)
		return res, nil
	default:
		return Result{ExitCode: -1}, fmt.Errorf("failed to start %s: %w", name, err)
	}
}
