package installer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Command describes one child process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
	// Silent captures stdout and stderr instead of inheriting them.
	Silent bool
}

// Outcome captures how a child process ended.
type Outcome struct {
	// ExitCode is -1 when the process did not report one (e.g. killed by a signal).
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs a command to completion. A non-nil error means the process
// could not be started; a started process always yields an Outcome.
type Executor interface {
	Run(ctx context.Context, c Command) (*Outcome, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct {
	// Stdout and Stderr receive inherited output; default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, c Command) (*Outcome, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	var stdoutBuf, stderrBuf bytes.Buffer
	if c.Silent {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	} else {
		stdout := e.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		stderr := e.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	err := cmd.Wait()
	out := &Outcome{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		out.ExitCode = -1
	}
	return out, nil
}
