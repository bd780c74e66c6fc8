package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/x402-tools/create-x402/internal/logging"
	"github.com/x402-tools/create-x402/internal/status"
)

// DefaultLabels rotate under the install spinner. They do not track real progress.
var DefaultLabels = []string{
	"resolving packages",
	"fetching dependencies",
	"linking dependencies",
	"building fresh packages",
}

// DefaultLabelInterval is how long each label stays on screen.
const DefaultLabelInterval = 2 * time.Second

// ExitError reports a failed install and the exit code the process should end with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner installs dependencies in a project directory.
type Runner struct {
	Executor Executor
	Reporter *status.Reporter
	Logger   *zap.Logger

	// Manager is the package manager name (see Managers); empty means npm.
	Manager string
	// GOOS selects the executable name; empty means runtime.GOOS.
	GOOS string
	// Silent captures installer output and echoes it only on failure.
	Silent bool
	// Output receives the echoed output on failure; defaults to os.Stderr.
	Output io.Writer
	// Environ supplies the base environment; defaults to os.Environ.
	Environ func() []string

	Labels        []string
	LabelInterval time.Duration
}

// Command builds the install command for dir.
func (r *Runner) Command(dir string) (Command, error) {
	name := r.Manager
	if name == "" {
		name = DefaultManager
	}
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	bin, err := BinaryName(name, goos)
	if err != nil {
		return Command{}, err
	}
	args, err := InstallArgs(name)
	if err != nil {
		return Command{}, err
	}

	environ := r.Environ
	if environ == nil {
		environ = os.Environ
	}

	return Command{
		Name:   bin,
		Args:   args,
		Dir:    dir,
		Env:    BuildEnv(environ()),
		Silent: r.Silent,
	}, nil
}

// Install runs the package manager in dir and waits for it to exit.
// Failures are returned as *ExitError.
func (r *Runner) Install(ctx context.Context, dir string) error {
	logger := logging.OrNop(r.Logger)

	cmd, err := r.Command(dir)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	reporter := r.Reporter
	if reporter == nil {
		reporter = status.New(io.Discard)
	}
	task := reporter.Start(fmt.Sprintf("Installing dependencies with %s", cmd.Name))
	labels := r.Labels
	if labels == nil {
		labels = DefaultLabels
	}
	interval := r.LabelInterval
	if interval == 0 {
		interval = DefaultLabelInterval
	}
	task.Rotate(labels, interval)

	logger.Debug("Spawning installer",
		zap.String("bin", cmd.Name),
		zap.Strings("args", cmd.Args),
		zap.String("dir", cmd.Dir))

	started := time.Now()
	out, err := r.Executor.Run(ctx, cmd)
	if err != nil {
		task.Fail(fmt.Sprintf("Could not start %s", cmd.Name))
		return &ExitError{Code: 1, Err: fmt.Errorf("starting %s: %w", cmd.Name, err)}
	}

	logger.Debug("Installer exited",
		zap.Int("exit_code", out.ExitCode),
		zap.Duration("elapsed", time.Since(started)))

	if out.ExitCode != 0 {
		task.Fail("Dependency installation failed")
		r.echo(out)

		code := out.ExitCode
		if code <= 0 {
			code = 1
		}
		return &ExitError{Code: code, Err: fmt.Errorf("%s %s exited with code %d", cmd.Name, strings.Join(cmd.Args, " "), out.ExitCode)}
	}

	task.Succeed("Installed dependencies")
	return nil
}

func (r *Runner) echo(out *Outcome) {
	w := r.Output
	if w == nil {
		w = os.Stderr
	}
	for _, s := range []string{out.Stderr, out.Stdout} {
		if s = strings.TrimSpace(s); s != "" {
			fmt.Fprintln(w, s)
		}
	}
}
