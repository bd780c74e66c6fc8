package scaffold

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"go.uber.org/zap"

	"github.com/x402-tools/create-x402/internal/catalog"
	"github.com/x402-tools/create-x402/internal/fetcher"
	"github.com/x402-tools/create-x402/internal/installer"
	"github.com/x402-tools/create-x402/internal/logging"
	"github.com/x402-tools/create-x402/internal/manifest"
	"github.com/x402-tools/create-x402/internal/prompt"
	"github.com/x402-tools/create-x402/internal/status"
)

//go:embed templates/next-steps.tmpl
var nextStepsText string

var nextStepsTmpl = template.Must(template.New("next-steps").Parse(nextStepsText))

// Installer installs dependencies in a project directory.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// Options are the per-run inputs. Empty TemplateID or ProjectName are asked for.
type Options struct {
	TemplateID   string
	ProjectName  string
	Dir          string // parent of the project directory; defaults to the working directory
	SkipInstall  bool
	ExamplesBase string
	// Manager is the package manager named in the next-steps summary.
	Manager string
}

// Result describes a completed run.
type Result struct {
	TemplateID string
	Name       string
	Target     string
	Locator    fetcher.Locator
	Manifest   *manifest.Result
	Installed  bool
}

// Runner wires the pipeline stages together.
type Runner struct {
	Catalog   *catalog.Catalog
	Prompter  prompt.Prompter
	Fetcher   fetcher.Fetcher
	Installer Installer
	Reporter  *status.Reporter
	Logger    *zap.Logger
	// Out receives the next-steps summary; nil discards it.
	Out io.Writer
}

// Run executes the pipeline. Prompt cancellation returns prompt.ErrCancelled
// before anything is written. Install failures return *installer.ExitError.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.OrNop(r.Logger)
	reporter := r.Reporter
	if reporter == nil {
		reporter = status.New(io.Discard)
	}

	templateID, err := r.selectTemplate(ctx, opts.TemplateID)
	if err != nil {
		return nil, err
	}

	name := opts.ProjectName
	if name == "" {
		name, err = r.Prompter.ProjectName(ctx, catalog.DefaultProjectName(templateID))
		if err != nil {
			return nil, err
		}
	}
	if name, err = prompt.CleanName(name); err != nil {
		return nil, err
	}

	// Interrupted before anything was downloaded.
	if ctx.Err() != nil {
		return nil, prompt.ErrCancelled
	}

	target, err := targetDir(opts.Dir, name)
	if err != nil {
		return nil, err
	}
	if err := fetcher.EnsureAbsent(target); err != nil {
		if errors.Is(err, fetcher.ErrTargetExists) {
			return nil, fmt.Errorf("folder %s already exists: %w", name, err)
		}
		return nil, err
	}

	raw, err := r.Catalog.Resolve(templateID, opts.ExamplesBase)
	if err != nil {
		return nil, err
	}
	loc, err := fetcher.ParseLocator(raw)
	if err != nil {
		return nil, fmt.Errorf("resolving template %s: %w", templateID, err)
	}

	result := &Result{TemplateID: templateID, Name: name, Target: target, Locator: loc}
	logger.Debug("Resolved template",
		zap.String("template", templateID),
		zap.String("locator", loc.String()),
		zap.String("target", target))

	task := reporter.Start(fmt.Sprintf("Downloading %s", templateID))
	if err := r.Fetcher.Fetch(ctx, loc, target); err != nil {
		task.Fail(fmt.Sprintf("Failed to download %s", templateID))
		return nil, fmt.Errorf("downloading %s: %w", loc, err)
	}
	task.Succeed(fmt.Sprintf("Downloaded %s", templateID))

	task = reporter.Start("Updating workspace dependencies")
	fixed, err := manifest.FixWorkspaceDeps(target)
	if err != nil {
		task.Fail("Could not update package.json")
		return nil, err
	}
	result.Manifest = fixed
	for _, rw := range fixed.Rewritten {
		logger.Warn("Pinned workspace dependency to latest; the published package may differ",
			zap.String("package", rw.Package),
			zap.String("group", rw.Group),
			zap.String("was", rw.From))
	}
	if fixed.Changed {
		task.Succeed(fmt.Sprintf("Updated %d workspace dependencies", len(fixed.Rewritten)))
	} else {
		task.Succeed("No workspace dependencies to update")
	}

	if opts.SkipInstall || r.Installer == nil {
		logger.Debug("Skipping dependency install", zap.String("target", target))
	} else {
		if err := r.Installer.Install(ctx, target); err != nil {
			return nil, err
		}
		result.Installed = true
	}

	if r.Out != nil {
		if err := writeNextSteps(r.Out, result, opts.Manager); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Runner) selectTemplate(ctx context.Context, id string) (string, error) {
	if id != "" {
		if _, ok := r.Catalog.Lookup(id); !ok {
			return "", fmt.Errorf("unknown template %q; run `list` to see available templates", id)
		}
		return id, nil
	}
	return r.Prompter.SelectTemplate(ctx, r.Catalog.Templates())
}

func targetDir(parent, name string) (string, error) {
	if parent == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		parent = wd
	}
	return filepath.Join(parent, name), nil
}

func writeNextSteps(w io.Writer, res *Result, manager string) error {
	if manager == "" {
		manager = installer.DefaultManager
	}
	data := struct {
		*Result
		Manager   string
		Template  string
		Rewritten []manifest.Rewrite
	}{Result: res, Manager: manager, Template: res.TemplateID}
	if res.Manifest != nil {
		data.Rewritten = res.Manifest.Rewritten
	}
	if err := nextStepsTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering next steps: %w", err)
	}
	return nil
}
