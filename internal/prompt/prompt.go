// Package prompt asks the user which template to scaffold and what to name
// the project.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/x402-tools/create-x402/internal/catalog"
)

// ErrCancelled is returned when the user aborts a prompt. Nothing has been
// written to disk at that point.
var ErrCancelled = errors.New("operation cancelled")

// Prompter collects a template choice and a project name.
type Prompter interface {
	SelectTemplate(ctx context.Context, templates []catalog.Template) (string, error)
	ProjectName(ctx context.Context, defaultName string) (string, error)
}

// New returns a TUIPrompter when in and out are both terminals and a
// LinePrompter otherwise.
func New(in io.Reader, out io.Writer) Prompter {
	if isTerminal(in) && isTerminal(out) {
		return &TUIPrompter{In: in, Out: out}
	}
	return NewLinePrompter(in, out)
}

// CleanName trims name and rejects values that cannot be used as a
// directory name.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errors.New("project name must not be empty")
	case name == "." || name == "..":
		return "", fmt.Errorf("invalid project name %q", name)
	case strings.ContainsAny(name, `\:*?"<>|`):
		return "", fmt.Errorf("project name %q contains invalid characters", name)
	}
	return name, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
