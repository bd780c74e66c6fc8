package installer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Requirement is a tool the scaffolder depends on and the versions it accepts.
type Requirement struct {
	Name       string
	Constraint string // semver constraint; empty accepts any version
}

// DefaultRequirements lists the tools checked by the doctor command.
var DefaultRequirements = []Requirement{
	{Name: "node", Constraint: ">= 18.0.0"},
	{Name: "npm", Constraint: ">= 8.0.0"},
	{Name: "git"},
}

// ToolStatus is the result of checking one requirement.
type ToolStatus struct {
	Name    string
	Path    string
	Version string
	OK      bool
	Message string
}

// LookPath is swapped in tests.
var LookPath = exec.LookPath

// CheckTool locates req on PATH, asks it for its version and compares the
// result with req.Constraint.
func CheckTool(ctx context.Context, ex Executor, req Requirement) ToolStatus {
	st := ToolStatus{Name: req.Name}

	path, err := LookPath(req.Name)
	if err != nil {
		st.Message = fmt.Sprintf("%s not found", req.Name)
		return st
	}
	st.Path = path

	out, err := ex.Run(ctx, Command{Name: path, Args: []string{"--version"}, Silent: true})
	if err != nil || out.ExitCode != 0 {
		st.Message = fmt.Sprintf("%s --version failed", req.Name)
		return st
	}

	st.Version = ExtractVersion(out.Stdout)
	if req.Constraint == "" {
		st.OK = true
		st.Message = fmt.Sprintf("%s found at %s", req.Name, path)
		return st
	}

	ok, err := Satisfies(st.Version, req.Constraint)
	if err != nil {
		st.Message = err.Error()
		return st
	}
	st.OK = ok
	if ok {
		st.Message = fmt.Sprintf("%s %s satisfies %s", req.Name, st.Version, req.Constraint)
	} else {
		st.Message = fmt.Sprintf("%s %s does not satisfy %s", req.Name, st.Version, req.Constraint)
	}
	return st
}

// Satisfies reports whether version meets constraint. A leading "v" is tolerated.
func Satisfies(version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return c.Check(v), nil
}

// ExtractVersion pulls the first version-looking field out of --version
// output ("v20.11.1", "git version 2.43.0", "10.2.4").
func ExtractVersion(output string) string {
	for _, f := range strings.Fields(output) {
		candidate := strings.TrimPrefix(f, "v")
		if candidate == "" || candidate[0] < '0' || candidate[0] > '9' {
			continue
		}
		if v, err := semver.NewVersion(candidate); err == nil {
			return v.String()
		}
	}
	return strings.TrimSpace(output)
}
