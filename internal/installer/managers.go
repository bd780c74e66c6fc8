package installer

import (
	"fmt"
	"sort"
)

type manager struct {
	bin        string
	windowsBin string
	args       []string
}

// Quiet, non-interactive install invocations per package manager.
var managers = map[string]manager{
	"npm":  {bin: "npm", windowsBin: "npm.cmd", args: []string{"install", "--no-fund", "--no-audit", "--loglevel=error"}},
	"pnpm": {bin: "pnpm", windowsBin: "pnpm.cmd", args: []string{"install", "--reporter=silent"}},
	"yarn": {bin: "yarn", windowsBin: "yarn.cmd", args: []string{"install", "--silent", "--non-interactive"}},
	"bun":  {bin: "bun", windowsBin: "bun.exe", args: []string{"install", "--silent"}},
}

// DefaultManager is used when no package manager is configured.
const DefaultManager = "npm"

// Managers returns the supported package manager names, sorted.
func Managers() []string {
	names := make([]string, 0, len(managers))
	for name := range managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BinaryName returns the executable for manager on goos
// (e.g. "npm" → "npm.cmd" on windows).
func BinaryName(name, goos string) (string, error) {
	m, ok := managers[name]
	if !ok {
		return "", fmt.Errorf("unsupported package manager %q (supported: %v)", name, Managers())
	}
	if goos == "windows" {
		return m.windowsBin, nil
	}
	return m.bin, nil
}

// InstallArgs returns the argument list for a quiet install with manager.
func InstallArgs(name string) ([]string, error) {
	m, ok := managers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported package manager %q (supported: %v)", name, Managers())
	}
	args := make([]string, len(m.args))
	copy(args, m.args)
	return args, nil
}
