// Package branding provides compile-time identity values for the CLI.
//
// Values come from branding.yaml, baked into the binary with //go:embed.
// Hard defaults cover a missing or partial file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	GoModule       string `yaml:"go_module"`
	ExamplesRepo   string `yaml:"examples_repo"`
	ArchiveBaseURL string `yaml:"archive_base_url"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:        "create-x402",
			DisplayName:    "create-x402",
			Description:    "Scaffold a new x402 project from an official template",
			HomeDir:        ".create-x402",
			EnvPrefix:      "CREATE_X402",
			GoModule:       "github.com/x402-tools/create-x402",
			ExamplesRepo:   "coinbase/x402/examples/typescript",
			ArchiveBaseURL: "https://github.com",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "create-x402").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".create-x402").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CREATE_X402").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ExamplesRepo returns the locator under which most templates live as
// subdirectories (e.g., "coinbase/x402/examples/typescript").
func ExamplesRepo() string { load(); return defaults.ExamplesRepo }

// ArchiveBaseURL returns the host serving repository tarballs.
func ArchiveBaseURL() string { load(); return defaults.ArchiveBaseURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("EXAMPLES_REPO") → "CREATE_X402_EXAMPLES_REPO".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
