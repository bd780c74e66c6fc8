package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/x402-tools/create-x402/internal/config"
	"github.com/x402-tools/create-x402/internal/installer"
	"github.com/x402-tools/create-x402/internal/manifest"
)

var (
	checkRuntime  bool
	checkConfig   bool
	checkManifest string
)

func init() {
	doctorCmd.Flags().BoolVar(&checkRuntime, "check-runtime", false, "Verify Node, the package manager and git are available")
	doctorCmd.Flags().BoolVar(&checkConfig, "check-config", false, "Show the effective configuration")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a package.json file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the local toolchain can build a new project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		anyFlag := checkRuntime || checkConfig || checkManifest != ""

		if !anyFlag || checkRuntime {
			if failed := runRuntimeCheck(cmd, out); failed > 0 && checkRuntime {
				return fmt.Errorf("%d runtime check(s) failed", failed)
			}
		}
		if !anyFlag || checkConfig {
			runConfigCheck(out)
		}
		if checkManifest != "" {
			if err := runManifestCheck(out, checkManifest); err != nil {
				return err
			}
		}
		return nil
	},
}

func runtimeRequirements() []installer.Requirement {
	reqs := []installer.Requirement{installer.DefaultRequirements[0]}

	manager := config.Get(config.KeyPackageManager)
	bin, err := installer.BinaryName(manager, runtime.GOOS)
	if err != nil {
		bin = manager
	}
	req := installer.Requirement{Name: bin}
	if manager == installer.DefaultManager {
		req.Constraint = installer.DefaultRequirements[1].Constraint
	}
	reqs = append(reqs, req)

	return append(reqs, installer.DefaultRequirements[2:]...)
}

func runRuntimeCheck(cmd *cobra.Command, out io.Writer) int {
	fmt.Fprintln(out, "Runtime check:")

	ex := &installer.ExecExecutor{}
	failed := 0
	for _, req := range runtimeRequirements() {
		st := installer.CheckTool(cmd.Context(), ex, req)
		switch {
		case st.OK:
			fmt.Fprintf(out, "  [ OK ] %s\n", st.Message)
		case st.Path == "":
			failed++
			fmt.Fprintf(out, "  [MISS] %s\n", st.Message)
		default:
			failed++
			fmt.Fprintf(out, "  [FAIL] %s\n", st.Message)
		}
	}
	return failed
}

func runConfigCheck(out io.Writer) {
	fmt.Fprintln(out, "Configuration:")

	path := config.FilePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  [INFO] %s not found, using defaults\n", path)
	} else {
		fmt.Fprintf(out, "  [ OK ] %s\n", path)
	}
	for _, key := range config.Keys() {
		value := config.Get(key)
		if value == "" {
			value = "(default)"
		}
		fmt.Fprintf(out, "         %s = %s\n", key, value)
	}
}

func runManifestCheck(out io.Writer, path string) error {
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		fmt.Fprintln(out, "  [ OK ] Valid package.json")
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
