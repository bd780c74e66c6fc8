package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/x402-tools/create-x402/internal/fetcher"
	"github.com/x402-tools/create-x402/internal/installer"
	"github.com/x402-tools/create-x402/internal/prompt"
)

// execute runs the command tree with args against an isolated home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	listJSON, versionShort, versionJSON = false, false, false
	checkRuntime, checkConfig, checkManifest = false, false, ""
	templateFlag, nameFlag, skipInstall = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q, got:\n%s", want, got)
	}
}

func TestListCommand_Table(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	assertContains(t, out, "TEMPLATE")
	assertContains(t, out, "servers/express")
	assertContains(t, out, "coinbase/x402/examples/typescript/servers/express")
	assertContains(t, out, "dabit3/x402-starter-kit")
}

func TestListCommand_JSON(t *testing.T) {
	out, err := execute(t, "list", "--json")
	if err != nil {
		t.Fatalf("list --json error: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(entries) == 0 {
		t.Fatal("no templates listed")
	}
	if entries[0].ID != "servers/express" {
		t.Errorf("first template = %q, want %q", entries[0].ID, "servers/express")
	}
}

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-01"

	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version --short error: %v", err)
	}
	if out != "1.2.3\n" {
		t.Errorf("version --short = %q, want %q", out, "1.2.3\n")
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json error: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if info["commit"] != "abc123" {
		t.Errorf("commit = %q, want %q", info["commit"], "abc123")
	}
}

func TestConfigCommands(t *testing.T) {
	out, err := execute(t, "config", "set", "package_manager", "pnpm")
	if err != nil {
		t.Fatalf("config set error: %v", err)
	}
	assertContains(t, out, "Set package_manager = pnpm")

	rejected := [][]string{
		{"config", "set", "package_manager", "cargo"},
		{"config", "set", "fetch_mode", "rsync"},
		{"config", "set", "examples_repo", "nope"},
		{"config", "set", "nope", "x"},
		{"config", "get", "nope"},
	}
	for _, args := range rejected {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v succeeded, want error", args)
		}
	}
}

func TestRootCommand_UnknownTemplate(t *testing.T) {
	_, err := execute(t, "--template", "servers/nope", "--skip-install")
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Errorf("error = %v, want unknown template", err)
	}
}

func TestRootCommand_EOFOnPromptCancels(t *testing.T) {
	_, err := execute(t)
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", err)
	}
}

func TestDoctor_ManifestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{"name":"x","dependencies":{"a":"1.0.0"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`{"dependencies":{"a":1}}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "doctor", "--check-manifest", good)
	if err != nil {
		t.Fatalf("doctor on valid manifest error: %v", err)
	}
	assertContains(t, out, "[ OK ] Valid package.json")

	out, err = execute(t, "doctor", "--check-manifest", bad)
	if err == nil {
		t.Error("doctor on invalid manifest succeeded, want error")
	}
	assertContains(t, out, "[FAIL]")
}

func TestDoctor_ConfigCheck(t *testing.T) {
	out, err := execute(t, "doctor", "--check-config")
	if err != nil {
		t.Fatalf("doctor --check-config error: %v", err)
	}
	assertContains(t, out, "not found, using defaults")
	assertContains(t, out, "package_manager = npm")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"success", nil, 0, ""},
		{"cancelled", fmt.Errorf("selecting: %w", prompt.ErrCancelled), 0, "Operation cancelled."},
		{"installer code", &installer.ExitError{Code: 7, Err: errors.New("npm failed")}, 7, "Error: npm failed"},
		{"installer without code", &installer.ExitError{Err: errors.New("killed")}, 1, "Error: killed"},
		{"existing folder", fmt.Errorf("folder app already exists: %w", fetcher.ErrTargetExists), 1, "already exists"},
		{"generic", errors.New("boom"), 1, "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := ExitCode(tt.err, &buf); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
			if tt.msg == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected output %q", buf.String())
				}
				return
			}
			assertContains(t, buf.String(), tt.msg)
		})
	}
}
