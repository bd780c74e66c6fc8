package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	withHome(t)
	Load()

	if got := Get(KeyPackageManager); got != "npm" {
		t.Errorf("package_manager = %q, want %q", got, "npm")
	}
	if got := Get(KeyFetchMode); got != "tarball" {
		t.Errorf("fetch_mode = %q, want %q", got, "tarball")
	}
	if got := Get(KeyExamplesRepo); got != "" {
		t.Errorf("examples_repo = %q, want empty", got)
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	withHome(t)
	t.Setenv("CREATE_X402_PACKAGE_MANAGER", "pnpm")
	Load()

	if got := Get(KeyPackageManager); got != "pnpm" {
		t.Errorf("package_manager = %q, want %q", got, "pnpm")
	}
}

func TestSet_WritesFile(t *testing.T) {
	home := withHome(t)
	Load()

	if err := Set(KeyFetchMode, "git"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, ".create-x402", "config.yaml"))
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	if !strings.Contains(string(data), "fetch_mode: git") {
		t.Errorf("config file missing fetch_mode, got:\n%s", data)
	}
	if got := Get(KeyFetchMode); got != "git" {
		t.Errorf("fetch_mode = %q, want %q", got, "git")
	}
}

func TestSet_UnknownKey(t *testing.T) {
	withHome(t)
	Load()

	err := Set("telemetry", "off")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("error = %q, want it to mention unknown config key", err)
	}
}
