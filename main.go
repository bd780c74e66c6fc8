package main

import (
	"os"

	"github.com/x402-tools/create-x402/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := cli.Execute(version, commit, date)
	os.Exit(cli.ExitCode(err, os.Stderr))
}
