package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/x402-tools/create-x402/internal/branding"
	"github.com/x402-tools/create-x402/internal/catalog"
	"github.com/x402-tools/create-x402/internal/config"
	"github.com/x402-tools/create-x402/internal/fetcher"
	"github.com/x402-tools/create-x402/internal/installer"
	"github.com/x402-tools/create-x402/internal/logging"
	"github.com/x402-tools/create-x402/internal/prompt"
	"github.com/x402-tools/create-x402/internal/scaffold"
	"github.com/x402-tools/create-x402/internal/status"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose      bool
	templateFlag string
	nameFlag     string
	skipInstall  bool

	logger = zap.NewNop()
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&templateFlag, "template", "t", "", "Template to use (see `list`); prompts when omitted")
	rootCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Project directory name; prompts when omitted")
	rootCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Do not install dependencies")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " [project-name]",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates a new x402 project from one of the official example
templates: it downloads the template, pins workspace dependencies to
published versions and installs them.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := nameFlag
	if name == "" && len(args) == 1 {
		name = args[0]
	}

	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	f, err := fetcher.New(fetcher.Options{
		Mode:           config.Get(config.KeyFetchMode),
		ArchiveBaseURL: config.Get(config.KeyArchiveBaseURL),
		Token:          os.Getenv("GITHUB_TOKEN"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reporter := status.New(out)
	manager := config.Get(config.KeyPackageManager)

	runner := &scaffold.Runner{
		Catalog:  cat,
		Prompter: prompt.New(cmd.InOrStdin(), out),
		Fetcher:  f,
		Installer: &installer.Runner{
			Executor: &installer.ExecExecutor{},
			Reporter: reporter,
			Logger:   logger,
			Manager:  manager,
			Silent:   !verbose,
			Output:   cmd.ErrOrStderr(),
		},
		Reporter: reporter,
		Logger:   logger,
		Out:      out,
	}

	_, err = runner.Run(cmd.Context(), scaffold.Options{
		TemplateID:   templateFlag,
		ProjectName:  name,
		SkipInstall:  skipInstall,
		ExamplesBase: catalog.ExamplesBase(),
		Manager:      manager,
	})
	return err
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the command's context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode reports err on w and returns the process exit status for it.
// Cancellation is not a failure.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, prompt.ErrCancelled) {
		fmt.Fprintln(w, "Operation cancelled.")
		return 0
	}

	fmt.Fprintf(w, "Error: %v\n", err)

	var exitErr *installer.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}
