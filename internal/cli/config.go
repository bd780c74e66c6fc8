package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/x402-tools/create-x402/internal/config"
	"github.com/x402-tools/create-x402/internal/fetcher"
	"github.com/x402-tools/create-x402/internal/installer"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: fmt.Sprintf(`Read and write settings stored at %s.

Keys: %s`, config.FilePath(), strings.Join(config.Keys(), ", ")),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := validateConfigValue(key, value); err != nil {
			return err
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsKnownKey(args[0]) {
			return fmt.Errorf("unknown config key %q (known: %s)", args[0], strings.Join(config.Keys(), ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

// validateConfigValue rejects values the scaffold pipeline cannot use.
func validateConfigValue(key, value string) error {
	switch key {
	case config.KeyPackageManager:
		if _, err := installer.BinaryName(value, ""); err != nil {
			return err
		}
	case config.KeyFetchMode:
		if value != fetcher.ModeTarball && value != fetcher.ModeGit {
			return fmt.Errorf("unknown fetch mode %q: supported modes are %q and %q", value, fetcher.ModeTarball, fetcher.ModeGit)
		}
	case config.KeyExamplesRepo:
		if _, err := fetcher.ParseLocator(value); err != nil {
			return err
		}
	}
	return nil
}
