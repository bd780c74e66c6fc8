package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/x402-tools/create-x402/internal/catalog"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Long:  `List the templates that can be passed to --template, with the source each one is downloaded from.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a template for display.
type listEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	base := catalog.ExamplesBase()
	templates := cat.Templates()
	entries := make([]listEntry, len(templates))
	for i, t := range templates {
		entries[i] = listEntry{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Source:      t.Locator(base),
		}
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tTITLE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Title, e.Source)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
