package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/facereg/internal/config"
	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Identity registry commands",
	Long:  `Commands for inspecting the CSV registry of enrolled IDs and names.`,
}

var registryListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List enrolled identities",
	Long: `Prints every record of the registry in enrollment order. Without a path
the working copy (FACEREG_REGISTRY) is read. Malformed lines are reported
and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegistryList,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd)

	registryListCmd.Flags().Bool("json", false, "Output as JSON")
}

type registryEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	path := config.Load().Paths.Registry
	if len(args) == 1 {
		path = args[0]
	}
	jsonOutput := mustGetBool(cmd, "json")

	reg, skipped, err := registry.LoadLenient(path)
	if err != nil {
		return err
	}

	if jsonOutput {
		entries := make([]registryEntry, 0, reg.Len())
		for _, rec := range reg.Records() {
			entries = append(entries, registryEntry{ID: rec.ID, Name: rec.Name})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, rec := range reg.Records() {
		fmt.Fprintf(w, "%d\t%s\n", rec.ID, rec.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d identities", reg.Len())
	if len(skipped) > 0 {
		fmt.Printf(", %d lines skipped", len(skipped))
	}
	fmt.Println()
	return nil
}
