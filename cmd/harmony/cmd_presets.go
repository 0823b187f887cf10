package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmony-api/internal/config"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Inspect the generation presets",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the embedded presets merged with PRESETS_FILE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := presets.LoadWithOverrides(config.Load().PresetsFile)
			if err != nil {
				return err
			}
			all := catalog.List()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLENGTH\tCADENCE\tDESCRIPTION")
			for _, p := range all {
				fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", p.Name, p.Length, p.Cadence, p.Description)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print presets as JSON")
	cmd.AddCommand(list)
	return cmd
}
