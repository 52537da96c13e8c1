package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bamsammich/blocksig/internal/hashfn"
)

var hashesCmd = &cobra.Command{
	Use:   "hashes",
	Short: "List the block digest algorithms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDIGEST\t")
		for _, name := range hashfn.Names() {
			alg, err := hashfn.Lookup(name)
			if err != nil {
				return err
			}
			marker := ""
			if name == hashfn.Default {
				marker = " (default)"
			}
			fmt.Fprintf(w, "%s%s\t%d bytes\t\n", name, marker, alg.Size)
		}
		return w.Flush()
	},
}
