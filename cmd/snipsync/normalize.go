package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/sync"
	"github.com/steveyegge/snipsync/internal/ui"
)

var normalizeCmd = &cobra.Command{
	Use:     "normalize <filename>...",
	GroupID: "advanced",
	Short:   "Print the record identifier each file name maps to",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			id := sync.Normalize(name)
			if id == "" {
				id = ui.RenderWarn(`""`)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", name, ui.RenderMuted("→"), id)
		}
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
