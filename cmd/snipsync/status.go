package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/sync"
	"github.com/steveyegge/snipsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show target directories, file counts and record counts",
	Long: `Show where each target reads from and writes to, without syncing.

Target directories and record tables are not created or modified: a missing
directory or table is reported, not made. Opening the SQLite store creates an
empty database file if none exists yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fs := afero.NewOsFs()
		if a.cfg.File != "" {
			fmt.Fprintf(out, "Config:   %s\n", a.cfg.File)
		}
		fmt.Fprintf(out, "Driver:   %s\n", a.cfg.Database.Driver)
		if !a.cfg.SaveTmplFiles {
			fmt.Fprintf(out, "%s save_tmpl_files is disabled; sync will refuse to run\n", ui.RenderWarn("!"))
		}
		fmt.Fprintln(out)

		for _, target := range a.engine.Targets() {
			fmt.Fprintf(out, "%s\n", ui.RenderAccent(target.Kind.String()))

			if target.Dir == "" {
				fmt.Fprintf(out, "  dir:     %s\n", ui.RenderWarn("(base path not set)"))
			} else {
				fmt.Fprintf(out, "  dir:     %s\n", target.Dir)
				files, err := sync.ListFiles(fs, target.Dir)
				if err != nil {
					fmt.Fprintf(out, "  files:   %s\n", ui.RenderFail(err.Error()))
				} else {
					fmt.Fprintf(out, "  files:   %d\n", len(files))
				}
			}

			count, err := a.store.CountAll(cmd.Context(), target.Table)
			if err != nil {
				fmt.Fprintf(out, "  table:   %s %s\n", target.Table, ui.RenderFail("("+err.Error()+")"))
				continue
			}
			fmt.Fprintf(out, "  table:   %s (%d records)\n", target.Table, count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
