package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/sync"
	"github.com/steveyegge/snipsync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Run one sync pass over both target directories",
	Long: `Run one sync pass.

Settings are verified first: save_tmpl_files must be enabled and both base
paths must exist. Missing site directories are created. Then every regular
file of the global variable directory, followed by the snippet directory, is
written to its record.

Exit codes:
  0  sync completed
  1  settings verification failed, or a store error aborted the run
  2  a target directory could not be created, opened or made writable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.engine.SyncAll()
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			_ = enc.Encode(syncResult{
				OK:    ok,
				Error: a.engine.ErrorMessage(),
				Log:   a.engine.LastSyncLog(),
				Stats: a.engine.LastStats(),
			})
		}
		if !ok {
			return verificationFailed(a.engine.ErrorMessage())
		}

		if !jsonOutput {
			ui.PrintSyncLog(cmd.OutOrStdout(), a.engine.LastSyncLog(), a.engine.LastStats())
		}
		return nil
	},
}

// syncResult is the --json output of sync.
type syncResult struct {
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
	Log   sync.SyncLog `json:"log"`
	Stats sync.Stats   `json:"stats"`
}

func init() {
	syncCmd.Flags().Bool("json", false, "Output the sync log as JSON")
	rootCmd.AddCommand(syncCmd)
}
