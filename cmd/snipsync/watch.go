package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/sync"
	"github.com/steveyegge/snipsync/internal/ui"
	"github.com/steveyegge/snipsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Sync now, then again whenever target files change",
	Long: `Run a sync pass, then watch both target directories and run a full
pass again after files are created, written, removed or renamed.

Bursts of changes are collapsed using watch.debounce (default 500ms). A
verification failure or store error is logged and watching continues; a
directory error stops the watcher. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		run := func() error {
			ok, err := a.engine.SyncAll()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.RenderFail("✗"), a.engine.ErrorMessage())
				return nil
			}
			ui.PrintSyncLog(cmd.OutOrStdout(), a.engine.LastSyncLog(), a.engine.LastStats())
			return nil
		}

		return runWatcher(cmd.Context(), a, run)
	},
}

// runWatcher watches the engine's target directories until SIGINT/SIGTERM.
func runWatcher(parent context.Context, a *app, run watch.RunFunc) error {
	dirs := watchDirs(a.engine.Targets())
	if len(dirs) == 0 {
		return fmt.Errorf("no target directories configured (set snippet_file_basepath and globalvar_file_basepath)")
	}

	w, err := watch.New(dirs, run, &watch.Config{
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logs.Logger("watch"),
	})
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return w.Start(ctx)
}

func watchDirs(targets []sync.Target) []string {
	dirs := make([]string, 0, len(targets))
	for _, target := range targets {
		if target.Dir != "" {
			dirs = append(dirs, target.Dir)
		}
	}
	return dirs
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
