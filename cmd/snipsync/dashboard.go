package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Watch target files and stream sync runs over WebSocket",
	Long: `Run the watch loop and broadcast every sync run to WebSocket clients.

WebSocket messages include:
- hello: sent once on connect
- sync_complete: run finished; carries the sync log, counts and duration
- sync_failed: verification failed or the run aborted

A client connecting after a run first receives the most recent one.

Example usage:
  snipsync dashboard                   # Start on dashboard.port (default 8080)
  snipsync dashboard --port 9000       # Start on custom port

Connect with a WebSocket client:
  ws://localhost:8080/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Dashboard.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		server := dashboard.NewServer(&dashboard.Config{
			Port:   port,
			Logger: a.logs.Logger("dashboard"),
		})
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dashboard server started on http://%s\n", server.GetAddr())
		fmt.Fprintf(out, "WebSocket endpoint: ws://%s/ws\n", server.GetAddr())
		fmt.Fprintln(out, "\nPress Ctrl+C to stop...")

		handler := dashboard.NewHandler(server, a.logs.Logger("dashboard"))
		watchErr := runWatcher(cmd.Context(), a, handler.Wrap(a.engine))

		fmt.Fprintln(out, "\nShutting down dashboard server...")
		if err := server.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error during shutdown: %v\n", err)
		}
		return watchErr
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides dashboard.port)")
	rootCmd.AddCommand(dashboardCmd)
}
