// Command snipsync copies CMS snippet and global variable files into their
// database records.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/config"
	"github.com/steveyegge/snipsync/internal/ui"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "snipsync",
	Short: "Sync CMS snippet and global variable files into the database",
	Long: `snipsync keeps CMS snippet and global variable records in step with
files on disk.

Each regular file in <basepath>/<site> becomes one record: the file name
(extension stripped, illegal characters replaced) is the identifier and the
file body is the contents. Existing records are updated, new ones inserted.
Records are never deleted.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./snipsync.{yaml,toml,json})")
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(exitCode(err))
	}
}
