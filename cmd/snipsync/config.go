package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/config"
	"github.com/steveyegge/snipsync/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Create or inspect the snipsync config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long: `Write a config file with every key at its default value.

The format follows the file extension; without a path, snipsync.<format> is
written in the current directory. With --interactive the base paths, site
and database are asked for first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		interactive, _ := cmd.Flags().GetBool("interactive")

		path := "snipsync." + strings.ToLower(format)
		if len(args) == 1 {
			path = args[0]
			if filepath.Ext(path) == "" {
				path += "." + strings.ToLower(format)
			}
		}

		values := config.Defaults()
		if interactive {
			if err := promptValues(values); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				return err
			}
		}

		if err := config.WriteFile(path, values, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.RenderPass("✓"), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, config file, SNIPSYNC_*
environment variables and flags are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := config.Encode(cfg.Map(), format)
		if err != nil {
			return err
		}
		if cfg.File != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", ui.RenderMuted("# from "+cfg.File))
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// promptValues asks for the settings that have no useful default.
func promptValues(values map[string]any) error {
	var (
		snippetBase = values["snippet_file_basepath"].(string)
		globalBase  = values["globalvar_file_basepath"].(string)
		site        = values["site_short_name"].(string)
		prefix      = values["table_prefix"].(string)
		saveFiles   = true
		driver      = config.DriverSQLite
		dsn         string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snippet file base path").
				Value(&snippetBase),
			huh.NewInput().
				Title("Global variable file base path").
				Value(&globalBase),
			huh.NewInput().
				Title("Site short name").
				Value(&site),
			huh.NewInput().
				Title("Table prefix").
				Description("Prepended to snippets and global_variables").
				Value(&prefix),
			huh.NewConfirm().
				Title("Save templates as files?").
				Value(&saveFiles),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Record store").
				Options(huh.NewOptions(config.DriverSQLite, config.DriverPostgres)...).
				Value(&driver),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("PostgreSQL DSN").
				Placeholder("host=localhost user=cms dbname=cms sslmode=disable").
				Value(&dsn),
		).WithHideFunc(func() bool { return driver != config.DriverPostgres }),
	)
	if err := form.Run(); err != nil {
		return err
	}

	values["snippet_file_basepath"] = snippetBase
	values["globalvar_file_basepath"] = globalBase
	values["site_short_name"] = site
	values["table_prefix"] = prefix
	values["save_tmpl_files"] = saveFiles

	db := values["database"].(map[string]any)
	db["driver"] = driver
	db["dsn"] = dsn
	return nil
}

func init() {
	configInitCmd.Flags().String("format", "yaml", "File format: yaml, toml or json")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolP("interactive", "i", false, "Prompt for the main settings")

	configShowCmd.Flags().String("format", "yaml", "Output format: yaml, toml or json")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
