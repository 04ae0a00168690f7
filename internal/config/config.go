// Package config loads snipsync settings from a config file, the environment
// and command-line flags.
//
// Precedence, highest first: flags, SNIPSYNC_* environment variables
// (a .env file is loaded outside production), the config file
// (snipsync.yaml, snipsync.toml or snipsync.json in the working directory, or
// the --config path), then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Driver names accepted in database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full snipsync configuration.
type Config struct {
	SnippetFileBasePath   string      `mapstructure:"snippet_file_basepath"`
	GlobalVarFileBasePath string      `mapstructure:"globalvar_file_basepath"`
	Site                  string      `mapstructure:"site_short_name"`
	SaveTmplFiles         bool        `mapstructure:"save_tmpl_files"`
	DBTablePrefix         string      `mapstructure:"table_prefix"`
	DirWriteMode          os.FileMode `mapstructure:"dir_write_mode"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DashboardConfig configures the dashboard command.
type DashboardConfig struct {
	Port int `mapstructure:"port"`
}

// Defaults returns the default settings as a nested map. It seeds viper and
// is the body of files written by `snipsync config init`.
func Defaults() map[string]any {
	return map[string]any{
		"snippet_file_basepath":   "",
		"globalvar_file_basepath": "",
		"site_short_name":         "default_site",
		"save_tmpl_files":         false,
		"table_prefix":            "",
		"dir_write_mode":          "0777",
		"database": map[string]any{
			"driver": DriverSQLite,
			"path":   ".snipsync/cms.db",
			"dsn":    "",
		},
		"log": map[string]any{
			"file":         "",
			"max_size_mb":  10,
			"max_backups":  3,
			"max_age_days": 28,
		},
		"watch": map[string]any{
			"debounce": "500ms",
		},
		"dashboard": map[string]any{
			"port": 8080,
		},
	}
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"snippet-basepath":   "snippet_file_basepath",
	"globalvar-basepath": "globalvar_file_basepath",
	"site":               "site_short_name",
	"db-driver":          "database.driver",
	"db-path":            "database.path",
	"db-dsn":             "database.dsn",
	"log-file":           "log.file",
}

// RegisterFlags adds the persistent flags that override config keys.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("snippet-basepath", "", "Base directory of snippet files")
	flags.String("globalvar-basepath", "", "Base directory of global variable files")
	flags.String("site", "", "Site short name (subdirectory of each base path)")
	flags.String("db-driver", "", "Record store driver: sqlite or postgres")
	flags.String("db-path", "", "SQLite database path")
	flags.String("db-dsn", "", "PostgreSQL connection string")
	flags.String("log-file", "", "Also write logs to this file (rotated)")
}

// Load reads the configuration. cfgFile may be empty to search dir for
// snipsync.{yaml,toml,json}; a missing file is not an error. flags may be nil.
func Load(cfgFile, dir string, flags *pflag.FlagSet) (*Config, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load() // optional .env for local authoring
	}

	v := viper.New()
	setDefaults(v, "", Defaults())

	v.SetEnvPrefix("SNIPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("snipsync")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf of m under prefix.
func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Validate checks values that the rest of the program assumes are sane.
func (c *Config) Validate() error {
	if _, err := c.DirMode(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q (want %s or %s)",
			c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// DirMode returns dir_write_mode, rejecting anything beyond permission bits.
func (c *Config) DirMode() (os.FileMode, error) {
	if c.DirWriteMode&^os.ModePerm != 0 {
		return 0, fmt.Errorf("invalid dir_write_mode %#o: want a permission mode such as 0777", uint32(c.DirWriteMode))
	}
	return c.DirWriteMode, nil
}

// SnippetBasePath implements sync.ConfigProvider.
func (c *Config) SnippetBasePath() string { return c.SnippetFileBasePath }

// GlobalVarBasePath implements sync.ConfigProvider.
func (c *Config) GlobalVarBasePath() string { return c.GlobalVarFileBasePath }

// SiteShortName implements sync.ConfigProvider.
func (c *Config) SiteShortName() string { return c.Site }

// SaveTemplateFiles implements sync.ConfigProvider.
func (c *Config) SaveTemplateFiles() bool { return c.SaveTmplFiles }

// TablePrefix implements sync.ConfigProvider.
func (c *Config) TablePrefix() string { return c.DBTablePrefix }
