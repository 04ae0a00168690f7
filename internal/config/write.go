package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Map returns the effective settings as a nested map keyed like the config
// file.
func (c *Config) Map() map[string]any {
	return map[string]any{
		"snippet_file_basepath":   c.SnippetFileBasePath,
		"globalvar_file_basepath": c.GlobalVarFileBasePath,
		"site_short_name":         c.Site,
		"save_tmpl_files":         c.SaveTmplFiles,
		"table_prefix":            c.DBTablePrefix,
		"dir_write_mode":          fmt.Sprintf("%#o", uint32(c.DirWriteMode)),
		"database": map[string]any{
			"driver": c.Database.Driver,
			"path":   c.Database.Path,
			"dsn":    c.Database.DSN,
		},
		"log": map[string]any{
			"file":         c.Log.File,
			"max_size_mb":  c.Log.MaxSizeMB,
			"max_backups":  c.Log.MaxBackups,
			"max_age_days": c.Log.MaxAgeDays,
		},
		"watch": map[string]any{
			"debounce": c.Watch.Debounce.String(),
		},
		"dashboard": map[string]any{
			"port": c.Dashboard.Port,
		},
	}
}

// Encode renders values as yaml, toml or json.
func Encode(values map[string]any, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(values); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(values); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want yaml, toml or json)", format)
	}

	return buf.Bytes(), nil
}

// WriteFile encodes values into path, picking the format from the file
// extension. An existing file is only replaced when overwrite is set.
func WriteFile(path string, values map[string]any, overwrite bool) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Encode(values, format)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
