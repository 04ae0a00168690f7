package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg, err := Load("", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Site != "default_site" {
		t.Errorf("Site = %q, want default_site", cfg.Site)
	}
	if cfg.SaveTmplFiles {
		t.Error("SaveTmplFiles = true, want false")
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != ".snipsync/cms.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080", cfg.Dashboard.Port)
	}
	if mode, err := cfg.DirMode(); err != nil || mode != 0777 {
		t.Errorf("DirMode() = %#o, %v; want 0777", mode, err)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want empty", cfg.File)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv("ENV", "production")
	dir := t.TempDir()

	yaml := `
snippet_file_basepath: /srv/templates/snippets
globalvar_file_basepath: /srv/templates/global_variables
site_short_name: blog
save_tmpl_files: true
table_prefix: exp_
watch:
  debounce: 2s
`
	if err := os.WriteFile(filepath.Join(dir, "snipsync.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load("", dir, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SnippetBasePath() != "/srv/templates/snippets" {
		t.Errorf("SnippetBasePath() = %q", cfg.SnippetBasePath())
	}
	if cfg.GlobalVarBasePath() != "/srv/templates/global_variables" {
		t.Errorf("GlobalVarBasePath() = %q", cfg.GlobalVarBasePath())
	}
	if cfg.SiteShortName() != "blog" {
		t.Errorf("SiteShortName() = %q", cfg.SiteShortName())
	}
	if !cfg.SaveTemplateFiles() {
		t.Error("SaveTemplateFiles() = false")
	}
	if cfg.TablePrefix() != "exp_" {
		t.Errorf("TablePrefix() = %q", cfg.TablePrefix())
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
	}
	if !strings.HasSuffix(cfg.File, "snipsync.yaml") {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	t.Setenv("ENV", "production")
	path := filepath.Join(t.TempDir(), "custom.toml")

	toml := `
site_short_name = "shop"

[database]
driver = "postgres"
dsn = "host=localhost dbname=cms"
`
	if err := os.WriteFile(path, []byte(toml), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path, "", nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Site != "shop" {
		t.Errorf("Site = %q", cfg.Site)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "host=localhost dbname=cms" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Setenv("ENV", "production")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "", nil); err == nil {
		t.Error("Load() with missing explicit file succeeded")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SNIPSYNC_SITE_SHORT_NAME", "from_env")
	t.Setenv("SNIPSYNC_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("SNIPSYNC_SAVE_TMPL_FILES", "true")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snipsync.yaml"), []byte("site_short_name: from_file\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load("", dir, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Site != "from_env" {
		t.Errorf("Site = %q, want from_env", cfg.Site)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.SaveTmplFiles {
		t.Error("SaveTmplFiles = false, want true")
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SNIPSYNC_SITE_SHORT_NAME", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse([]string{"--site", "from_flag", "--db-path", "/tmp/flag.db"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := Load("", t.TempDir(), flags)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Site != "from_flag" {
		t.Errorf("Site = %q, want from_flag", cfg.Site)
	}
	if cfg.Database.Path != "/tmp/flag.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoad_UnsetFlagsKeepDefaults(t *testing.T) {
	t.Setenv("ENV", "production")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := Load("", t.TempDir(), flags)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Site != "default_site" {
		t.Errorf("Site = %q, want default_site", cfg.Site)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DirWriteMode: 0755,
			Database:     DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"valid postgres", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverPostgres, DSN: "dsn"} }, false},
		{"postgres without dsn", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverPostgres} }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, true},
		{"setuid mode", func(c *Config) { c.DirWriteMode = 04755 }, true},
		{"mode too large", func(c *Config) { c.DirWriteMode = 07777 }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Setenv("ENV", "production")

	for _, ext := range []string{"yaml", "toml", "json"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "snipsync."+ext)

			values := Defaults()
			values["site_short_name"] = "roundtrip"
			if err := WriteFile(path, values, false); err != nil {
				t.Fatalf("WriteFile() failed: %v", err)
			}

			cfg, err := Load(path, "", nil)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.Site != "roundtrip" {
				t.Errorf("Site = %q, want roundtrip", cfg.Site)
			}
			if cfg.Watch.Debounce != 500*time.Millisecond {
				t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
			}

			if err := WriteFile(path, values, false); err == nil {
				t.Error("WriteFile() over existing file succeeded without overwrite")
			}
			if err := WriteFile(path, values, true); err != nil {
				t.Errorf("WriteFile() with overwrite failed: %v", err)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if _, err := Encode(Defaults(), "ini"); err == nil {
		t.Error("Encode(ini) succeeded")
	}
}

func TestMap_MatchesDefaultsKeys(t *testing.T) {
	t.Setenv("ENV", "production")
	cfg, err := Load("", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	got := cfg.Map()
	for key := range Defaults() {
		if _, ok := got[key]; !ok {
			t.Errorf("Map() missing key %q", key)
		}
	}
}

func TestLoad_DirWriteMode(t *testing.T) {
	t.Setenv("ENV", "production")

	tests := []struct {
		name string
		file string
		body string
		want os.FileMode
	}{
		{"yaml unquoted", "snipsync.yaml", "dir_write_mode: 0777\n", 0777},
		{"yaml quoted", "snipsync.yaml", "dir_write_mode: \"0755\"\n", 0755},
		{"yaml without leading zero", "snipsync.yaml", "dir_write_mode: \"750\"\n", 0750},
		{"toml octal literal", "snipsync.toml", "dir_write_mode = 0o777\n", 0777},
		{"toml string", "snipsync.toml", "dir_write_mode = \"0o700\"\n", 0700},
		{"json string", "snipsync.json", `{"dir_write_mode": "0775"}`, 0775},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.body), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			cfg, err := Load("", dir, nil)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			mode, err := cfg.DirMode()
			if err != nil {
				t.Fatalf("DirMode() failed: %v", err)
			}
			if mode != tt.want {
				t.Errorf("DirMode() = %#o, want %#o", mode, tt.want)
			}
		})
	}
}

func TestLoad_DirWriteModeFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")

	t.Setenv("SNIPSYNC_DIR_WRITE_MODE", "0700")
	cfg, err := Load("", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DirWriteMode != 0700 {
		t.Errorf("DirWriteMode = %#o, want 0700", cfg.DirWriteMode)
	}

	t.Setenv("SNIPSYNC_DIR_WRITE_MODE", "rwx")
	if _, err := Load("", t.TempDir(), nil); err == nil {
		t.Error("Load() with non-octal mode succeeded")
	}

	t.Setenv("SNIPSYNC_DIR_WRITE_MODE", "17777")
	if _, err := Load("", t.TempDir(), nil); err == nil {
		t.Error("Load() with mode beyond permission bits succeeded")
	}
}

func TestLoad_YesNoFlag(t *testing.T) {
	t.Setenv("ENV", "production")

	tests := []struct {
		value string
		want  bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"n", false},
		{"no", false},
		{"true", true},
		{"0", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SNIPSYNC_SAVE_TMPL_FILES", tt.value)
			cfg, err := Load("", t.TempDir(), nil)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.SaveTmplFiles != tt.want {
				t.Errorf("SaveTmplFiles = %v, want %v", cfg.SaveTmplFiles, tt.want)
			}
		})
	}
}

func TestLoad_YesNoFlagInFile(t *testing.T) {
	t.Setenv("ENV", "production")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snipsync.yaml"), []byte("save_tmpl_files: y\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load("", dir, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.SaveTmplFiles {
		t.Error("SaveTmplFiles = false, want true")
	}
}

func TestMap_DirWriteModeIsOctal(t *testing.T) {
	cfg := Config{DirWriteMode: 0755}
	if got := cfg.Map()["dir_write_mode"]; got != "0755" {
		t.Errorf("Map()[dir_write_mode] = %v, want 0755", got)
	}
}
