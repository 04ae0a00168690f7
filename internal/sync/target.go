package sync

import (
	"path/filepath"

	"github.com/steveyegge/snipsync/internal/store"
)

// Kind identifies what a target directory holds.
type Kind int

const (
	// GlobalVariable is a named, site-wide text value.
	GlobalVariable Kind = iota
	// Snippet is a reusable block of template markup.
	Snippet
)

// String returns the log category name for the kind.
func (k Kind) String() string {
	switch k {
	case GlobalVariable:
		return "globals"
	case Snippet:
		return "snippets"
	default:
		return "unknown"
	}
}

// ConfigProvider supplies the settings the engine and verifier read.
type ConfigProvider interface {
	SnippetBasePath() string
	GlobalVarBasePath() string
	SiteShortName() string
	// SaveTemplateFiles reports whether templates are kept as files on disk.
	SaveTemplateFiles() bool
	// TablePrefix is prepended to both table names, e.g. "exp_".
	TablePrefix() string
}

// Target is one directory-to-table mapping.
type Target struct {
	Kind           Kind
	Dir            string
	Table          string
	IDColumn       string
	KeyColumn      string
	ContentsColumn string
}

// TableSpec returns the table layout backing the target.
func (t Target) TableSpec() store.TableSpec {
	return store.TableSpec{
		Name:           t.Table,
		IDColumn:       t.IDColumn,
		KeyColumn:      t.KeyColumn,
		ContentsColumn: t.ContentsColumn,
	}
}

// Targets returns the global variable target followed by the snippet target.
// The order is the order SyncAll processes them in.
func Targets(cfg ConfigProvider) []Target {
	prefix := cfg.TablePrefix()
	site := cfg.SiteShortName()

	return []Target{
		{
			Kind:           GlobalVariable,
			Dir:            targetDir(cfg.GlobalVarBasePath(), site),
			Table:          prefix + "global_variables",
			IDColumn:       "variable_id",
			KeyColumn:      "variable_name",
			ContentsColumn: "variable_data",
		},
		{
			Kind:           Snippet,
			Dir:            targetDir(cfg.SnippetBasePath(), site),
			Table:          prefix + "snippets",
			IDColumn:       "snippet_id",
			KeyColumn:      "snippet_name",
			ContentsColumn: "snippet_contents",
		},
	}
}

// targetDir joins base and site. An empty base yields an empty dir so the
// verifier can report it as unconfigured instead of resolving it relative
// to the working directory.
func targetDir(base, site string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(base, site)
}
