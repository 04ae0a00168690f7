package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/steveyegge/snipsync/internal/store"
)

// Verifier checks the environment before a run.
//
// VerifySettings returns nil when the run may proceed, a *VerificationError
// for a recoverable problem, or a *FatalError for a broken deployment.
type Verifier interface {
	VerifySettings() error
}

// SyncLog lists the identifiers processed by the most recent run, per
// category, in processing order.
type SyncLog struct {
	Globals  []string `json:"globals"`
	Snippets []string `json:"snippets"`
}

// Stats counts the store writes of the most recent run.
type Stats struct {
	GlobalsInserted  int `json:"globals_inserted"`
	GlobalsUpdated   int `json:"globals_updated"`
	SnippetsInserted int `json:"snippets_inserted"`
	SnippetsUpdated  int `json:"snippets_updated"`
}

// Config holds the engine's collaborators.
type Config struct {
	// Settings supplies directory paths, site name, flag and table prefix.
	Settings ConfigProvider

	// Store receives the inserts and updates.
	Store store.Store

	// Verifier runs before every sync.
	Verifier Verifier

	// Fs is where target directories are read from (default: OS filesystem).
	Fs afero.Fs

	// Logger for sync activity (default: stderr logger).
	Logger *log.Logger
}

// Engine reconciles the files of both target directories against the store.
//
// An Engine is not safe for concurrent use; callers serialize SyncAll.
type Engine struct {
	store    store.Store
	verifier Verifier
	fs       afero.Fs
	logger   *log.Logger
	targets  []Target

	log          SyncLog
	stats        Stats
	errorMessage string
}

// New creates an Engine. Targets are resolved from config.Settings once.
//
// Example:
//
//	engine, err := sync.New(&sync.Config{
//	    Settings: cfg,
//	    Store:    database,
//	    Verifier: settings.NewVerifier(cfg, nil),
//	})
//	if err != nil {
//	    return err
//	}
//	ok, err := engine.SyncAll()
func New(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config.Verifier == nil {
		return nil, fmt.Errorf("verifier cannot be nil")
	}

	fs := config.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}

	return &Engine{
		store:    config.Store,
		verifier: config.Verifier,
		fs:       fs,
		logger:   logger,
		targets:  Targets(config.Settings),
	}, nil
}

// Targets returns the targets in processing order.
func (e *Engine) Targets() []Target {
	out := make([]Target, len(e.targets))
	copy(out, e.targets)
	return out
}

// SyncAll runs one sync pass over both targets.
//
// It returns (false, nil) when verification fails; ErrorMessage then holds
// the reason and nothing was written. A *FatalError from verification or
// listing is returned as the error. A store error aborts the run and is
// returned unwrapped; files processed before it stay committed.
func (e *Engine) SyncAll() (bool, error) {
	e.log = SyncLog{Globals: []string{}, Snippets: []string{}}
	e.stats = Stats{}
	e.errorMessage = ""

	if err := e.verifier.VerifySettings(); err != nil {
		var verr *VerificationError
		if errors.As(err, &verr) {
			e.errorMessage = verr.Message
			e.logger.Printf("Settings verification failed: %s", verr.Message)
			return false, nil
		}
		return false, err
	}

	ctx := context.Background()
	for _, target := range e.targets {
		if err := e.syncTarget(ctx, target); err != nil {
			return false, err
		}
	}

	e.logger.Printf("Sync complete: globals=%d (inserted=%d, updated=%d), snippets=%d (inserted=%d, updated=%d)",
		len(e.log.Globals), e.stats.GlobalsInserted, e.stats.GlobalsUpdated,
		len(e.log.Snippets), e.stats.SnippetsInserted, e.stats.SnippetsUpdated)
	return true, nil
}

// syncTarget reconciles every file of one target directory.
func (e *Engine) syncTarget(ctx context.Context, target Target) error {
	files, err := ListFiles(e.fs, target.Dir)
	if err != nil {
		return err
	}

	e.logger.Printf("Syncing %d %s from %s", len(files), target.Kind, target.Dir)

	for _, filename := range files {
		name := Normalize(filename)

		path := filepath.Join(target.Dir, filename)
		data, err := afero.ReadFile(e.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		inserted, err := e.reconcile(ctx, target, name, string(data))
		if err != nil {
			e.logger.Printf("ERROR: failed to sync %s %q from %s: %v", target.Kind, name, filename, err)
			return err
		}

		e.record(target.Kind, name, inserted)
	}
	return nil
}

// reconcile inserts the record when its key is absent and updates its
// contents otherwise. It reports whether an insert happened.
func (e *Engine) reconcile(ctx context.Context, target Target, name, contents string) (bool, error) {
	count, err := e.store.CountByKey(ctx, target.Table, target.KeyColumn, name)
	if err != nil {
		return false, err
	}

	if count == 0 {
		row := store.Row{
			target.KeyColumn:      name,
			target.ContentsColumn: contents,
		}
		return true, e.store.Insert(ctx, target.Table, row)
	}

	row := store.Row{target.ContentsColumn: contents}
	return false, e.store.UpdateByKey(ctx, target.Table, target.KeyColumn, name, row)
}

func (e *Engine) record(kind Kind, name string, inserted bool) {
	switch kind {
	case GlobalVariable:
		e.log.Globals = append(e.log.Globals, name)
		if inserted {
			e.stats.GlobalsInserted++
		} else {
			e.stats.GlobalsUpdated++
		}
	case Snippet:
		e.log.Snippets = append(e.log.Snippets, name)
		if inserted {
			e.stats.SnippetsInserted++
		} else {
			e.stats.SnippetsUpdated++
		}
	}
}

// LastSyncLog returns a copy of the log of the most recent run.
func (e *Engine) LastSyncLog() SyncLog {
	return SyncLog{
		Globals:  append([]string{}, e.log.Globals...),
		Snippets: append([]string{}, e.log.Snippets...),
	}
}

// LastStats returns the write counts of the most recent run.
func (e *Engine) LastStats() Stats {
	return e.stats
}

// ErrorMessage returns the verification failure of the most recent run, or
// "" if verification passed.
func (e *Engine) ErrorMessage() string {
	return e.errorMessage
}
