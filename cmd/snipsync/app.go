package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/snipsync/internal/config"
	"github.com/steveyegge/snipsync/internal/logging"
	"github.com/steveyegge/snipsync/internal/settings"
	"github.com/steveyegge/snipsync/internal/store"
	"github.com/steveyegge/snipsync/internal/store/postgres"
	"github.com/steveyegge/snipsync/internal/store/sqlite"
	"github.com/steveyegge/snipsync/internal/sync"
)

// recordStore is what both store backends provide.
type recordStore interface {
	store.Store
	InitSchema(ctx context.Context, tables ...store.TableSpec) error
	CountAll(ctx context.Context, table string) (int, error)
	Close() error
}

// app bundles everything a command needs for one invocation.
type app struct {
	cfg    *config.Config
	logs   *logging.Factory
	store  recordStore
	engine *sync.Engine
}

// loadConfig reads configuration with the command's persistent flags bound.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Load(cfgFile, dir, cmd.Flags())
}

// newApp loads configuration, opens the record store and builds the sync
// engine. With initSchema the record tables are created if missing.
func newApp(cmd *cobra.Command, initSchema bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	mode, err := cfg.DirMode()
	if err != nil {
		return nil, err
	}

	logs := logging.New(cfg.Log)

	st, err := openStore(cfg, logs)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	if initSchema {
		specs := make([]store.TableSpec, 0, 2)
		for _, target := range sync.Targets(cfg) {
			specs = append(specs, target.TableSpec())
		}
		if err := st.InitSchema(cmd.Context(), specs...); err != nil {
			_ = st.Close()
			_ = logs.Close()
			return nil, err
		}
	}

	engine, err := sync.New(&sync.Config{
		Settings: cfg,
		Store:    st,
		Verifier: settings.NewVerifier(cfg, &settings.Options{
			DirMode: mode,
			Logger:  logs.Logger("settings"),
		}),
		Logger: logs.Logger("sync"),
	})
	if err != nil {
		_ = st.Close()
		_ = logs.Close()
		return nil, err
	}

	return &app{cfg: cfg, logs: logs, store: st, engine: engine}, nil
}

func openStore(cfg *config.Config, logs *logging.Factory) (recordStore, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.Database.DSN, logs.Logger("postgres"))
	default:
		return sqlite.Open(cfg.Database.Path)
	}
}

// Close releases the store and the log file.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logs.Logger("snipsync").Printf("Warning: failed to close store: %v", err)
	}
	_ = a.logs.Close()
}

// verificationFailed is the command error for a run that failed settings
// verification.
func verificationFailed(message string) error {
	return &sync.VerificationError{Message: message}
}

// exitCode maps a command error to a process exit code: 2 for a broken
// target directory, 1 for everything else, including failed verification.
func exitCode(err error) int {
	var fatal *sync.FatalError
	if errors.As(err, &fatal) {
		return 2
	}
	return 1
}
