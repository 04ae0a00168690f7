// Package watch re-runs a full sync when files in the target directories
// change.
//
// The watcher does not track individual files. Any create, write, remove or
// rename inside a watched directory (re)starts a debounce timer; when it
// fires the run function is called once. Runs happen on the watcher's own
// goroutine, so they never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/steveyegge/snipsync/internal/sync"
)

// RunFunc performs one sync run.
type RunFunc func() error

// Config holds watcher configuration.
type Config struct {
	// Debounce is how long the directories must stay quiet before a run.
	Debounce time.Duration

	// Logger for watcher activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce: 500 * time.Millisecond,
		Logger:   log.New(os.Stderr, "[watch] ", log.LstdFlags),
	}
}

// Watcher triggers runs on directory changes.
type Watcher struct {
	dirs   []string
	run    RunFunc
	config *Config

	watcher *fsnotify.Watcher
	runs    int
}

// New creates a Watcher over dirs. Nothing is watched until Start.
func New(dirs []string, run RunFunc, config *Config) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if run == nil {
		return nil, fmt.Errorf("run cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dirs:    dirs,
		run:     run,
		config:  config,
		watcher: watcher,
	}, nil
}

// Start performs an initial run, then watches the directories until ctx is
// cancelled. It blocks.
//
// A *sync.FatalError from a run stops the watcher and is returned. Other run
// errors are logged and the watcher keeps going.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.runOnce(); err != nil {
		return err
	}

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.config.Logger.Printf("Watching: %v", w.dirs)

	// Reset without draining relies on Go 1.23 timer semantics.
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.config.Logger.Println("Shutdown signal received")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			timer.Reset(w.config.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Printf("Watcher error: %v", err)

		case <-timer.C:
			if err := w.runOnce(); err != nil {
				return err
			}
		}
	}
}

// Runs returns how many runs have been attempted. Only meaningful after
// Start returns.
func (w *Watcher) Runs() int {
	return w.runs
}

func (w *Watcher) runOnce() error {
	w.runs++
	err := w.run()
	if err == nil {
		return nil
	}

	var fatal *sync.FatalError
	if errors.As(err, &fatal) {
		return err
	}
	w.config.Logger.Printf("Sync run failed: %v", err)
	return nil
}

// relevant filters out chmod-only events, which the settings verifier itself
// produces when it repairs directory permissions.
func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}
