package dashboard

import (
	"encoding/json"
	"errors"
	"log"
	gosync "sync"
	"time"

	"github.com/steveyegge/snipsync/internal/sync"
)

// SyncCompleteData is the payload of a sync_complete message.
type SyncCompleteData struct {
	Log        sync.SyncLog `json:"log"`
	Stats      sync.Stats   `json:"stats"`
	DurationMS int64        `json:"duration_ms"`
	Run        int          `json:"run"`
}

// SyncFailedData is the payload of a sync_failed message.
type SyncFailedData struct {
	// Message is the verification message, empty for aborted runs.
	Message string `json:"message,omitempty"`

	// Error is the run error, empty for verification failures.
	Error string `json:"error,omitempty"`

	// Fatal reports whether the error stops the watcher.
	Fatal bool `json:"fatal"`

	Run int `json:"run"`
}

// Handler turns sync run outcomes into dashboard messages.
type Handler struct {
	server *Server
	logger *log.Logger

	mu   gosync.Mutex
	runs int
}

// NewHandler creates a new handler connected to a dashboard server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// Wrap returns a run function that executes engine.SyncAll and broadcasts
// the outcome. The returned error is what the watcher sees.
func (h *Handler) Wrap(engine *sync.Engine) func() error {
	return func() error {
		start := time.Now()
		ok, err := engine.SyncAll()
		switch {
		case err != nil:
			h.OnSyncFailed("", err)
		case !ok:
			h.OnSyncFailed(engine.ErrorMessage(), nil)
		default:
			h.OnSyncComplete(engine.LastSyncLog(), engine.LastStats(), time.Since(start))
		}
		return err
	}
}

// OnSyncComplete broadcasts a successful run.
func (h *Handler) OnSyncComplete(l sync.SyncLog, stats sync.Stats, elapsed time.Duration) {
	run := h.nextRun()
	h.logger.Printf("Run %d complete: %d globals, %d snippets in %s",
		run, len(l.Globals), len(l.Snippets), elapsed.Round(time.Millisecond))

	h.broadcast(MessageTypeSyncComplete, SyncCompleteData{
		Log:        l,
		Stats:      stats,
		DurationMS: elapsed.Milliseconds(),
		Run:        run,
	})
}

// OnSyncFailed broadcasts a failed run. Pass message for verification
// failures and err for aborted runs.
func (h *Handler) OnSyncFailed(message string, err error) {
	run := h.nextRun()
	data := SyncFailedData{Message: message, Run: run}
	if err != nil {
		data.Error = err.Error()
		var fatal *sync.FatalError
		data.Fatal = errors.As(err, &fatal)
		h.logger.Printf("Run %d failed: %v", run, err)
	} else {
		h.logger.Printf("Run %d failed verification: %s", run, message)
	}

	h.broadcast(MessageTypeSyncFailed, data)
}

// Runs returns how many outcomes have been broadcast.
func (h *Handler) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}

func (h *Handler) nextRun() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
	return h.runs
}

func (h *Handler) broadcast(t MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", t, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	})
}
