package pipeline

import (
	"sync"
	"time"

	"rfpdesk/internal/utils"
)

type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// runRetention is how long a finished run stays pollable. The processing
// page needs a window to observe the terminal state; after that the entry
// is garbage.
const runRetention = 10 * time.Minute

// Run is the in-memory state of one upload interaction. Runs are never
// persisted; they exist so the UI can poll while the pipeline works.
type Run struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Progress   int       `json:"progress"`
	Status     RunStatus `json:"status"`
	DocumentID string    `json:"documentId,omitempty"`
	Error      string    `json:"error,omitempty"`

	doneAt time.Time
}

// Registry tracks active runs behind a mutex. Progress updates are clamped
// to be monotonically non-decreasing within a run. Terminal runs are swept
// out after runRetention so the map does not grow for the server's lifetime.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Run

	retention time.Duration
	now       func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		runs:      make(map[string]*Run),
		retention: runRetention,
		now:       time.Now,
	}
}

func (r *Registry) Begin(userID string) *Run {
	run := &Run{
		ID:     utils.NanoIDSize(16),
		UserID: userID,
		Status: RunStatusRunning,
	}

	r.mu.Lock()
	r.sweep()
	r.runs[run.ID] = run
	r.mu.Unlock()

	return run
}

func (r *Registry) Update(id string, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return
	}
	if progress > run.Progress {
		run.Progress = progress
	}
}

func (r *Registry) Complete(id, documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return
	}
	run.Status = RunStatusComplete
	run.Progress = 100
	run.DocumentID = documentID
	run.doneAt = r.now()
}

func (r *Registry) Fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return
	}
	run.Status = RunStatusFailed
	run.Error = message
	run.doneAt = r.now()
}

// Get returns a copy so callers never race with pipeline updates.
func (r *Registry) Get(id string) (Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// sweep drops terminal runs past retention. Caller holds the write lock.
func (r *Registry) sweep() {
	cutoff := r.now().Add(-r.retention)
	for id, run := range r.runs {
		if run.Status == RunStatusRunning {
			continue
		}
		if run.doneAt.Before(cutoff) {
			delete(r.runs, id)
		}
	}
}
