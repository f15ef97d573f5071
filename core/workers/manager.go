// ABOUTME: Task manager runs named background tasks as independently cancellable goroutines
// ABOUTME: A task name can only run once at a time; StopAll cancels everything and waits

package workers

import (
	"context"
	"sort"
	"sync"
	"time"

	"aiml-digests/core/interfaces"
)

// TaskFunc is the body of a background task; it must return when ctx is cancelled
type TaskFunc func(ctx context.Context) error

// TaskStatus describes a running task
type TaskStatus struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

// TaskResult describes the last completed run of a task
type TaskResult struct {
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

type handle struct {
	cancel  context.CancelFunc
	started time.Time
}

// Manager tracks background tasks by name
type Manager struct {
	deps interfaces.Dependencies
	now  func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	tasks   map[string]*handle
	results map[string]TaskResult
	stopped bool
	wg      sync.WaitGroup
}

// NewManager creates a manager whose tasks derive from ctx
func NewManager(ctx context.Context, deps interfaces.Dependencies) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		deps:    deps.WithDefaults(),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		tasks:   make(map[string]*handle),
		results: make(map[string]TaskResult),
	}
}

// Start launches fn under name and returns immediately
func (m *Manager) Start(name string, fn TaskFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}
	if _, ok := m.tasks[name]; ok {
		return ErrTaskRunning
	}

	ctx, cancel := context.WithCancel(m.ctx)
	h := &handle{cancel: cancel, started: m.now()}
	m.tasks[name] = h

	m.wg.Add(1)
	go m.run(ctx, name, h, fn)

	m.deps.Logger.Info("Background task started", map[string]interface{}{"task": name})
	return nil
}

func (m *Manager) run(ctx context.Context, name string, h *handle, fn TaskFunc) {
	defer m.wg.Done()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &WorkerError{Message: "task panicked", Task: name, Cause: r}
			}
		}()
		err = fn(ctx)
	}()
	h.cancel()

	result := TaskResult{Name: name, StartedAt: h.started, FinishedAt: m.now()}
	fields := map[string]interface{}{"task": name}
	if err != nil && ctx.Err() == nil {
		result.Error = err.Error()
		fields["error"] = err.Error()
		m.deps.Logger.Error("Background task failed", fields)
	} else {
		m.deps.Logger.Info("Background task finished", fields)
	}

	m.mu.Lock()
	if m.tasks[name] == h {
		delete(m.tasks, name)
	}
	m.results[name] = result
	m.mu.Unlock()
}

// Cancel stops the named task and reports whether it was running
func (m *Manager) Cancel(name string) bool {
	m.mu.Lock()
	h, ok := m.tasks[name]
	m.mu.Unlock()
	if ok {
		h.cancel()
	}
	return ok
}

// IsRunning reports whether the named task is live
func (m *Manager) IsRunning(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tasks[name]
	return ok
}

// Running lists live tasks ordered by name
func (m *Manager) Running() []TaskStatus {
	m.mu.Lock()
	out := make([]TaskStatus, 0, len(m.tasks))
	for name, h := range m.tasks {
		out = append(out, TaskStatus{Name: name, StartedAt: h.started})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Results lists the last completed run of every task ordered by name
func (m *Manager) Results() []TaskResult {
	m.mu.Lock()
	out := make([]TaskResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StopAll cancels every task and waits for them to return. Later calls are no-ops
// and later Starts are rejected.
func (m *Manager) StopAll() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	m.deps.Logger.Info("All background tasks stopped", nil)
}
