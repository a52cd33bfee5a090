// Package tasks tracks asynchronous orchestration runs for polling
// clients. Each TaskRecord is written only by its own background
// goroutine; the registry mutex exists to keep the map and reader
// snapshots race-free, and a janitor evicts terminal records so the
// registry cannot grow without bound.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formrunner/internal/automation/orchestrator"
	"formrunner/internal/domain/entity"
)

// Engine runs one orchestration to completion. Satisfied by
// *orchestrator.Orchestrator; faked in tests.
type Engine interface {
	Run(ctx context.Context, req orchestrator.Request) entity.AutomationResult
}

const defaultRetention = 30 * time.Minute

type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*entity.TaskRecord
	engine Engine
	log    *zap.Logger

	retention time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewRegistry(engine Engine, retention time.Duration, log *zap.Logger) *Registry {
	if retention <= 0 {
		retention = defaultRetention
	}
	r := &Registry{
		tasks:     make(map[string]*entity.TaskRecord),
		engine:    engine,
		log:       log,
		retention: retention,
		stop:      make(chan struct{}),
	}
	r.wg.Add(1)
	go r.janitor()
	return r
}

// Submit registers a new task and starts the run in the background.
// Returns immediately with the task id; it never blocks on the browser.
func (r *Registry) Submit(req orchestrator.Request) string {
	id := uuid.NewString()[:8]
	total := len(req.Provider.Fields)

	rec := &entity.TaskRecord{
		TaskID:      id,
		Status:      entity.TaskStatusStarting,
		TotalFields: total,
		Message:     "Initializing automation, browser opening...",
		CreatedAt:   time.Now(),
	}

	r.mu.Lock()
	r.tasks[id] = rec
	r.mu.Unlock()

	req.OnProgress = func(field string, filled, total int) {
		r.update(id, func(t *entity.TaskRecord) {
			t.Status = entity.TaskStatusProgress
			t.CurrentField = field
			t.FieldsFilled = filled
			if total > 0 {
				t.ProgressPercentage = filled * 100 / total
			}
			t.Message = fmt.Sprintf("Filling %s (%d/%d done)", field, filled, total)
		})
	}

	r.wg.Add(1)
	go r.run(id, req)

	r.log.Info("task submitted", zap.String("task_id", id), zap.String("provider", req.Provider.Key))
	return id
}

// run executes the orchestration and writes the terminal state. The
// background run is deliberately detached from the HTTP request context:
// a client that stops polling does not cancel the browser.
func (r *Registry) run(id string, req orchestrator.Request) {
	defer r.wg.Done()

	result := r.engine.Run(context.Background(), req)

	r.update(id, func(t *entity.TaskRecord) {
		t.Result = &result
		t.FieldsFilled = result.FieldsFilled
		t.CurrentField = ""
		if result.TotalFields > 0 {
			t.ProgressPercentage = result.FieldsFilled * 100 / result.TotalFields
		} else {
			t.ProgressPercentage = 100
		}
		if !result.Success && result.Error != "" && result.TotalFields == 0 {
			t.Status = entity.TaskStatusFailed
			t.Error = result.Error
			t.Message = result.Message
		} else {
			t.Status = entity.TaskStatusCompleted
			t.Message = result.Message
		}
		t.FinishedAt = time.Now()
	})

	r.log.Info("task finished", zap.String("task_id", id), zap.Bool("success", result.Success))
}

// Status returns a snapshot of the task. Unknown ids yield a not_found
// record rather than an error.
func (r *Registry) Status(id string) entity.TaskRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tasks[id]
	if !ok {
		return entity.TaskRecord{
			TaskID:  id,
			Status:  entity.TaskStatusNotFound,
			Message: "Task not found",
		}
	}
	// Result is immutable once set, sharing the pointer is fine.
	return *rec
}

func (r *Registry) update(id string, fn func(*entity.TaskRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.tasks[id]; ok {
		fn(rec)
	}
}

// janitor evicts terminal tasks older than the retention window.
func (r *Registry) janitor() {
	defer r.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictExpired(time.Now())
		}
	}
}

func (r *Registry) evictExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range r.tasks {
		if rec.Status.Terminal() && !rec.FinishedAt.IsZero() && now.Sub(rec.FinishedAt) > r.retention {
			delete(r.tasks, id)
			r.log.Debug("task evicted", zap.String("task_id", id))
		}
	}
}

// Close stops the janitor and waits for in-flight runs to finish.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()
}
