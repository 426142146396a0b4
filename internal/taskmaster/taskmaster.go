// Package taskmaster tracks per-file import tasks and gates access to
// throttled external resources.
package taskmaster

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Status is the lifecycle state of one import task.
type Status string

const (
	StatusStarting       Status = "starting"
	StatusTitleDetection Status = "title_detection"
	StatusTranscoding    Status = "transcoding"
	StatusFinish         Status = "finish"
	StatusFailed         Status = "failed"
)

// Resource classes gated by the throttle pool.
const (
	ResourceCut       = "ffmpeg"
	ResourceCloud     = "gcloud"
	ResourceTranscode = "handbrake"
)

// DefaultJitter is the default upper bound for the randomized startup
// delay applied before a task registers, spreading out the initial burst
// of external-resource requests when many files start at once.
const DefaultJitter = 30 * time.Second

// Task is a registered import task. Tasks are never removed during a run.
type Task struct {
	ID     int64
	Status Status
}

// throttle is a lazily materialized concurrency limit: the configured
// integer becomes a weighted semaphore on first acquisition, exactly once.
type throttle struct {
	once  sync.Once
	limit int64
	sem   *semaphore.Weighted
}

// Taskmaster assigns task ids, records task status, and owns the
// per-resource throttles. A single mutex guards all task state; updates
// are rare relative to the I/O they bracket.
type Taskmaster struct {
	mu        sync.Mutex
	tasks     map[int64]Status
	nextID    int64
	throttles map[string]*throttle
	maxJitter time.Duration
	log       *slog.Logger
}

// Limits maps resource class names to maximum concurrent holders.
// A class absent from the map is unlimited.
type Limits map[string]int64

// New creates a Taskmaster with the given throttle limits. Classes with a
// limit below one are treated as unlimited.
func New(log *slog.Logger, maxJitter time.Duration, limits Limits) *Taskmaster {
	if log == nil {
		log = slog.Default()
	}
	throttles := make(map[string]*throttle, len(limits))
	for class, limit := range limits {
		if limit >= 1 {
			throttles[class] = &throttle{limit: limit}
		}
	}
	return &Taskmaster{
		tasks:     make(map[int64]Status),
		throttles: throttles,
		maxJitter: maxJitter,
		log:       log,
	}
}

// Register assigns the next task id and records it as starting. When a
// jitter bound is configured, Register first sleeps a random duration up
// to that bound.
func (tm *Taskmaster) Register(ctx context.Context) (int64, error) {
	if tm.maxJitter > 0 {
		delay := rand.N(tm.maxJitter)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	tm.mu.Lock()
	id := tm.nextID
	tm.nextID++
	tm.tasks[id] = StatusStarting
	tm.mu.Unlock()
	return id, nil
}

// SetStatus atomically updates a task's status and logs the transition.
func (tm *Taskmaster) SetStatus(id int64, status Status) {
	tm.mu.Lock()
	tm.tasks[id] = status
	tm.mu.Unlock()
	tm.Log(id, "status update", "status", string(status))
}

// Status returns the task's current status.
func (tm *Taskmaster) Status(id int64) Status {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.tasks[id]
}

// Snapshot returns all tasks ordered by id, for final reporting.
func (tm *Taskmaster) Snapshot() []Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	out := make([]Task, 0, len(tm.tasks))
	for id, status := range tm.tasks {
		out = append(out, Task{ID: id, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Log emits a progress entry tagged with the task id.
func (tm *Taskmaster) Log(id int64, msg string, args ...any) {
	tm.log.Info(msg, append([]any{"task_id", id}, args...)...)
}

// Acquire obtains a permit for the given resource class, blocking until
// one is free or ctx is cancelled. The returned release function must be
// called on every exit path, typically via defer. Unconfigured classes
// are unlimited and acquisition is a no-op.
func (tm *Taskmaster) Acquire(ctx context.Context, class string) (func(), error) {
	t, ok := tm.throttles[class]
	if !ok {
		return func() {}, nil
	}
	t.once.Do(func() {
		t.sem = semaphore.NewWeighted(t.limit)
	})
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { t.sem.Release(1) }, nil
}
