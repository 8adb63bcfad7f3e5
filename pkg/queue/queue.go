// Package queue runs background jobs with retries.
//
// Jobs are serialised to JSON, pushed onto a Driver (memory or Redis) and
// rebuilt on the worker side from a factory registered under the job's
// name. Factories are where a job gets its dependencies:
//
//	queue.Register(jobs.ReconcileSaleJob, func() queue.Job {
//	    return &jobs.ReconcileSale{Store: st}
//	})
//
//	_ = queue.Dispatch(ctx, &jobs.ReconcileSale{Reconciliation: r})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Name is the registry key used to rebuild the job on a worker.
	Name() string
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Name     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver can hold a payload until its delay has passed.
type DelayedDriver interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

// ------------------- Manager -------------------

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  func(attempt int) time.Duration
}

func linearBackoff(attempt int) time.Duration { return time.Duration(attempt) * time.Second }

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	driver:   NewMemoryDriver(),
	backoff:  linearBackoff,
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many times a failing job is attempted.
func SetMaxRetry(n int) {
	defaultManager.mu.Lock()
	defaultManager.maxRetry = n
	defaultManager.mu.Unlock()
}

// SetBackoff replaces the wait between attempts; nil restores the default
// of attempt × 1s.
func SetBackoff(fn func(attempt int) time.Duration) {
	if fn == nil {
		fn = linearBackoff
	}
	defaultManager.mu.Lock()
	defaultManager.backoff = fn
	defaultManager.mu.Unlock()
}

// Register makes a job type available for deserialization by name.
// Call this once at boot for every job type.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

// ------------------- Dispatch -------------------

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue immediately.
func Dispatch(ctx context.Context, job Job) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	return defaultManager.currentDriver().Push(ctx, env)
}

// DispatchAfter pushes job after delay. Drivers that implement
// DelayedDriver hold the job themselves; otherwise a timer goroutine
// dispatches it.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	d := defaultManager.currentDriver()
	if dd, ok := d.(DelayedDriver); ok {
		return dd.PushDelayed(ctx, env, delay)
	}

	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		if err := d.Push(ctx, env); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", job.Name(), "error", err)
		}
	})
	return nil
}

func encode(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}
	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// ------------------- Worker -------------------

// StartWorkers launches n concurrent workers that process jobs from the queue.
// The workers run until ctx is cancelled; the returned WaitGroup is done
// once all of them have returned.
func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defaultManager.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := m.currentDriver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			if !sleep(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}

		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env.Type)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, typeName string) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()
	if maxRetry < 1 {
		maxRetry = 1
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		err := job.Handle(ctx)
		if err == nil {
			metrics.RecordQueueJob(typeName, "success", start)
			logger.Info("queue: job processed", "type", typeName, "attempt", attempt)
			return
		}
		lastErr = err
		logger.Warn("queue: job failed, retrying",
			"type", typeName, "attempt", attempt, "error", err)
		if attempt < maxRetry && !sleep(ctx, backoff(attempt)) {
			break
		}
	}

	metrics.RecordQueueJob(typeName, "failed", start)
	m.persistFailed(ctx, job, typeName, lastErr, maxRetry)
	logger.Error("queue: job exhausted retries", "type", typeName, "error", lastErr)
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FailedJobs returns a snapshot of all failed jobs.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
