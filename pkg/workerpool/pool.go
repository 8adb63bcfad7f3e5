// Package workerpool is a bounded goroutine pool with backpressure.
//
// When every worker is busy and the buffer is full, Submit returns
// ErrPoolFull at once so the caller can run the task inline or drop it.
// The sale listeners archive receipts through one:
//
//	pool := workerpool.New("receipts", 4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(func() { archive(tx) }); errors.Is(err, workerpool.ErrPoolFull) {
//	    archive(tx)
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

var (
	busyGauge = metrics.NewGauge(metrics.Namespace, "workerpool_busy",
		"Tasks currently running in a worker pool.", []string{"pool"})
	rejected = metrics.NewCounter(metrics.Namespace, "workerpool_rejected_total",
		"Tasks a worker pool refused.", []string{"pool", "reason"})
)

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	name    string
	workers int

	mu     sync.RWMutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
	busy   atomic.Int64
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Workers int
	Busy    int
	Queued  int
}

// New starts size workers with a buffer of twice that many tasks. The name
// labels the pool's metrics and log lines.
func New(name string, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{name: name, workers: size, tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		rejected.WithLabelValues(p.name, "closed").Inc()
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		rejected.WithLabelValues(p.name, "full").Inc()
		return ErrPoolFull
	}
}

// SubmitWait blocks until task is queued or ctx is done.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) Stats() Stats {
	return Stats{Workers: p.workers, Busy: int(p.busy.Load()), Queued: len(p.tasks)}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. Later
// calls return immediately.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run keeps a panicking task from killing its worker.
func (p *Pool) run(task func()) {
	p.busy.Add(1)
	busyGauge.WithLabelValues(p.name).Inc()
	defer func() {
		p.busy.Add(-1)
		busyGauge.WithLabelValues(p.name).Dec()
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	task()
}
