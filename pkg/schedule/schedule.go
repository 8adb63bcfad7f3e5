// Package schedule runs periodic tasks.
//
//	schedule.Hourly().Name("low-stock-sweep").WithoutOverlapping().Run(sweep)
//	schedule.Cron("0 8 * * 1-6").Name("morning-report").Run(report)
//
//	// Start the loop in the background (call once at boot):
//	schedule.Start(ctx)
//
//	// Or run one task by name, e.g. from the CLI:
//	_ = schedule.RunNow(ctx, "low-stock-sweep")
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string // "" unless using Cron()
	task      Task
	lastRun   time.Time
	running   bool
	noOverlap bool
	mu        sync.Mutex
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	e *entry
}

// ------------------- Registry -------------------

var (
	regMu   sync.Mutex
	entries []*entry
)

// Every starts a fluent builder with n units.
func Every(n int) *freqBuilder { return &freqBuilder{n: n} }

// Hourly schedules the task to run every hour.
func Hourly() *Schedule { return Every(1).Hours() }

// Daily schedules the task to run every 24 hours.
func Daily() *Schedule { return Every(24).Hours() }

// Cron schedules using a 5-field cron expression (min hour dom mon dow).
// Each field is *, a number, */step, a range a-b, or a comma list of those.
func Cron(expr string) *Schedule {
	return &Schedule{e: &entry{cronExpr: expr}}
}

// ------------------- Fluent frequency builder -------------------

type freqBuilder struct{ n int }

func (f *freqBuilder) Seconds() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Second}}
}
func (f *freqBuilder) Minutes() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Minute}}
}
func (f *freqBuilder) Hours() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Hour}}
}

// ------------------- Schedule chainable options -------------------

// WithoutOverlapping prevents a new run if the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Name gives the entry an identifier for logging and RunNow.
func (s *Schedule) Name(id string) *Schedule {
	s.e.id = id
	return s
}

// Run registers the task. Registering a name twice replaces the first
// entry.
func (s *Schedule) Run(fn Task) {
	s.e.task = fn
	regMu.Lock()
	defer regMu.Unlock()
	if s.e.id == "" {
		s.e.id = fmt.Sprintf("task-%d", len(entries)+1)
	}
	for i, e := range entries {
		if e.id == s.e.id {
			entries[i] = s.e
			return
		}
	}
	entries = append(entries, s.e)
}

// ------------------- Scheduler loop -------------------

// Start begins the scheduler loop in the background. It ticks every
// second and dispatches due tasks until ctx is cancelled.
func Start(ctx context.Context) {
	go run(ctx)
	logger.Info("schedule: scheduler started", "tasks", len(List()))
}

func run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			for _, e := range snapshot() {
				if e.due(now) {
					dispatch(ctx, e, now)
				}
			}
		}
	}
}

func snapshot() []*entry {
	regMu.Lock()
	defer regMu.Unlock()
	return append([]*entry(nil), entries...)
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	last := e.lastRun
	e.mu.Unlock()

	if e.cronExpr != "" {
		// Once per matching minute.
		return matchCron(e.cronExpr, now) && !sameMinute(last, now)
	}
	if last.IsZero() {
		return true // first run
	}
	return now.Sub(last) >= e.interval
}

func sameMinute(a, b time.Time) bool {
	return !a.IsZero() && a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

func dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
		_ = execute(ctx, e)
	}()
}

func execute(ctx context.Context, e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: task panicked", "id", e.id, "panic", fmt.Sprint(r))
			err = fmt.Errorf("schedule: task %s panicked: %v", e.id, r)
		}
	}()

	start := time.Now()
	if err = e.task(ctx); err != nil {
		logger.Error("schedule: task failed", "id", e.id, "error", err)
		return err
	}
	logger.Info("schedule: task done", "id", e.id, "duration", time.Since(start).String())
	return nil
}

// RunNow runs the named task synchronously.
func RunNow(ctx context.Context, name string) error {
	for _, e := range snapshot() {
		if e.id == name {
			return execute(ctx, e)
		}
	}
	return fmt.Errorf("schedule: no task named %q", name)
}

// ------------------- Minimal cron parser -------------------

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	vals := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, vals[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		if matchPart(part, val) {
			return true
		}
	}
	return false
}

func matchPart(part string, val int) bool {
	switch {
	case part == "*":
		return true
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(part, "-"):
		lo, hi, _ := strings.Cut(part, "-")
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= a && val <= b
	default:
		n, err := strconv.Atoi(part)
		return err == nil && n == val
	}
}

// List returns all registered entries (for CLI display).
func List() []string {
	out := []string{}
	for _, e := range snapshot() {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}
