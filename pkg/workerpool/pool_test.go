package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/workerpool"
)

var bg = context.Background()

func TestSubmitWaitRunsEveryTask(t *testing.T) {
	pool := workerpool.New("test", 4)
	defer pool.Shutdown()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, pool.SubmitWait(bg, func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 100, count.Load())
}

// block occupies the single worker of pool until the returned func is called.
func block(t *testing.T, pool *workerpool.Pool) func() {
	t.Helper()
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.SubmitWait(bg, func() {
		close(started)
		<-release
	}))
	<-started
	return func() { close(release) }
}

func TestSubmitReportsBackpressure(t *testing.T) {
	pool := workerpool.New("test", 1)
	defer pool.Shutdown()
	release := block(t, pool)
	defer release()

	// Buffer is twice the worker count.
	assert.NoError(t, pool.Submit(func() {}))
	assert.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	assert.Equal(t, workerpool.Stats{Workers: 1, Busy: 1, Queued: 2}, pool.Stats())
}

func TestSubmitWaitHonoursContext(t *testing.T) {
	pool := workerpool.New("test", 1)
	defer pool.Shutdown()
	release := block(t, pool)
	defer release()

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.SubmitWait(ctx, func() {}), context.DeadlineExceeded)
}

func TestClosedPoolRejects(t *testing.T) {
	pool := workerpool.New("test", 2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(bg, func() {}), workerpool.ErrPoolClosed)
}

func TestPanickingTaskKeepsWorkerAlive(t *testing.T) {
	pool := workerpool.New("test", 1)
	defer pool.Shutdown()

	require.NoError(t, pool.SubmitWait(bg, func() { panic("receipt render failed") }))

	done := make(chan struct{})
	require.NoError(t, pool.SubmitWait(bg, func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
	assert.Eventually(t, func() bool { return pool.Stats().Busy == 0 }, time.Second, 5*time.Millisecond)
}

func TestShutdownWaitsForQueuedTasks(t *testing.T) {
	pool := workerpool.New("test", 3)

	var finished atomic.Int32
	for i := 0; i < 6; i++ {
		require.NoError(t, pool.SubmitWait(bg, func() {
			time.Sleep(5 * time.Millisecond)
			finished.Add(1)
		}))
	}
	pool.Shutdown()
	assert.EqualValues(t, 6, finished.Load())
}
