package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/event"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	event.Flush()
	defer event.Flush()

	var got []string
	event.Listen("sale.committed", func(_ context.Context, p interface{}) { got = append(got, "a:"+p.(string)) })
	event.Listen("sale.committed", func(_ context.Context, p interface{}) { got = append(got, "b:"+p.(string)) })

	event.Fire(context.Background(), "sale.committed", "tx1")
	assert.Equal(t, []string{"a:tx1", "b:tx1"}, got)
	assert.Equal(t, 2, event.Count("sale.committed"))
}

func TestFireSurvivesPanickingListener(t *testing.T) {
	event.Flush()
	defer event.Flush()

	called := false
	event.Listen("product.changed", func(context.Context, interface{}) { panic("boom") })
	event.Listen("product.changed", func(context.Context, interface{}) { called = true })

	assert.NotPanics(t, func() { event.Fire(context.Background(), "product.changed", nil) })
	assert.True(t, called)
}

func TestFireAsyncDetachesContext(t *testing.T) {
	event.Flush()
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	event.Listen("sale.committed", func(ctx context.Context, _ interface{}) {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		ctxErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	event.FireAsync(ctx, "sale.committed", nil)
	cancel()
	wg.Wait()

	assert.NoError(t, ctxErr)
}
