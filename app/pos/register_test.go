package pos_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/store"
)

func TestRegisterKeyRotatesOnClear(t *testing.T) {
	r := pos.NewRegister()
	first := r.View().IdempotencyKey
	require.NotEmpty(t, first)

	require.NoError(t, r.Clear())
	assert.Equal(t, first, r.View().IdempotencyKey, "clearing an empty cart keeps the key")

	require.NoError(t, r.AddItem(product("A", "Latex", 100, 4)))
	assert.Equal(t, first, r.View().IdempotencyKey, "mutations keep the key")

	require.NoError(t, r.Clear())
	assert.NotEqual(t, first, r.View().IdempotencyKey)
}

func TestRegisterView(t *testing.T) {
	r := pos.NewRegister()
	require.NoError(t, r.SetCustomerName("Jane"))
	require.NoError(t, r.AddItem(product("A", "Latex", 100, 4)))
	qty, err := r.SetQuantity("A", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	v := r.View()
	assert.Equal(t, "Jane", v.CustomerName)
	assert.Equal(t, "200", v.Total.String())
	assert.False(t, v.Committing)
	require.Len(t, v.Items, 1)

	require.NoError(t, r.RemoveItem("A"))
	assert.Empty(t, r.View().Items)
}

func TestRegistersPerSession(t *testing.T) {
	rs := pos.NewRegisters()
	a := rs.Get("session-a")
	assert.Same(t, a, rs.Get("session-a"))
	assert.NotSame(t, a, rs.Get("session-b"))
	assert.Equal(t, 2, rs.Len())

	rs.Drop("session-a")
	assert.Equal(t, 1, rs.Len())
	assert.NotSame(t, a, rs.Get("session-a"), "dropped register is gone")
}

func TestRegistersSweepDropsIdle(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	rs := pos.NewRegisters()
	rs.SetClock(func() time.Time { return now })

	stale := rs.Get("expired-session")
	require.NoError(t, stale.AddItem(product("A", "Latex", 100, 4)))

	now = now.Add(11 * time.Hour)
	fresh := rs.Get("live-session")

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, rs.Sweep(12*time.Hour))
	assert.Equal(t, 1, rs.Len())
	assert.Same(t, fresh, rs.Get("live-session"))
	assert.NotSame(t, stale, rs.Get("expired-session"))
}

func TestRegistersSweepKeepsCommitInFlight(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	rs := pos.NewRegisters()
	rs.SetClock(func() time.Time { return now })

	s := &blockingStore{Memory: store.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	p := seed(t, s.Memory, product("", "Latex", 20, 5))
	reg := rs.Get("session-a")
	require.NoError(t, reg.AddItem(p))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = pos.NewCommitter(s).Commit(context.Background(), reg, pos.CommitOptions{CustomerName: "Jane"})
	}()
	<-s.entered

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, rs.Sweep(time.Hour))
	assert.Equal(t, 1, rs.Len())

	close(s.release)
	wg.Wait()
}
