package schedule_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/schedule"
)

func TestRunNow(t *testing.T) {
	runs := 0
	schedule.Hourly().Name("test-sweep").WithoutOverlapping().Run(func(context.Context) error {
		runs++
		return nil
	})
	schedule.Daily().Name("test-broken").Run(func(context.Context) error { panic("boom") })

	require.NoError(t, schedule.RunNow(context.Background(), "test-sweep"))
	assert.Equal(t, 1, runs)

	assert.Error(t, schedule.RunNow(context.Background(), "test-broken"))
	assert.Error(t, schedule.RunNow(context.Background(), "nope"))

	assert.Contains(t, schedule.List(), "test-sweep  [every 1h0m0s]")
}

func TestRunNowReturnsTaskError(t *testing.T) {
	want := errors.New("store down")
	schedule.Every(5).Minutes().Name("test-failing").Run(func(context.Context) error { return want })
	assert.ErrorIs(t, schedule.RunNow(context.Background(), "test-failing"), want)
}
