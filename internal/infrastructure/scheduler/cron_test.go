package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCronRunner_AddTask(t *testing.T) {
	r := NewCronRunner("UTC", time.Second, zap.NewNop())

	assert.NoError(t, r.AddTask("cleanup", "@daily", func(ctx context.Context) error { return nil }))
	assert.NoError(t, r.AddTask("alerts", "@every 1h", func(ctx context.Context) error { return nil }))
	assert.NoError(t, r.AddTask("seconds", "*/5 * * * * *", func(ctx context.Context) error { return nil }))

	err := r.AddTask("broken", "not a spec", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestCronRunner_RunsTasks(t *testing.T) {
	r := NewCronRunner("UTC", time.Second, zap.NewNop())
	ran := make(chan struct{}, 4)

	require.NoError(t, r.AddTask("tick", "@every 1s", func(ctx context.Context) error {
		ran <- struct{}{}
		return errors.New("logged, not fatal")
	}))
	require.NoError(t, r.AddTask("panics", "@every 1s", func(ctx context.Context) error {
		panic("boom")
	}))

	r.Start()
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("cron task did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}

func TestNewCronRunner_UnknownLocation(t *testing.T) {
	r := NewCronRunner("Mars/Olympus", 0, zap.NewNop())
	assert.Equal(t, time.UTC, r.cron.Location())
	assert.Equal(t, time.Minute, r.timeout)
}
