package connect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// flakyPinger fails the first failures calls, then succeeds.
type flakyPinger struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyPinger) Ping(ctx context.Context) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func fastOptions() Options {
	return Options{
		ConnectTimeout: 2 * time.Second,
		RetryInterval:  time.Millisecond,
		MaxWait:        5 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWaitReady_ImmediateSuccess(t *testing.T) {
	p := &flakyPinger{}

	err := WaitReady(context.Background(), "test", "mem", p, fastOptions(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestWaitReady_SucceedsAfterRetries(t *testing.T) {
	p := &flakyPinger{failures: 3}

	err := WaitReady(context.Background(), "test", "mem", p, fastOptions(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int32(4), p.calls.Load())
}

func TestWaitReady_TimesOut(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	opts := fastOptions()
	opts.ConnectTimeout = 30 * time.Millisecond

	err := WaitReady(context.Background(), "test", "mem", p, opts, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test unavailable at mem")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "connect timeout", mutate: func(o *Options) { o.ConnectTimeout = 0 }},
		{name: "retry interval", mutate: func(o *Options) { o.RetryInterval = 0 }},
		{name: "max wait", mutate: func(o *Options) { o.MaxWait = -1 }},
		{name: "ping timeout", mutate: func(o *Options) { o.PingTimeout = 0 }},
		{name: "warn threshold", mutate: func(o *Options) { o.WarnThreshold = -1 }},
	}

	require.NoError(t, fastOptions().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fastOptions()
			tt.mutate(&opts)
			assert.Error(t, opts.Validate())

			err := WaitReady(context.Background(), "test", "mem", &flakyPinger{}, opts, logger.NewNop())
			assert.Error(t, err)
		})
	}
}
