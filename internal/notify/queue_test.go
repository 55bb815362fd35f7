package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestQueue_RunsTasks(t *testing.T) {
	q := NewQueue(2, 10, time.Second, zap.NewNop())
	var n int64
	for i := 0; i < 5; i++ {
		require.True(t, q.Submit("count", func(ctx context.Context) error {
			atomic.AddInt64(&n, 1)
			return nil
		}))
	}
	q.Close()
	assert.Equal(t, int64(5), atomic.LoadInt64(&n))
}

func TestQueue_LogsFailuresAndPanics(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	q := NewQueue(1, 10, time.Second, zap.New(core))

	q.Submit("notify_admins", func(ctx context.Context) error { return errors.New("no admins") })
	q.Submit("explode", func(ctx context.Context) error { panic("boom") })
	q.Close()

	failed := logs.FilterMessage("outbound task failed").All()
	require.Len(t, failed, 2)
	assert.Equal(t, "notify_admins", failed[0].ContextMap()["task"])
	assert.Equal(t, "no admins", failed[0].ContextMap()["error"])
	assert.Contains(t, failed[1].ContextMap()["error"], "panic: boom")
}

func TestQueue_TaskTimeout(t *testing.T) {
	q := NewQueue(1, 1, 20*time.Millisecond, zap.NewNop())
	var deadlineHit int64
	q.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		atomic.StoreInt64(&deadlineHit, 1)
		return ctx.Err()
	})
	q.Close()
	assert.Equal(t, int64(1), atomic.LoadInt64(&deadlineHit))
}

func TestQueue_DropsWhenFullOrClosed(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	q := NewQueue(1, 1, time.Second, zap.NewNop())

	require.True(t, q.Submit("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.True(t, q.Submit("buffered", func(ctx context.Context) error { return nil }))
	assert.False(t, q.Submit("overflow", func(ctx context.Context) error { return nil }))

	close(release)
	q.Close()
	assert.False(t, q.Submit("late", func(ctx context.Context) error { return nil }))
	q.Close()
}
