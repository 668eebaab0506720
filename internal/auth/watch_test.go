package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSessionFiresOnceWhenTokenDisappears(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetToken("tok"))

	var fired atomic.Int32
	done := make(chan struct{})
	go func() {
		h.svc.WatchSession(context.Background(), 5*time.Millisecond, func() { fired.Add(1) })
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	require.NoError(t, h.store.Clear())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after the session ended")
	}
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchSessionStopsWithContext(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetToken("tok"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.svc.WatchSession(ctx, time.Millisecond, func() { t.Error("onExpired must not run") })
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher ignored context cancellation")
	}
}
