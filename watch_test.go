package arcade

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splashkit/arcade-packager/internal"
)

func TestManifestWatcherRerunsOnChange(t *testing.T) {
	mw, err := NewManifestWatcher(t.TempDir(), internal.Discard(), 10*time.Millisecond)
	require.NoError(t, err)
	mw.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- mw.Watch(ctx, func(context.Context) error {
			runs.Add(1)
			return errors.New("failures are logged, not fatal")
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	mw.w.TriggerEvent(watcher.Write, nil)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestManifestWatcherStopsPollerWhenCancelledEarly(t *testing.T) {
	mw, err := NewManifestWatcher(t.TempDir(), internal.Discard(), 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var runs atomic.Int32
	require.NoError(t, mw.Watch(ctx, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, int32(1), runs.Load())

	select {
	case <-mw.w.Closed:
	case <-time.After(time.Second):
		t.Fatal("poller still running")
	}
}

func TestNewManifestWatcherMissingDir(t *testing.T) {
	_, err := NewManifestWatcher("/does/not/exist", internal.Discard(), 0)
	assert.Error(t, err)
}
