package arcade

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/radovskyb/watcher"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	debounceDuration    = 500 * time.Millisecond
)

var manifestFile = regexp.MustCompile(`\.toml$`)

// ManifestWatcher polls a manifest directory and re-runs a callback when a
// manifest is created, written, renamed or removed.
type ManifestWatcher struct {
	w        *watcher.Watcher
	log      *slog.Logger
	interval time.Duration
	debounce time.Duration
}

func NewManifestWatcher(dir string, log *slog.Logger, interval time.Duration) (*ManifestWatcher, error) {
	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)
	w.AddFilterHook(watcher.RegexFilterHook(manifestFile, false))
	if err := w.Add(dir); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ManifestWatcher{
		w:        w,
		log:      log,
		interval: interval,
		debounce: debounceDuration,
	}, nil
}

// Watch calls fn once, then again after each burst of manifest changes,
// until ctx is done. Calls never overlap; a failing call is logged and
// watching continues.
func (mw *ManifestWatcher) Watch(ctx context.Context, fn func(context.Context) error) error {
	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			mw.log.Error("run failed, waiting for changes", "err", err)
		}
	}
	run()

	started := make(chan error, 1)
	go func() {
		started <- mw.w.Start(mw.interval)
	}()
	// Close is a no-op until Start has marked the watcher running.
	running := make(chan struct{})
	go func() {
		mw.w.Wait()
		close(running)
	}()
	select {
	case err := <-started:
		return err
	case <-running:
	}
	defer mw.close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-started:
			return err
		case err := <-mw.w.Error:
			mw.log.Warn("watch error", "err", err)
		case e := <-mw.w.Event:
			mw.log.Info("manifest changed", "op", e.Op.String(), "path", e.Path)
			pending = time.After(mw.debounce)
		case <-pending:
			pending = nil
			run()
		}
	}
}

// close stops the poller, draining events it may still be sending.
func (mw *ManifestWatcher) close() {
	closed := make(chan struct{})
	go func() {
		mw.w.Close()
		close(closed)
	}()
	for {
		select {
		case <-closed:
			return
		case <-mw.w.Event:
		case <-mw.w.Error:
		}
	}
}
