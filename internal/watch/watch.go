// Package watch signals when any of a set of files changes. It backs
// `achievecard render --watch`, which re-renders when the icon or the config
// file is saved.
//
// Parent directories are watched rather than the files themselves so that
// editors and atomic writers that replace a file by renaming over it are
// still seen. When fsnotify is unavailable, or fails later, the watcher falls
// back to polling modification times.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = time.Second

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors files for changes using fsnotify with a polling fallback.
type Watcher struct {
	// files holds the cleaned absolute paths being monitored.
	files map[string]struct{}
	// events is buffered to 1 so back-to-back changes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to signal goroutines to exit.
	done chan struct{}

	mu  sync.Mutex
	fsw *fsnotify.Watcher // nil when polling

	once         sync.Once
	polling      atomic.Bool
	pollInterval time.Duration
}

// New creates a Watcher for the given files. The files need not exist yet,
// but their directories should.
func New(files ...string) (*Watcher, error) {
	return newWatcher(files, DefaultPollInterval, false)
}

func newWatcher(files []string, interval time.Duration, forcePoll bool) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("watch: no files given")
	}

	w := &Watcher{
		files:        make(map[string]struct{}, len(files)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
	}
	dirs := map[string]struct{}{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	if forcePoll {
		w.startPolling()
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when a watched file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

// watch forwards write, create and rename-over events for watched files. On
// an fsnotify error it closes the native watcher and switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; watched {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

type fileStamp struct {
	mod  time.Time
	size int64
	ok   bool
}

func (w *Watcher) stamps() map[string]fileStamp {
	out := make(map[string]fileStamp, len(w.files))
	for path := range w.files {
		info, err := os.Stat(path)
		if err != nil {
			out[path] = fileStamp{}
			continue
		}
		out[path] = fileStamp{mod: info.ModTime(), size: info.Size(), ok: true}
	}
	return out
}

// poll periodically stats the files and notifies when any of them appears,
// or changes modification time or size. Deletions are not reported.
func (w *Watcher) poll() {
	last := w.stamps()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.stamps()
			for path, s := range cur {
				prev := last[path]
				if s.ok && (!prev.ok || !s.mod.Equal(prev.mod) || s.size != prev.size) {
					w.notify()
					break
				}
			}
			last = cur
		}
	}
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
