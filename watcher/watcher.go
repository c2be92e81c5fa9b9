// Package watcher provides change watching for resources loaded through
// resio.
//
// A Watcher monitors a single URI and emits the resource's new content
// whenever it changes. Local file: resources are watched with fsnotify;
// everything else (http, data, package-resolved remotes) falls back to
// periodic polling. Every emission is the result of a fresh load through
// the configured loader; nothing is cached beyond the bytes kept for
// change comparison.
//
// Basic usage:
//
//	w, err := watcher.New().
//	    ForURI("file:///etc/myapp/rules.txt").
//	    WithPollInterval(30 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
//	updates, err := w.Watch(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go func() {
//	    for content := range updates {
//	        app.Reload(content)
//	    }
//	}()
//
// The Watcher is safe for concurrent use. The updates channel should be
// consumed by a single goroutine.
package watcher

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/arloliu/resio"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one resource URI and emits updates when its content
// changes.
type Watcher struct {
	loader      resio.Loader
	uri         string
	config      watcherConfig
	fsWatcher   *fsnotify.Watcher
	stopChan    chan struct{}
	doneChan    chan struct{}
	updatesChan chan []byte
	mu          sync.Mutex
	running     bool
	lastContent []byte
}

// watcherConfig holds internal configuration for the watcher.
type watcherConfig struct {
	pollInterval     time.Duration
	debounceInterval time.Duration
}

// defaultPollInterval is the default polling interval for resources that
// cannot be watched through the filesystem.
const defaultPollInterval = 30 * time.Second

// defaultDebounceInterval prevents rapid successive reloads.
const defaultDebounceInterval = 100 * time.Millisecond

// Watch performs an initial load of the resource and starts watching for
// changes. It returns a channel that receives the resource's new content
// whenever it differs from the previously observed content.
//
// ctx governs the initial load and every subsequent re-load; cancelling it
// stops the watcher. The returned channel is closed when the watcher
// stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil, &Error{Message: "watcher is already running"}
	}

	content, err := w.loader.ReadBytes(ctx, w.uri)
	if err != nil {
		return nil, err
	}
	w.lastContent = content

	w.running = true
	w.updatesChan = make(chan []byte, 1)
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})

	go w.watchLoop(ctx)

	return w.updatesChan, nil
}

// Stop gracefully stops the watcher. It closes the updates channel and
// releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan // Wait for watchLoop to finish

	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
}

// watchLoop is the main watch loop that monitors for changes.
func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.doneChan)
	defer close(w.updatesChan)

	// Filesystem events are only available when the URI normalizes to a
	// local file.
	var fsChan <-chan fsnotify.Event
	if path := w.watchablePath(ctx); path != "" {
		var err error
		w.fsWatcher, err = fsnotify.NewWatcher()
		if err == nil {
			_ = w.fsWatcher.Add(path)
			fsChan = w.fsWatcher.Events
		}
	}

	pollTicker := time.NewTicker(w.config.pollInterval)
	defer pollTicker.Stop()

	var debounceTimer *time.Timer
	var debounceChan <-chan time.Time

	reload := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.NewTimer(w.config.debounceInterval)
		debounceChan = debounceTimer.C
	}

	for {
		select {
		case <-w.stopChan:
			return

		case <-ctx.Done():
			return

		case event, ok := <-fsChan:
			if !ok {
				fsChan = nil
				continue
			}
			// Only react to write and create events.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				reload()
			}

		case <-pollTicker.C:
			reload()

		case <-debounceChan:
			debounceChan = nil
			content, changed := w.reloadIfChanged(ctx)
			if !changed {
				continue
			}
			select {
			case w.updatesChan <- content:
			case <-w.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// reloadIfChanged re-fetches the resource and reports whether its content
// differs from the last observed content. Load failures do not stop the
// watcher; the next event or poll tries again.
func (w *Watcher) reloadIfChanged(ctx context.Context) ([]byte, bool) {
	content, err := w.loader.ReadBytes(ctx, w.uri)
	if err != nil {
		return nil, false
	}
	if bytes.Equal(content, w.lastContent) {
		return nil, false
	}
	w.lastContent = content

	return content, true
}

// watchablePath returns the local filesystem path behind the URI, or ""
// when the resource is not a local file.
func (w *Watcher) watchablePath(ctx context.Context) string {
	var u *url.URL
	if rl, ok := w.loader.(*resio.ResolvingLoader); ok {
		resolved, err := rl.Resolve(ctx, w.uri)
		if err != nil {
			return ""
		}
		u = resolved
	} else {
		parsed, err := url.Parse(w.uri)
		if err != nil {
			return ""
		}
		u = parsed
	}

	if u.Scheme != "file" || u.Path == "" {
		return ""
	}

	return u.Path
}

// Error represents a watcher-specific error.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
