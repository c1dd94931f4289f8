package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay coalesces the burst of events a single save produces.
const DefaultWatchDelay = 100 * time.Millisecond

// FileChange reports that a watched file changed on disk.
type FileChange struct {
	Path string
	// Op combines every operation seen during the debounce window.
	Op   fsnotify.Op
	Time time.Time
}

// FileWatcher watches a single file for changes made by other programs.
//
// The file's directory is watched rather than the file itself, so that
// replacing the file by rename, as most editors save, is still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	delay   time.Duration

	changes chan FileChange
	errors  chan error

	mu       sync.Mutex
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatchFile starts watching path. Events for the same file within delay
// of each other are merged into one FileChange.
func WatchFile(path string, delay time.Duration) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &FileWatcher{
		watcher: fsw,
		path:    absPath,
		delay:   delay,
		changes: make(chan FileChange, 16),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

// Changes returns the change channel. It is closed by Close.
func (w *FileWatcher) Changes() <-chan FileChange {
	return w.changes
}

// Errors returns the error channel. It is closed by Close.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()

	close(w.changes)
	close(w.errors)

	return w.watcher.Close()
}

// processLoop filters events down to the watched file and debounces them.
func (w *FileWatcher) processLoop() {
	defer w.closedWg.Done()

	var (
		pending *FileChange
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
				continue
			}
			if pending == nil {
				pending = &FileChange{Path: w.path}
			}
			pending.Op |= ev.Op
			pending.Time = time.Now()

			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.send(*pending)
			pending = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// send delivers a change, dropping it if nobody is reading.
func (w *FileWatcher) send(c FileChange) {
	select {
	case w.changes <- c:
	default:
	}
}
