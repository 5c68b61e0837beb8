// Package watcher provides file system watching with debouncing for the
// document drop directory. Files that appear there are announced once
// they have settled, so half-written files are not picked up.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a drop directory and announces settled files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	dropped   chan string
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Dir         string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new drop-directory watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		debounce:  cfg.DebounceDur,
		dropped:   make(chan string, 16),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the drop directory. Returns a channel carrying
// the path of each file once it has stopped changing.
func (w *Watcher) Start() (<-chan string, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	go w.loop()

	return w.dropped, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events, debouncing per file so a stream of
// writes collapses into one announcement.
func (w *Watcher) loop() {
	timers := make(map[string]*time.Timer)
	fired := make(chan string, 16)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}

			path := event.Name
			if timer, exists := timers[path]; exists {
				timer.Reset(w.debounce)
				continue
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- path:
				case <-w.done:
				}
			})

		case path := <-fired:
			delete(timers, path)
			select {
			case w.dropped <- path:
			default:
				// Consumer is behind; drop rather than block the loop.
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			for _, timer := range timers {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent filters events down to new or modified regular files.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	// Editors and download managers write through hidden or partial files.
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".part") {
		return false
	}
	return true
}
