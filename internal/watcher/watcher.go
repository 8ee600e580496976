// Package watcher reloads the document being labeled when its file changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/pubsub"
)

// Change is published once per debounced burst of file events.
type Change struct {
	Path string
	Text string
	// Err is set when the file could not be read; Text is then empty.
	Err error
}

// Watcher monitors one document file and publishes its new contents.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	broker    *pubsub.Broker[Change]
	done      chan struct{}
	stopOnce  sync.Once
}

var _ pubsub.Subscriber[Change] = (*Watcher)(nil)

// Config holds watcher configuration options.
type Config struct {
	Path        string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a new document watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("resolving %s: %w", cfg.Path, err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      path,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[Change](),
		done:      make(chan struct{}),
	}, nil
}

// Subscribe returns a channel of changes that closes when ctx is done.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return w.broker.Subscribe(ctx)
}

// Start begins watching. The directory is watched rather than the file so
// that editors which save by rename are still seen.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "watching document", "path", w.path)

	go w.loop()
	return nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.broker.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.publish()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err, "path", w.path)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) publish() {
	data, err := os.ReadFile(w.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn(log.CatWatcher, "document removed", "path", w.path)
		w.broker.Publish(pubsub.DeletedEvent, Change{Path: w.path, Err: err})
	case err != nil:
		log.ErrorErr(log.CatWatcher, "reading document", err, "path", w.path)
		w.broker.Publish(pubsub.UpdatedEvent, Change{Path: w.path, Err: err})
	default:
		log.Debug(log.CatWatcher, "document changed", "path", w.path, "bytes", len(data))
		w.broker.Publish(pubsub.UpdatedEvent, Change{Path: w.path, Text: string(data)})
	}
}

// isRelevantEvent checks if the event touches the watched file.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
