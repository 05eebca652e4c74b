package bootstrap

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked with the path of a configuration file that changed
// on disk.
type ReloadFunc func(path string)

// ConfigWatcher watches configuration files and invokes a reload callback
// when one of them is written or created - typically to re-feed a Config
// and re-run ValidateConfiguration on the affected initializers.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	onReload ReloadFunc
	logger   Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewConfigWatcher creates a watcher delivering change notifications to
// onReload.
func NewConfigWatcher(onReload ReloadFunc, logger Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = NoopLogger{}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &ConfigWatcher{
		watcher:  watcher,
		onReload: onReload,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Watch adds a file or directory to the watch set.
func (w *ConfigWatcher) Watch(path string) error {
	if err := w.watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.logger.Debug("Watching configuration path", "path", path)
	return nil
}

// Start begins delivering change notifications in a background goroutine.
// Starting twice is a no-op.
func (w *ConfigWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					w.logger.Debug("Configuration file changed", "path", event.Name, "op", event.Op.String())
					w.onReload(event.Name)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("Configuration watch error", "error", err)
			}
		}
	}()
}

// Stop closes the watcher and waits for the notification goroutine to
// exit. Stopping a watcher that never started just closes it.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	if started {
		<-w.done
	}
	return nil
}
