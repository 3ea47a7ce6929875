package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeListener receives the reloaded configuration
type ChangeListener func(*Config)

// Watcher reloads the config file when it changes on disk and notifies
// listeners. An invalid file is logged and ignored; listeners keep the last
// good configuration.
type Watcher struct {
	path      string
	load      func(string) (*Config, error)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	mutex     sync.RWMutex
	listeners []ChangeListener
	done      chan struct{}
}

// NewWatcher creates a watcher for the given config file
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("no config file to watch")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:   abs,
		load:   Load,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// OnChange registers a listener
func (w *Watcher) OnChange(listener ChangeListener) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.listeners = append(w.listeners, listener)
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file by rename are noticed.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	go w.run()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	w.logger.Info("Watching config file", zap.String("file", w.path))
	return nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.load(w.path)
	if err != nil {
		w.logger.Error("Failed to reload config", zap.String("file", w.path), zap.Error(err))
		return
	}
	w.logger.Info("Config file changed", zap.String("file", w.path))

	w.mutex.RLock()
	listeners := append([]ChangeListener(nil), w.listeners...)
	w.mutex.RUnlock()

	for _, listener := range listeners {
		listener(cfg)
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
