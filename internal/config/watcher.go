package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/escaper/internal/errors"
)

// DefaultDebounce is the quiet period before a changed file is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu       sync.Mutex
	onChange func(*Config)
	timer    *time.Timer
	running  bool
	stopCh   chan struct{}
}

// NewWatcher starts watching the directory holding path. Editors often
// replace a file instead of writing it, so events are matched by name.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigLoad).Wrap(err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New(errors.CodeConfigLoad).Wrap(err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.New(errors.CodeConfigLoad).Wrap(err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// OnChange sets the callback for reloaded configs. Only configs that load
// and validate are passed on.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start processes file events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", "path", w.path, "error", err)
		}
	}
}

// Stop stops the watcher and releases the underlying file watch.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.running {
		close(w.stopCh)
		w.running = false
	}
	w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Warn("config reload rejected, keeping previous config",
			"path", w.path,
			"error", errors.CodeOf(err),
			"detail", err.Error(),
		)
		return
	}

	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if fn != nil {
		fn(cfg)
	}
}
