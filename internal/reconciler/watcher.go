package reconciler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"

	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// DefaultDebounceInterval is how long the watcher waits for further writes
// before reloading.
const DefaultDebounceInterval = 500 * time.Millisecond

// Loader reads the desired service definitions.
// *services.Persistence implements it.
type Loader interface {
	Path() string
	LoadDefinitions() ([]services.Definition, error)
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Loader   Loader
	Manager  ServiceManager
	Observer ReloadObserver
	// Debounce defaults to DefaultDebounceInterval.
	Debounce time.Duration
}

// Watcher reloads the service registry whenever the definitions file
// changes on disk.
//
// It watches the directory holding the file, so atomic replacements through
// rename are seen as well as in-place writes.
type Watcher struct {
	loader   Loader
	manager  ServiceManager
	observer ReloadObserver
	debounce time.Duration

	mu        sync.Mutex
	debouncer *time.Timer
	reloads   chan struct{}
}

// NewWatcher creates a new definitions file watcher.
func NewWatcher(cfg WatcherConfig) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &Watcher{
		loader:   cfg.Loader,
		manager:  cfg.Manager,
		observer: cfg.Observer,
		debounce: debounce,
		reloads:  make(chan struct{}, 1),
	}
}

// Reload reads the definitions file and applies the differences to the
// registry. A missing file leaves the registry untouched.
func (w *Watcher) Reload() ([]Change, error) {
	changes, err := w.reload()
	if w.observer != nil {
		w.observer.ObserveReload(err)
	}
	return changes, err
}

func (w *Watcher) reload() ([]Change, error) {
	if _, err := os.Stat(w.loader.Path()); errors.Is(err, os.ErrNotExist) {
		logging.Warn("Reconciler", "Definitions file %s removed, keeping current registry", w.loader.Path())
		return nil, nil
	}

	defs, err := w.loader.LoadDefinitions()
	if err != nil {
		logging.Error("Reconciler", err, "Failed to load %s", w.loader.Path())
		return nil, err
	}

	changes, err := Apply(w.manager, defs)
	logging.Info("Reconciler", "Reloaded %s: %d changes applied", w.loader.Path(), len(changes))
	return changes, err
}

// Start watches the definitions file until ctx is cancelled or the returned
// stop function is called. Reloads are serialized on a single goroutine.
func (w *Watcher) Start(ctx context.Context) (stop func() error, err error) {
	path := w.loader.Path()
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		w.mu.Lock()
		if w.debouncer != nil {
			w.debouncer.Stop()
		}
		w.mu.Unlock()
	})

	sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case <-sctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				logging.Debug("Reconciler", "Detected %s on %s", event.Op, event.Name)
				w.schedule()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logging.Error("Reconciler", err, "Filesystem watcher error")
			}
		}
	})

	sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case <-sctx.Done():
				return nil
			case <-w.reloads:
				_, _ = w.Reload()
			}
		}
	})

	logging.Info("Reconciler", "Watching %s for definition changes", path)
	return func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}, nil
}

// schedule (re)arms the debounce timer. Bursts of events collapse into a
// single reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.debouncer = time.AfterFunc(w.debounce, func() {
		select {
		case w.reloads <- struct{}{}:
		default:
		}
	})
}
