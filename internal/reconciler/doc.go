// Package reconciler keeps the service registry in line with the
// definitions file.
//
// Diff compares the registered definitions with the desired ones and Apply
// turns the differences into RegisterService, UpdateService and
// UnregisterService calls. Updates keep the runtime state of a service; the
// new definition takes effect on its next start. Removing a service that an
// enabled running service still depends on fails and is reported, the rest
// of the reload still goes through.
//
// Watcher uses fsnotify to watch the directory of the definitions file and
// reloads after a debounce interval once writes settle:
//
//	w := reconciler.NewWatcher(reconciler.WatcherConfig{
//	    Loader:  services.NewPersistence(storage, "services.yaml"),
//	    Manager: orch,
//	})
//	stop, err := w.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer stop()
package reconciler
