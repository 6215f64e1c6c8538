package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"rcinit/internal/orchestrator"
	"rcinit/internal/runlevel"
	"rcinit/pkg/logging"
)

// metricsShutdownTimeout bounds the graceful shutdown of the metrics server.
const metricsShutdownTimeout = 5 * time.Second

// bootSequence returns the run-levels to boot through so that target is
// entered last. A target already in sequence truncates it; an unknown one
// is appended.
func bootSequence(sequence []string, target string) []string {
	if target == "" {
		return slices.Clone(sequence)
	}
	if idx := slices.Index(sequence, target); idx >= 0 {
		return slices.Clone(sequence[:idx+1])
	}
	return append(slices.Clone(sequence), target)
}

// runBootMode boots the configured run-levels and supervises them.
//
// Behavior:
//   - Serves prometheus metrics when enabled
//   - Watches the services file for changes when enabled
//   - Boots every run-level of the sequence through the enablement gate
//   - Notifies systemd of readiness, when run under systemd
//   - Keeps the status file current on every state change
//   - Blocks until SIGINT/SIGTERM or ctx cancellation
//   - Stops the booted run-levels in reverse order
//
// Service failures during boot are logged and do not stop supervision.
func runBootMode(ctx context.Context, cfg *Config, svcs *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCfg := cfg.InitConfig
	target := cfg.RunLevel
	if target == "" {
		target = initCfg.DefaultRunlevel
	}
	sequence := bootSequence(initCfg.BootSequence, target)

	g, gctx := errgroup.WithContext(ctx)

	if initCfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(gctx, initCfg.Metrics.Address, svcs.Metrics.Handler())
		})
	}

	if initCfg.Watch {
		stopWatch, err := svcs.Watcher.Start(gctx)
		if err != nil {
			logging.Warn("Boot", "Not watching services file: %v", err)
		} else {
			defer func() {
				if err := stopWatch(); err != nil {
					logging.Warn("Boot", "Watcher stopped with error: %v", err)
				}
			}()
		}
	}

	events := svcs.Orchestrator.SubscribeToStateChanges()
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-events:
				svcs.writeStatus()
			}
		}
	})

	logging.Info("Boot", "Booting run-levels %v", sequence)
	results, bootErr := boot(gctx, cfg.Progress, svcs, sequence)
	logBootSummary(results)
	if bootErr != nil && gctx.Err() == nil {
		logging.Warn("Boot", "Boot completed with failures: %v", bootErr)
	}

	svcs.writeStatus()
	notifySystemd(daemon.SdNotifyReady, fmt.Sprintf("STATUS=Run-level %s", svcs.Controller.CurrentRunlevel()))
	logging.Info("Boot", "Run-level %s reached. Press Ctrl+C to stop all services and exit.", svcs.Controller.CurrentRunlevel())

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	runErr := g.Wait()

	logging.Info("Boot", "--- Shutting down services ---")
	notifySystemd(daemon.SdNotifyStopping)
	shutdownErr := shutdown(context.Background(), svcs.Controller, sequence)
	if shutdownErr != nil {
		logging.Error("Boot", shutdownErr, "Shutdown completed with failures")
	}
	svcs.writeStatus()
	return errors.Join(runErr, shutdownErr)
}

// boot runs the boot sequence, showing a spinner with the latest state
// change when progress is requested.
func boot(ctx context.Context, progress bool, svcs *Services, sequence []string) ([]*runlevel.Result, error) {
	if !progress {
		return svcs.Controller.Boot(ctx, sequence)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Booting..."
	s.Start()

	events := svcs.Orchestrator.SubscribeToStateChanges()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case event := <-events:
				s.Lock()
				s.Suffix = progressSuffix(event)
				s.Unlock()
			}
		}
	}()

	results, err := svcs.Controller.Boot(ctx, sequence)
	close(done)
	s.Stop()
	return results, err
}

func progressSuffix(event orchestrator.ServiceStateChangedEvent) string {
	return fmt.Sprintf(" %s: %s", event.Name, event.NewState)
}

func logBootSummary(results []*runlevel.Result) {
	for _, result := range results {
		logging.Info("Boot", "Run-level %s: %d started, %d failed, %d not attempted",
			result.RunLevel, len(result.Completed()), len(result.Failed()), len(result.NotAttempted()))
	}
}

// shutdown stops the current run-level, then the earlier run-levels of the
// boot sequence in reverse order.
func shutdown(ctx context.Context, ctrl *runlevel.Controller, sequence []string) error {
	var errs []error
	current := ctrl.CurrentRunlevel()
	if _, err := ctrl.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(sequence) - 1; i >= 0; i-- {
		if sequence[i] == current {
			continue
		}
		if _, err := ctrl.StopRunlevel(ctx, sequence[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// serveMetrics exposes handler on /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("Metrics", "Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// notifySystemd sends state to the service manager. Outside systemd this is
// a no-op.
func notifySystemd(states ...string) {
	for _, state := range states {
		if _, err := daemon.SdNotify(false, state); err != nil {
			logging.Debug("Boot", "sd_notify %s failed: %v", state, err)
		}
	}
}
