package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcinit/internal/api"
	"rcinit/internal/services"
)

func crashingService(maxAttempts uint32) services.Definition {
	return services.Definition{
		Name: "crashy",
		RestartPolicy: services.RestartPolicy{
			RestartOnFailure: true,
			MaxAttempts:      maxAttempts,
			Delay:            time.Second,
		},
	}
}

func TestRecovery_RetriesUpToMaxAttempts(t *testing.T) {
	env := newTestEnv(t, crashingService(2))
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "crashy"))
	assert.Equal(t, 1, env.orch.PendingRecoveries())

	env.clock.Advance(time.Second)
	assert.Equal(t, 2, env.exec.startCount("crashy"))
	assert.Equal(t, 1, env.state(t, "crashy").RestartCount)

	env.clock.Advance(time.Second)
	assert.Equal(t, 3, env.exec.startCount("crashy"))
	assert.Equal(t, 2, env.state(t, "crashy").RestartCount)
	assert.Zero(t, env.orch.PendingRecoveries(), "attempts exhausted")

	env.clock.Advance(time.Hour)
	assert.Equal(t, 3, env.exec.startCount("crashy"))
	env.requireState(t, "crashy", api.StateFailed)
}

func TestRecovery_WaitsForDelay(t *testing.T) {
	env := newTestEnv(t, crashingService(3))
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "crashy"))
	env.clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 1, env.exec.startCount("crashy"))
}

func TestRecovery_SuccessResetsRestartCount(t *testing.T) {
	env := newTestEnv(t, crashingService(3))
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "crashy"))
	env.exec.setStartErr("crashy", nil)
	env.clock.Advance(time.Second)

	env.requireState(t, "crashy", api.StateRunning)
	assert.Zero(t, env.state(t, "crashy").RestartCount)
	assert.Zero(t, env.orch.PendingRecoveries())
}

func TestRecovery_ExponentialBackoff(t *testing.T) {
	def := crashingService(3)
	def.RestartPolicy.ExponentialBackoff = true
	env := newTestEnv(t, def)
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "crashy"))
	env.clock.Advance(time.Second)
	assert.Equal(t, 2, env.exec.startCount("crashy"))

	// Second retry waits twice as long.
	env.clock.Advance(time.Second)
	assert.Equal(t, 2, env.exec.startCount("crashy"))
	env.clock.Advance(time.Second)
	assert.Equal(t, 3, env.exec.startCount("crashy"))
}

func TestRecovery_DisabledPolicy(t *testing.T) {
	env := newTestEnv(t, services.Definition{Name: "svc"})
	env.exec.setStartErr("svc", errors.New("boom"))

	require.Error(t, env.orch.StartService(context.Background(), "svc"))
	assert.Zero(t, env.orch.PendingRecoveries())
}

func TestRecovery_CancelledByStop(t *testing.T) {
	env := newTestEnv(t, crashingService(3))
	env.exec.setStartErr("crashy", errors.New("segfault"))
	ctx := context.Background()

	require.Error(t, env.orch.StartService(ctx, "crashy"))
	require.NoError(t, env.orch.StopService(ctx, "crashy"))
	env.requireState(t, "crashy", api.StateStopped)
	assert.Zero(t, env.orch.PendingRecoveries())

	env.clock.Advance(time.Minute)
	assert.Equal(t, 1, env.exec.startCount("crashy"))
}

func TestRecovery_CancelledByClose(t *testing.T) {
	env := newTestEnv(t, crashingService(3))
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "crashy"))
	env.orch.Close()
	assert.Zero(t, env.orch.PendingRecoveries())

	env.clock.Advance(time.Minute)
	assert.Equal(t, 1, env.exec.startCount("crashy"))
}

func TestRecovery_NotScheduledForDependencyFailures(t *testing.T) {
	base := crashingService(3)
	dependent := crashingService(3)
	dependent.Name = "dependent"
	dependent.Dependencies = []string{"crashy"}
	env := newTestEnv(t, base, dependent)
	env.exec.setStartErr("crashy", errors.New("segfault"))

	require.Error(t, env.orch.StartService(context.Background(), "dependent"))
	assert.Equal(t, 1, env.orch.PendingRecoveries(), "only the failing service is retried")
}
