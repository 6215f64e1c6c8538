package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rcinit/internal/api"
	"rcinit/internal/services"
)

// fakeExecutor records calls and returns configured errors. Start actions of
// services listed in block wait until the channel is closed, ignoring ctx.
type fakeExecutor struct {
	mu       sync.Mutex
	starts   map[string]int
	stops    map[string]int
	order    []string
	startErr map[string]error
	stopErr  map[string]error
	block    map[string]chan struct{}
	nextPID  int
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		starts:   map[string]int{},
		stops:    map[string]int{},
		startErr: map[string]error{},
		stopErr:  map[string]error{},
		block:    map[string]chan struct{}{},
		nextPID:  100,
	}
}

func (f *fakeExecutor) ExecuteStart(_ context.Context, def services.Definition) (int, error) {
	f.mu.Lock()
	f.starts[def.Name]++
	f.order = append(f.order, def.Name)
	err := f.startErr[def.Name]
	block := f.block[def.Name]
	f.nextPID++
	pid := f.nextPID
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return 0, err
	}
	return pid, nil
}

func (f *fakeExecutor) ExecuteStop(_ context.Context, def services.Definition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops[def.Name]++
	return f.stopErr[def.Name]
}

func (f *fakeExecutor) setStartErr(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startErr[name] = err
}

func (f *fakeExecutor) startCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts[name]
}

func (f *fakeExecutor) stopCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops[name]
}

func (f *fakeExecutor) startOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// restartingExecutor additionally supports dedicated restart actions.
type restartingExecutor struct {
	*fakeExecutor
	restarts int
}

func (r *restartingExecutor) ExecuteRestart(_ context.Context, def services.Definition) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restarts++
	return 4242, nil
}

// fakeClock fires AfterFunc callbacks only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every due callback synchronously.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type testEnv struct {
	orch  *Orchestrator
	reg   *services.Registry
	exec  *fakeExecutor
	clock *fakeClock
}

func newTestEnv(t *testing.T, defs ...services.Definition) *testEnv {
	t.Helper()
	reg := services.NewRegistry()
	for _, def := range defs {
		require.NoError(t, reg.Register(def))
	}
	exec := newFakeExecutor()
	clock := newFakeClock()
	orch := New(Config{
		Registry:       reg,
		Executor:       exec,
		Clock:          clock,
		StartupTimeout: time.Second,
		StopTimeout:    time.Second,
	})
	t.Cleanup(orch.Close)
	return &testEnv{orch: orch, reg: reg, exec: exec, clock: clock}
}

func (e *testEnv) state(t *testing.T, name string) services.RuntimeState {
	t.Helper()
	state, err := e.reg.State(name)
	require.NoError(t, err)
	return state
}

func (e *testEnv) requireState(t *testing.T, name string, want api.ServiceState) {
	t.Helper()
	require.Equal(t, want, e.state(t, name).State, "state of %s", name)
}
