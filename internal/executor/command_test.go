package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcinit/internal/services"
)

func init() {
	execCommandContext = mockExecCommandContext
}

// mockExecCommandContext re-runs the test binary as the action interpreter.
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess interprets the small action language used by these tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) != 3 || args[1] != "-c" {
		fmt.Fprintf(os.Stderr, "usage: shell -c action\n")
		os.Exit(2)
	}

	fields := strings.Fields(args[2])
	switch fields[0] {
	case "ok":
		os.Exit(0)
	case "fail":
		fmt.Fprintf(os.Stderr, "boom\n")
		os.Exit(3)
	case "write-pid":
		if err := os.WriteFile(fields[1], []byte(fields[2]+"\n"), 0o644); err != nil {
			os.Exit(4)
		}
		os.Exit(0)
	case "expect-env":
		for _, kv := range fields[1:] {
			key, want, _ := strings.Cut(kv, "=")
			if got := os.Getenv(key); got != want {
				fmt.Fprintf(os.Stderr, "%s=%q\n", key, got)
				os.Exit(5)
			}
		}
		os.Exit(0)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "unknown action %q\n", args[2])
	os.Exit(2)
}

func TestNewCommandExecutor(t *testing.T) {
	assert.Equal(t, DefaultShell, NewCommandExecutor("").Shell())
	assert.Equal(t, "/bin/bash", NewCommandExecutor("/bin/bash").Shell())
}

func TestCommandExecutor_ExecuteStart(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "sshd.pid")

	tests := []struct {
		name    string
		actions services.Actions
		wantPID int
		wantErr string
	}{
		{
			name:    "empty action succeeds",
			actions: services.Actions{},
		},
		{
			name:    "no pid file",
			actions: services.Actions{Start: "ok"},
		},
		{
			name:    "pid from pid file",
			actions: services.Actions{Start: "write-pid " + pidFile + " 4711", PIDFile: pidFile},
			wantPID: 4711,
		},
		{
			name:    "failing action",
			actions: services.Actions{Start: "fail"},
			wantErr: "start action failed",
		},
		{
			name:    "missing pid file",
			actions: services.Actions{Start: "ok", PIDFile: filepath.Join(dir, "missing.pid")},
			wantErr: "failed to read pid file",
		},
		{
			name:    "garbage pid file",
			actions: services.Actions{Start: "write-pid " + pidFile + " nope", PIDFile: pidFile},
			wantErr: "no process id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewCommandExecutor("/bin/sh")
			pid, err := e.ExecuteStart(context.Background(), services.Definition{Name: "sshd", Actions: tt.actions})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPID, pid)
		})
	}
}

func TestCommandExecutor_FailureOutput(t *testing.T) {
	e := NewCommandExecutor("")
	err := e.ExecuteStop(context.Background(), services.Definition{
		Name:    "sshd",
		Actions: services.Actions{Stop: "fail"},
	})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "Output: boom")
}

func TestCommandExecutor_Environment(t *testing.T) {
	e := NewCommandExecutor("")
	def := services.Definition{
		Name: "ntpd",
		Actions: services.Actions{
			Start: "expect-env RCINIT_SERVICE=ntpd RCINIT_ACTION=start RCINIT_SECCOMP=true",
		},
		Security: &services.SecurityContext{Seccomp: true},
	}

	_, err := e.ExecuteStart(context.Background(), def)
	assert.NoError(t, err)
}

func TestCommandExecutor_ExecuteRestart(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "ntpd.pid")
	e := NewCommandExecutor("")

	pid, err := e.ExecuteRestart(context.Background(), services.Definition{
		Name:    "ntpd",
		Actions: services.Actions{Restart: "write-pid " + pidFile + " 99", PIDFile: pidFile},
	})
	require.NoError(t, err)
	assert.Equal(t, 99, pid)
}

func TestCommandExecutor_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	e := NewCommandExecutor("")
	started := time.Now()
	_, err := e.ExecuteStart(ctx, services.Definition{Name: "slow", Actions: services.Actions{Start: "sleep"}})
	require.Error(t, err)
	assert.Less(t, time.Since(started), 5*time.Second)
}
