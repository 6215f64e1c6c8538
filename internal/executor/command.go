package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

const subsystem = "Executor"

// DefaultShell interprets service actions when no shell is configured.
const DefaultShell = "/bin/sh"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// ErrNoPID is returned when a service declares a pid file that does not hold
// a process ID after its start action succeeded.
var ErrNoPID = errors.New("no process id in pid file")

// CommandExecutor runs service actions as shell commands.
//
// An empty action succeeds without running anything. After a successful
// start or restart the PID is read from Actions.PIDFile when one is declared.
// Security contexts are passed through to the action environment and are not
// enforced here.
type CommandExecutor struct {
	shell string
	env   []string
}

// NewCommandExecutor creates an executor using shell to run actions.
func NewCommandExecutor(shell string) *CommandExecutor {
	if shell == "" {
		shell = DefaultShell
	}
	return &CommandExecutor{
		shell: shell,
		env:   os.Environ(),
	}
}

// Shell returns the interpreter used for actions.
func (e *CommandExecutor) Shell() string {
	return e.shell
}

// ExecuteStart runs the start action and returns the service PID, or 0 when
// the service declares no pid file.
func (e *CommandExecutor) ExecuteStart(ctx context.Context, def services.Definition) (int, error) {
	if err := e.run(ctx, def, "start", def.Actions.Start); err != nil {
		return 0, err
	}
	return readPIDFile(def.Actions.PIDFile)
}

// ExecuteStop runs the stop action.
func (e *CommandExecutor) ExecuteStop(ctx context.Context, def services.Definition) error {
	return e.run(ctx, def, "stop", def.Actions.Stop)
}

// ExecuteRestart runs the dedicated restart action and returns the new PID.
func (e *CommandExecutor) ExecuteRestart(ctx context.Context, def services.Definition) (int, error) {
	if err := e.run(ctx, def, "restart", def.Actions.Restart); err != nil {
		return 0, err
	}
	return readPIDFile(def.Actions.PIDFile)
}

func (e *CommandExecutor) run(ctx context.Context, def services.Definition, op, action string) error {
	if strings.TrimSpace(action) == "" {
		logging.Debug(subsystem, "Service %s has no %s action", def.Name, op)
		return nil
	}

	logging.Debug(subsystem, "Running %s action of %s: %s -c %q", op, def.Name, e.shell, action)
	cmd := execCommandContext(ctx, e.shell, "-c", action)
	cmd.Env = append(cmd.Env, e.env...)
	cmd.Env = append(cmd.Env, actionEnv(def, op)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		out := strings.TrimSpace(string(output))
		if out == "" {
			return fmt.Errorf("%s action failed: %w", op, err)
		}
		return fmt.Errorf("%s action failed: %w\nOutput: %s", op, err, out)
	}
	return nil
}

// actionEnv describes the service to its action scripts.
func actionEnv(def services.Definition, op string) []string {
	env := []string{
		"RCINIT_SERVICE=" + def.Name,
		"RCINIT_ACTION=" + op,
	}
	if def.Actions.PIDFile != "" {
		env = append(env, "RCINIT_PIDFILE="+def.Actions.PIDFile)
	}
	if sec := def.Security; sec != nil {
		env = append(env,
			"RCINIT_NAMESPACE_ISOLATION="+strconv.FormatBool(sec.NamespaceIsolation),
			"RCINIT_SECCOMP="+strconv.FormatBool(sec.Seccomp),
		)
		if sec.SeccompProfile != "" {
			env = append(env, "RCINIT_SECCOMP_PROFILE="+sec.SeccompProfile)
		}
	}
	return env
}

func readPIDFile(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w %s", ErrNoPID, path)
	}
	return pid, nil
}
