package services

import (
	"fmt"
	"slices"
	"time"

	"rcinit/internal/api"
)

// DefaultRunLevel is assigned to definitions that do not name any run-level.
const DefaultRunLevel = "default"

// RestartPolicy controls automatic recovery of a service whose start action fails.
type RestartPolicy struct {
	RestartOnFailure   bool          `yaml:"restartOnFailure" json:"restartOnFailure"`
	MaxAttempts        uint32        `yaml:"maxAttempts" json:"maxAttempts"`
	Delay              time.Duration `yaml:"delay" json:"delay"`
	ExponentialBackoff bool          `yaml:"exponentialBackoff,omitempty" json:"exponentialBackoff,omitempty"`
	MaxDelay           time.Duration `yaml:"maxDelay,omitempty" json:"maxDelay,omitempty"`
}

// ShouldRetry reports whether another recovery attempt is allowed after
// attempts failed recoveries.
func (p RestartPolicy) ShouldRetry(attempts int) bool {
	if !p.RestartOnFailure {
		return false
	}
	return attempts < int(p.MaxAttempts)
}

// RetryDelay returns the wait before recovery attempt number attempt (1-based).
// With exponential backoff the delay doubles per attempt and is capped by MaxDelay.
func (p RestartPolicy) RetryDelay(attempt int) time.Duration {
	if !p.ExponentialBackoff || attempt <= 1 {
		return p.capped(p.Delay)
	}
	delay := p.Delay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return p.capped(delay)
}

func (p RestartPolicy) capped(d time.Duration) time.Duration {
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Actions holds the opaque start/stop/restart references of a service.
// They are interpreted only by the process executor.
type Actions struct {
	Start   string `yaml:"start,omitempty" json:"start,omitempty"`
	Stop    string `yaml:"stop,omitempty" json:"stop,omitempty"`
	Restart string `yaml:"restart,omitempty" json:"restart,omitempty"`
	PIDFile string `yaml:"pidFile,omitempty" json:"pidFile,omitempty"`
}

// SecurityContext describes the hardening applied when a service is executed.
// The supervisor forwards it to the executor untouched.
type SecurityContext struct {
	NamespaceIsolation bool              `yaml:"namespaceIsolation,omitempty" json:"namespaceIsolation,omitempty"`
	Seccomp            bool              `yaml:"seccomp,omitempty" json:"seccomp,omitempty"`
	SeccompProfile     string            `yaml:"seccompProfile,omitempty" json:"seccompProfile,omitempty"`
	Namespaces         map[string]string `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
}

// Definition declares a service: its identity, dependencies and policy.
type Definition struct {
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled       bool             `yaml:"enabled" json:"enabled"`
	Dependencies  []string         `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Provides      []string         `yaml:"provides,omitempty" json:"provides,omitempty"`
	RunLevels     []string         `yaml:"runLevels,omitempty" json:"runLevels,omitempty"`
	RestartPolicy RestartPolicy    `yaml:"restartPolicy" json:"restartPolicy"`
	Actions       Actions          `yaml:"actions,omitempty" json:"actions,omitempty"`
	Security      *SecurityContext `yaml:"security,omitempty" json:"security,omitempty"`
}

// Validate checks the invariants a definition must satisfy before registration.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	for _, dep := range d.Dependencies {
		if dep == "" {
			return fmt.Errorf("service %s: dependency name cannot be empty", d.Name)
		}
		if dep == d.Name {
			return &api.CircularDependencyError{Members: []string{d.Name}}
		}
	}
	for _, capability := range d.Provides {
		if capability == "" {
			return fmt.Errorf("service %s: provided capability cannot be empty", d.Name)
		}
	}
	return nil
}

// InRunLevel reports whether the service participates in the given run-level.
func (d Definition) InRunLevel(level string) bool {
	return slices.Contains(d.RunLevels, level)
}

// HasRestartAction reports whether a dedicated restart action is declared.
func (d Definition) HasRestartAction() bool {
	return d.Actions.Restart != ""
}

// Clone returns a deep copy so callers cannot mutate registry-owned slices.
func (d Definition) Clone() Definition {
	c := d
	c.Dependencies = slices.Clone(d.Dependencies)
	c.Provides = slices.Clone(d.Provides)
	c.RunLevels = slices.Clone(d.RunLevels)
	if d.Security != nil {
		sec := *d.Security
		if d.Security.Namespaces != nil {
			sec.Namespaces = make(map[string]string, len(d.Security.Namespaces))
			for k, v := range d.Security.Namespaces {
				sec.Namespaces[k] = v
			}
		}
		c.Security = &sec
	}
	return c
}

// Normalized returns a copy with the defaults applied at registration time.
func (d Definition) Normalized() Definition {
	c := d.Clone()
	if len(c.RunLevels) == 0 {
		c.RunLevels = []string{DefaultRunLevel}
	}
	return c
}

// RuntimeState is the mutable per-service record owned by the Registry.
type RuntimeState struct {
	State        api.ServiceState `yaml:"state" json:"state"`
	RestartCount int              `yaml:"restartCount" json:"restartCount"`
	LastError    string           `yaml:"lastError,omitempty" json:"lastError,omitempty"`
	PID          int              `yaml:"pid,omitempty" json:"pid,omitempty"`
	StartedAt    time.Time        `yaml:"startedAt,omitempty" json:"startedAt,omitempty"`
}
