package orchestrator

import (
	"time"

	"rcinit/internal/api"
	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// ServiceStatus represents the status of a service.
type ServiceStatus struct {
	Name         string           `json:"name" yaml:"name"`
	State        api.ServiceState `json:"state" yaml:"state"`
	Enabled      bool             `json:"enabled" yaml:"enabled"`
	RunLevels    []string         `json:"runLevels,omitempty" yaml:"runLevels,omitempty"`
	Dependencies []string         `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Provides     []string         `json:"provides,omitempty" yaml:"provides,omitempty"`
	RestartCount int              `json:"restartCount" yaml:"restartCount"`
	LastError    string           `json:"lastError,omitempty" yaml:"lastError,omitempty"`
	PID          int              `json:"pid,omitempty" yaml:"pid,omitempty"`
	StartedAt    time.Time        `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	Uptime       time.Duration    `json:"uptime,omitempty" yaml:"uptime,omitempty"`
}

// GetStatus returns the status of a specific service.
func (o *Orchestrator) GetStatus(name string) (ServiceStatus, error) {
	def, err := o.registry.Definition(name)
	if err != nil {
		return ServiceStatus{}, err
	}
	state, err := o.registry.State(name)
	if err != nil {
		return ServiceStatus{}, err
	}

	status := ServiceStatus{
		Name:         name,
		State:        state.State,
		Enabled:      def.Enabled,
		RunLevels:    def.RunLevels,
		Dependencies: def.Dependencies,
		Provides:     def.Provides,
		RestartCount: state.RestartCount,
		LastError:    state.LastError,
		PID:          state.PID,
		StartedAt:    state.StartedAt,
	}
	if state.State == api.StateRunning && !state.StartedAt.IsZero() {
		status.Uptime = o.clock.Now().Sub(state.StartedAt)
	}
	return status, nil
}

// ListServices returns every registered service name, sorted.
func (o *Orchestrator) ListServices() []string {
	return o.registry.List()
}

// GetAllServices returns the status of every service, sorted by name.
func (o *Orchestrator) GetAllServices() []ServiceStatus {
	names := o.registry.List()
	statuses := make([]ServiceStatus, 0, len(names))
	for _, name := range names {
		status, err := o.GetStatus(name)
		if err != nil {
			// Unregistered since List.
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// RegisterService adds a service definition to the registry.
func (o *Orchestrator) RegisterService(def services.Definition) error {
	if err := o.registry.Register(def); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Registered service: %s", def.Name)
	return nil
}

// UpdateService replaces the definition of a registered service. The new
// definition takes effect on the next start.
func (o *Orchestrator) UpdateService(def services.Definition) error {
	if err := o.registry.Update(def); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Updated service: %s", def.Name)
	return nil
}

// UnregisterService removes a service and cancels its pending restarts.
func (o *Orchestrator) UnregisterService(name string) error {
	if err := o.registry.Unregister(name); err != nil {
		return err
	}
	o.cancelRecovery(name)
	logging.Info("Orchestrator", "Unregistered service: %s", name)
	return nil
}

// EnableService marks a service for automatic startup in runLevel.
func (o *Orchestrator) EnableService(name, runLevel string) error {
	if err := o.registry.Enable(name, runLevel); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Enabled service %s for run-level %s", name, runLevel)
	return nil
}

// DisableService removes a service from automatic startup.
func (o *Orchestrator) DisableService(name string) error {
	if err := o.registry.Disable(name); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Disabled service: %s", name)
	return nil
}
