package app

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"rcinit/internal/api"
	"rcinit/internal/orchestrator"
	"rcinit/pkg/logging"
)

// StatusReport is the runtime view of the supervised services. A booted
// rcinit keeps it current in the status file for the status command.
type StatusReport struct {
	RunLevel  string                       `json:"runLevel" yaml:"runLevel"`
	UpdatedAt time.Time                    `json:"updatedAt" yaml:"updatedAt"`
	Services  []orchestrator.ServiceStatus `json:"services" yaml:"services"`
}

// Service returns the status of a single service.
func (r *StatusReport) Service(name string) (orchestrator.ServiceStatus, error) {
	for _, status := range r.Services {
		if status.Name == name {
			return status, nil
		}
	}
	return orchestrator.ServiceStatus{}, api.NewServiceNotFoundError(name)
}

// refreshUptime recomputes the uptime of running services at now.
func (r *StatusReport) refreshUptime(now time.Time) {
	for i := range r.Services {
		status := &r.Services[i]
		if status.State == api.StateRunning && !status.StartedAt.IsZero() {
			status.Uptime = now.Sub(status.StartedAt)
		}
	}
}

// LiveStatus returns the status held by this process.
func (s *Services) LiveStatus() *StatusReport {
	return &StatusReport{
		RunLevel:  s.Controller.CurrentRunlevel(),
		UpdatedAt: time.Now(),
		Services:  s.Orchestrator.GetAllServices(),
	}
}

// WriteStatus replaces the status file with the live status.
func (s *Services) WriteStatus() error {
	data, err := yaml.Marshal(s.LiveStatus())
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	return s.Storage.WriteFile(s.StatusFile, data)
}

// ReadStatus loads the status file written by a booted rcinit. A missing
// file is reported with an error wrapping config.ErrNotExist.
func (s *Services) ReadStatus() (*StatusReport, error) {
	data, err := s.Storage.ReadFile(s.StatusFile)
	if err != nil {
		return nil, err
	}
	var report StatusReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse status file %s: %w", s.Storage.Path(s.StatusFile), err)
	}
	report.refreshUptime(time.Now())
	return &report, nil
}

// writeStatus logs instead of failing: supervision continues without a
// status file.
func (s *Services) writeStatus() {
	if err := s.WriteStatus(); err != nil {
		logging.Warn("Status", "Failed to write status file: %v", err)
	}
}
