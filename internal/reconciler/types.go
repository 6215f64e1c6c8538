package reconciler

import (
	"rcinit/internal/services"
)

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new service definition appeared.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing definition was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a definition was removed.
	OperationDelete ChangeOperation = "Delete"
)

// Change is a single difference between the registry and the definitions
// file.
type Change struct {
	Operation ChangeOperation
	Name      string
	// Definition is the desired definition; empty for deletes.
	Definition services.Definition
}

// ServiceManager applies registry mutations.
// *orchestrator.Orchestrator implements it.
type ServiceManager interface {
	Registry() *services.Registry
	RegisterService(def services.Definition) error
	UpdateService(def services.Definition) error
	UnregisterService(name string) error
}

// ReloadObserver records reload outcomes. *metrics.Recorder implements it.
type ReloadObserver interface {
	ObserveReload(err error)
}
