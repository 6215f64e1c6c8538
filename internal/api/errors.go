package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError represents a resource not found error with contextual information.
// It is returned for every operation that references an unregistered service and
// is never retried internally.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "service", "run-level")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	if _, err := registry.Definition("sshd"); api.IsNotFound(err) {
//	    return fmt.Errorf("sshd is not installed")
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewServiceNotFoundError creates a service not found error.
func NewServiceNotFoundError(name string) *NotFoundError {
	return NewNotFoundError("service", name)
}

// AlreadyRegisteredError is returned when a definition reuses an existing name.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("service %s already registered", e.Name)
}

// CircularDependencyError reports a dependency cycle detected either while
// resolving a run-level order or while cascading a start request.
//
// Members lists the services forming the cycle in dependency order. It is
// fatal to the requested operation only.
type CircularDependencyError struct {
	Members []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Members) == 0 {
		return "circular dependency detected"
	}
	path := append(append([]string{}, e.Members...), e.Members[0])
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(path, " -> "))
}

// IsCircularDependency reports whether err is or wraps a CircularDependencyError.
func IsCircularDependency(err error) bool {
	var cycleErr *CircularDependencyError
	return errors.As(err, &cycleErr)
}

// DependencyStartFailedError wraps the failure of a cascaded dependency start.
// The chain of causes unwraps down to the error of the service that failed first.
type DependencyStartFailedError struct {
	Service    string
	Dependency string
	Cause      error
}

func (e *DependencyStartFailedError) Error() string {
	return fmt.Sprintf("service %s: dependency %s failed to start: %v", e.Service, e.Dependency, e.Cause)
}

func (e *DependencyStartFailedError) Unwrap() error {
	return e.Cause
}

// IsDependencyStartFailed reports whether err is or wraps a DependencyStartFailedError.
func IsDependencyStartFailed(err error) bool {
	var depErr *DependencyStartFailedError
	return errors.As(err, &depErr)
}

// DependentActiveError is returned when a stop or unregister is refused because
// another running service depends on the target. The target is left unchanged.
type DependentActiveError struct {
	Service   string
	Dependent string
}

func (e *DependentActiveError) Error() string {
	return fmt.Sprintf("cannot stop %s: %s depends on it and is running", e.Service, e.Dependent)
}

// IsDependentActive reports whether err is or wraps a DependentActiveError.
func IsDependentActive(err error) bool {
	var activeErr *DependentActiveError
	return errors.As(err, &activeErr)
}

// ExecutorError reports a failed start, stop or restart action.
type ExecutorError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExecutorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Service, e.Err)
}

func (e *ExecutorError) Unwrap() error {
	return e.Err
}

// IsExecutorFailure reports whether err is or wraps an ExecutorError.
func IsExecutorFailure(err error) bool {
	var execErr *ExecutorError
	return errors.As(err, &execErr)
}

// TimeoutError is returned when an executor call exceeds its configured timeout.
// It unwraps to context.DeadlineExceeded.
type TimeoutError struct {
	Service string
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Op, e.Service, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// InvalidTransitionError is returned when a state change is not permitted by
// the lifecycle state machine.
type InvalidTransitionError struct {
	Service string
	From    ServiceState
	To      ServiceState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("service %s: invalid transition %s -> %s", e.Service, e.From, e.To)
}

// VirtualConflictError is returned, under the reject conflict policy, when a
// second service declares a capability that already has a provider.
type VirtualConflictError struct {
	Capability string
	Provider   string
	Existing   string
}

func (e *VirtualConflictError) Error() string {
	return fmt.Sprintf("service %s cannot provide %s: already provided by %s", e.Provider, e.Capability, e.Existing)
}
