package runlevel

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation names a bulk operation.
type Operation string

const (
	OperationSwitch       Operation = "switch"
	OperationStartEnabled Operation = "start-enabled"
	OperationShutdown     Operation = "shutdown"
)

// Status is the outcome of one service within a bulk operation.
type Status string

const (
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusNotAttempted Status = "not-attempted"
)

// Outcome records what happened to one service.
type Outcome struct {
	Service string `json:"service" yaml:"service"`
	Status  Status `json:"status" yaml:"status"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// Result is the aggregated outcome of a bulk operation. Every service of
// Order has exactly one Outcome, in the same order.
type Result struct {
	ID         string    `json:"id" yaml:"id"`
	Operation  Operation `json:"operation" yaml:"operation"`
	RunLevel   string    `json:"runLevel" yaml:"runLevel"`
	Order      []string  `json:"order" yaml:"order"`
	Outcomes   []Outcome `json:"outcomes" yaml:"outcomes"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
}

func newResult(op Operation, runLevel string, order []string) *Result {
	outcomes := make([]Outcome, len(order))
	for i, name := range order {
		outcomes[i] = Outcome{Service: name, Status: StatusNotAttempted}
	}
	return &Result{
		ID:        uuid.NewString(),
		Operation: op,
		RunLevel:  runLevel,
		Order:     order,
		Outcomes:  outcomes,
		StartedAt: time.Now(),
	}
}

// record stores the outcome of the service at position i.
func (r *Result) record(i int, err error) {
	if err != nil {
		r.Outcomes[i].Status = StatusFailed
		r.Outcomes[i].Err = err
		r.Outcomes[i].Error = err.Error()
		return
	}
	r.Outcomes[i].Status = StatusCompleted
}

func (r *Result) finish() {
	r.FinishedAt = time.Now()
}

func (r *Result) withStatus(status Status) []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Status == status {
			names = append(names, o.Service)
		}
	}
	return names
}

// Completed returns the services whose transition succeeded.
func (r *Result) Completed() []string { return r.withStatus(StatusCompleted) }

// Failed returns the services whose transition failed.
func (r *Result) Failed() []string { return r.withStatus(StatusFailed) }

// NotAttempted returns the services skipped because the operation was cancelled.
func (r *Result) NotAttempted() []string { return r.withStatus(StatusNotAttempted) }

// Outcome returns the outcome of a single service.
func (r *Result) Outcome(service string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Service == service {
			return o, true
		}
	}
	return Outcome{}, false
}

// Err returns nil when no service failed, otherwise a *BulkError.
func (r *Result) Err() error {
	berr := &BulkError{Operation: r.Operation, RunLevel: r.RunLevel}
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			berr.Add(&ServiceError{Service: o.Service, Err: o.Err})
		}
	}
	return berr.Err()
}

// ServiceError ties a failure to the service it happened on.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// BulkError aggregates the per-service failures of a bulk operation.
type BulkError struct {
	Operation Operation
	RunLevel  string
	Errors    []error
}

// Error returns a summary of the accumulated errors
func (b *BulkError) Error() string {
	prefix := fmt.Sprintf("%s %s", b.Operation, b.RunLevel)
	switch len(b.Errors) {
	case 0:
		return prefix + ": no errors"
	case 1:
		return fmt.Sprintf("%s: %v", prefix, b.Errors[0])
	default:
		return fmt.Sprintf("%s: %d services failed: %v", prefix, len(b.Errors), errors.Join(b.Errors...))
	}
}

// Add appends an error to the collection if it's not nil
func (b *BulkError) Add(err error) {
	if err != nil {
		b.Errors = append(b.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the BulkError itself
func (b *BulkError) Err() error {
	if len(b.Errors) == 0 {
		return nil
	}
	return b
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (b *BulkError) Unwrap() []error {
	return b.Errors
}
