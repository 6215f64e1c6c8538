package api

import (
	"fmt"
	"strings"
)

// ServiceState represents the lifecycle state of a supervised service.
//
// The set of states is closed: values outside the declared constants are
// rejected by ParseServiceState and by every transition check.
type ServiceState int

const (
	StateInactive ServiceState = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

var stateNames = map[ServiceState]string{
	StateInactive: "inactive",
	StateStarting: "starting",
	StateRunning:  "running",
	StateStopping: "stopping",
	StateStopped:  "stopped",
	StateFailed:   "failed",
}

// String makes ServiceState satisfy the fmt.Stringer interface.
func (s ServiceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Valid reports whether s is one of the declared states.
func (s ServiceState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// ParseServiceState converts a state name back into a ServiceState.
func ParseServiceState(name string) (ServiceState, error) {
	for state, n := range stateNames {
		if strings.EqualFold(n, name) {
			return state, nil
		}
	}
	return StateInactive, fmt.Errorf("unknown service state %q", name)
}

// MarshalText encodes the state by name for YAML and JSON output.
func (s ServiceState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown service state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *ServiceState) UnmarshalText(text []byte) error {
	state, err := ParseServiceState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// allowedTransitions lists, for every state, the states it may move to.
//
//	Inactive, Stopped, Failed -> Starting
//	Starting -> Running | Failed
//	Running  -> Stopping | Starting (dedicated restart action)
//	Stopping -> Stopped | Failed
//	Failed   -> Stopping
var allowedTransitions = map[ServiceState][]ServiceState{
	StateInactive: {StateStarting},
	StateStarting: {StateRunning, StateFailed},
	StateRunning:  {StateStopping, StateStarting},
	StateStopping: {StateStopped, StateFailed},
	StateStopped:  {StateStarting},
	StateFailed:   {StateStarting, StateStopping},
}

// CanTransition reports whether a service may move from one state to another.
func CanTransition(from, to ServiceState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
