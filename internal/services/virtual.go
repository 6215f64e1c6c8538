package services

import (
	"fmt"
	"slices"

	"rcinit/internal/api"
)

// ConflictPolicy decides what happens when two services provide the same capability.
type ConflictPolicy string

const (
	// LastWriteWins lets the most recently registered provider take over the
	// capability; earlier providers become unreachable through it.
	LastWriteWins ConflictPolicy = "lastWriteWins"
	// RejectConflicts refuses the registration of a second provider.
	RejectConflicts ConflictPolicy = "reject"
)

// ParseConflictPolicy converts a configuration value into a ConflictPolicy.
// An empty value selects LastWriteWins.
func ParseConflictPolicy(value string) (ConflictPolicy, error) {
	switch ConflictPolicy(value) {
	case "", LastWriteWins:
		return LastWriteWins, nil
	case RejectConflicts:
		return RejectConflicts, nil
	default:
		return "", fmt.Errorf("unknown virtual conflict policy %q (expected %s or %s)", value, LastWriteWins, RejectConflicts)
	}
}

// VirtualTable maps capability names (e.g. "net") to the service providing them.
//
// It is not safe for concurrent use on its own; the Registry serialises access.
type VirtualTable struct {
	policy    ConflictPolicy
	providers map[string]string
}

// NewVirtualTable returns an empty table using the given conflict policy.
func NewVirtualTable(policy ConflictPolicy) *VirtualTable {
	if policy == "" {
		policy = LastWriteWins
	}
	return &VirtualTable{
		policy:    policy,
		providers: make(map[string]string),
	}
}

// Policy returns the conflict policy of the table.
func (t *VirtualTable) Policy() ConflictPolicy {
	return t.policy
}

// check verifies that provider may claim every capability in caps.
func (t *VirtualTable) check(provider string, caps []string) error {
	if t.policy != RejectConflicts {
		return nil
	}
	for _, capability := range caps {
		if existing, ok := t.providers[capability]; ok && existing != provider {
			return &api.VirtualConflictError{Capability: capability, Provider: provider, Existing: existing}
		}
	}
	return nil
}

// set records provider as the active provider of every capability in caps.
func (t *VirtualTable) set(provider string, caps []string) {
	for _, capability := range caps {
		t.providers[capability] = provider
	}
}

// update moves provider from the capabilities in before to those in after.
// Capabilities newly listed in after are claimed as by set. Capabilities
// listed in both are only reclaimed when no other provider took them over
// since, so re-applying an unchanged definition never overrides a later
// registration.
func (t *VirtualTable) update(provider string, before, after []string) {
	for _, capability := range before {
		if !slices.Contains(after, capability) && t.providers[capability] == provider {
			delete(t.providers, capability)
		}
	}
	for _, capability := range after {
		current, taken := t.providers[capability]
		if slices.Contains(before, capability) && taken && current != provider {
			continue
		}
		t.providers[capability] = provider
	}
}

// removeProvider drops every mapping that points at provider.
func (t *VirtualTable) removeProvider(provider string) {
	for capability, p := range t.providers {
		if p == provider {
			delete(t.providers, capability)
		}
	}
}

// Lookup returns the active provider of a capability.
func (t *VirtualTable) Lookup(capability string) (string, bool) {
	provider, ok := t.providers[capability]
	return provider, ok
}

// Resolve maps a dependency name to a concrete service name, falling back to
// the literal name when no capability of that name exists.
func (t *VirtualTable) Resolve(name string) string {
	if provider, ok := t.providers[name]; ok {
		return provider
	}
	return name
}

// Entries returns a copy of the capability mapping.
func (t *VirtualTable) Entries() map[string]string {
	out := make(map[string]string, len(t.providers))
	for k, v := range t.providers {
		out[k] = v
	}
	return out
}
