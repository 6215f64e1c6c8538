package services

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"rcinit/internal/api"
	"rcinit/pkg/logging"
)

// Registry owns every service definition, its runtime state and the virtual
// capability table. It is the single source of truth shared by the resolver,
// the orchestrator and the run-level controller.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
	states      map[string]*RuntimeState
	virtual     *VirtualTable
}

// Option configures a Registry.
type Option func(*Registry)

// WithConflictPolicy selects how capability collisions are handled.
func WithConflictPolicy(policy ConflictPolicy) Option {
	return func(r *Registry) {
		r.virtual = NewVirtualTable(policy)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		definitions: make(map[string]*Definition),
		states:      make(map[string]*RuntimeState),
		virtual:     NewVirtualTable(LastWriteWins),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a definition and its Inactive runtime state.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	def = def.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Name]; exists {
		return &api.AlreadyRegisteredError{Name: def.Name}
	}
	if err := r.virtual.check(def.Name, def.Provides); err != nil {
		return err
	}

	r.definitions[def.Name] = &def
	r.states[def.Name] = &RuntimeState{State: api.StateInactive}
	r.virtual.set(def.Name, def.Provides)

	logging.Debug("Registry", "Registered service %s (run-levels: %v, provides: %v)", def.Name, def.RunLevels, def.Provides)
	return nil
}

// Update replaces the definition of an already registered service while
// keeping its runtime state. Capabilities the service already provided stay
// with whichever provider registered them last.
func (r *Registry) Update(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	def = def.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.definitions[def.Name]
	if !exists {
		return api.NewServiceNotFoundError(def.Name)
	}
	if err := r.virtual.check(def.Name, def.Provides); err != nil {
		return err
	}

	r.virtual.update(def.Name, previous.Provides, def.Provides)
	r.definitions[def.Name] = &def

	logging.Debug("Registry", "Updated service definition %s", def.Name)
	return nil
}

// Unregister removes a service. It fails when an enabled, running service
// depends on it directly or through a capability it provides.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; !exists {
		return api.NewServiceNotFoundError(name)
	}

	for _, dependent := range r.dependentsLocked(name) {
		def := r.definitions[dependent]
		if def.Enabled && r.states[dependent].State == api.StateRunning {
			return &api.DependentActiveError{Service: name, Dependent: dependent}
		}
	}

	delete(r.definitions, name)
	delete(r.states, name)
	r.virtual.removeProvider(name)

	logging.Debug("Registry", "Unregistered service %s", name)
	return nil
}

// Enable marks a service for automatic startup and adds the run-level to its
// run-levels when missing.
func (r *Registry) Enable(name, runLevel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, exists := r.definitions[name]
	if !exists {
		return api.NewServiceNotFoundError(name)
	}
	def.Enabled = true
	if runLevel != "" && !slices.Contains(def.RunLevels, runLevel) {
		def.RunLevels = append(def.RunLevels, runLevel)
	}
	return nil
}

// Disable removes a service from automatic startup. Direct start requests
// are unaffected.
func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, exists := r.definitions[name]
	if !exists {
		return api.NewServiceNotFoundError(name)
	}
	def.Enabled = false
	return nil
}

// Definition returns a copy of the named definition.
func (r *Registry) Definition(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[name]
	if !exists {
		return Definition{}, api.NewServiceNotFoundError(name)
	}
	return def.Clone(), nil
}

// Definitions returns copies of all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def.Clone())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Has reports whether a service is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.definitions[name]
	return exists
}

// List returns all service names sorted for display.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State returns a copy of the runtime state of a service.
func (r *Registry) State(name string) (RuntimeState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[name]
	if !exists {
		return RuntimeState{}, api.NewServiceNotFoundError(name)
	}
	return *state, nil
}

// Transition moves a service to a new state, applying mutate to the runtime
// state under the registry lock. Transitions not allowed by the lifecycle
// state machine are rejected with an InvalidTransitionError and leave the
// state untouched. The previous state is returned.
func (r *Registry) Transition(name string, to api.ServiceState, mutate func(*RuntimeState)) (api.ServiceState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.states[name]
	if !exists {
		return api.StateInactive, api.NewServiceNotFoundError(name)
	}
	from := state.State
	if !api.CanTransition(from, to) {
		return from, &api.InvalidTransitionError{Service: name, From: from, To: to}
	}
	state.State = to
	if mutate != nil {
		mutate(state)
	}
	return from, nil
}

// UpdateState applies mutate to the runtime state without changing the
// lifecycle state.
func (r *Registry) UpdateState(name string, mutate func(*RuntimeState)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.states[name]
	if !exists {
		return api.NewServiceNotFoundError(name)
	}
	current := state.State
	mutate(state)
	state.State = current
	return nil
}

// ResolveName maps a dependency or capability name to a concrete service name.
func (r *Registry) ResolveName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.virtual.Resolve(name)
}

// DependenciesOf returns the resolved, de-duplicated dependencies of a
// service in declaration order.
func (r *Registry) DependenciesOf(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[name]
	if !exists {
		return nil, api.NewServiceNotFoundError(name)
	}
	return resolveDependencies(def, r.virtual), nil
}

// Dependents returns, sorted, every other service whose resolved dependencies
// include name.
func (r *Registry) Dependents(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dependentsLocked(name)
}

func (r *Registry) dependentsLocked(name string) []string {
	var dependents []string
	for other, def := range r.definitions {
		if other == name {
			continue
		}
		if slices.Contains(resolveDependencies(def, r.virtual), name) {
			dependents = append(dependents, other)
		}
	}
	sort.Strings(dependents)
	return dependents
}

// VirtualEntries returns a copy of the capability table.
func (r *Registry) VirtualEntries() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.virtual.Entries()
}

// Replace swaps the whole content of the registry for defs, resetting all
// runtime state. It is used when loading persisted definitions.
func (r *Registry) Replace(defs []Definition) error {
	fresh := NewRegistry(WithConflictPolicy(r.conflictPolicy()))
	for _, def := range defs {
		if err := fresh.Register(def); err != nil {
			return fmt.Errorf("failed to load service %s: %w", def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions = fresh.definitions
	r.states = fresh.states
	r.virtual = fresh.virtual
	return nil
}

func (r *Registry) conflictPolicy() ConflictPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.virtual.Policy()
}

// Snapshot returns a consistent copy of definitions, capability mappings and
// current states, taken under a single read lock.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &Snapshot{
		Definitions: make(map[string]Definition, len(r.definitions)),
		Virtual:     r.virtual.Entries(),
		States:      make(map[string]api.ServiceState, len(r.states)),
	}
	for name, def := range r.definitions {
		snap.Definitions[name] = def.Clone()
	}
	for name, state := range r.states {
		snap.States[name] = state.State
	}
	return snap
}

func resolveDependencies(def *Definition, virtual *VirtualTable) []string {
	resolved := make([]string, 0, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		name := virtual.Resolve(dep)
		if !slices.Contains(resolved, name) {
			resolved = append(resolved, name)
		}
	}
	return resolved
}

// Snapshot is an immutable view of the registry used for resolution.
type Snapshot struct {
	Definitions map[string]Definition
	Virtual     map[string]string
	States      map[string]api.ServiceState
}

// Resolve maps a dependency name through the captured capability table.
func (s *Snapshot) Resolve(name string) string {
	if provider, ok := s.Virtual[name]; ok {
		return provider
	}
	return name
}

// DependenciesOf returns the resolved, de-duplicated dependencies of name.
func (s *Snapshot) DependenciesOf(name string) []string {
	def, ok := s.Definitions[name]
	if !ok {
		return nil
	}
	resolved := make([]string, 0, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		target := s.Resolve(dep)
		if !slices.Contains(resolved, target) {
			resolved = append(resolved, target)
		}
	}
	return resolved
}

// Names returns the captured service names sorted.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Definitions))
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
