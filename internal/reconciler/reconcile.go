package reconciler

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// Diff computes the changes turning current into desired. Deletes come
// first so a capability can move between providers under the reject
// policy, then creates, then updates; each group is sorted by name.
func Diff(current, desired []services.Definition) []Change {
	have := make(map[string]services.Definition, len(current))
	for _, def := range current {
		have[def.Name] = def
	}
	want := make(map[string]services.Definition, len(desired))
	for _, def := range desired {
		want[def.Name] = def
	}

	var deletes, creates, updates []Change
	for name := range have {
		if _, ok := want[name]; !ok {
			deletes = append(deletes, Change{Operation: OperationDelete, Name: name})
		}
	}
	for name, def := range want {
		old, ok := have[name]
		switch {
		case !ok:
			creates = append(creates, Change{Operation: OperationCreate, Name: name, Definition: def})
		case !reflect.DeepEqual(old.Normalized(), def.Normalized()):
			updates = append(updates, Change{Operation: OperationUpdate, Name: name, Definition: def})
		}
	}

	changes := make([]Change, 0, len(deletes)+len(creates)+len(updates))
	for _, group := range [][]Change{deletes, creates, updates} {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
		changes = append(changes, group...)
	}
	return changes
}

// Apply brings the registry of m in line with desired. Every change is
// attempted; the failures are joined into the returned error. Runtime state
// of updated services is preserved.
func Apply(m ServiceManager, desired []services.Definition) ([]Change, error) {
	changes := Diff(m.Registry().Definitions(), desired)

	var errs []error
	applied := make([]Change, 0, len(changes))
	for _, change := range changes {
		var err error
		switch change.Operation {
		case OperationDelete:
			err = m.UnregisterService(change.Name)
		case OperationCreate:
			err = m.RegisterService(change.Definition)
		case OperationUpdate:
			err = m.UpdateService(change.Definition)
		}
		if err != nil {
			logging.Error("Reconciler", err, "Failed to %s service %s", change.Operation, change.Name)
			errs = append(errs, fmt.Errorf("%s %s: %w", change.Operation, change.Name, err))
			continue
		}
		logging.Debug("Reconciler", "Applied %s for service %s", change.Operation, change.Name)
		applied = append(applied, change)
	}
	return applied, errors.Join(errs...)
}
