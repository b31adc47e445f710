package operations

import (
	"fmt"
	"slices"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // registration order
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, fmt.Errorf("step with ID %s not found", id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// GetDependencyOrder returns steps ordered by dependencies. Steps that become
// ready at the same time keep their registration order.
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dependents := make(map[string][]string, len(r.steps))
	inDegree := make(map[string]int, len(r.steps))

	for _, id := range r.order {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, NewDependencyError(id, dep, fmt.Sprintf("depends on unregistered step %s", dep))
			}
			dependents[dep] = append(dependents[dep], id)
			inDegree[id]++
		}
	}

	// Kahn's algorithm; the ready set is rescanned in registration order
	done := make(map[string]bool, len(r.steps))
	ordered := make([]Step, 0, len(r.steps))
	for len(ordered) < len(r.steps) {
		progressed := false
		for _, id := range r.order {
			if done[id] || inDegree[id] > 0 {
				continue
			}
			done[id] = true
			ordered = append(ordered, r.steps[id])
			for _, d := range dependents[id] {
				inDegree[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, NewFatalError("dependency cycle detected", nil)
		}
	}

	return ordered, nil
}

// ValidateDependencies checks that every dependency exists and there are no cycles
func (r *Registry) ValidateDependencies() error {
	_, err := r.GetDependencyOrder()
	return err
}
