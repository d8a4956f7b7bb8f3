package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Registry manages the named callback actions that grammar files can refer to.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]domain.Callback
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]domain.Callback),
	}
}

// Register adds a callback to the registry.
// If a callback with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Action looks up a callback by name and wraps it as an action.
func (r *Registry) Action(name string) (*domain.Action, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("action %q: %w", name, domain.ErrUnknownAction)
	}
	return domain.NewCallback(name, fn), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
