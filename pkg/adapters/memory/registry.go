package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// Registry implements ports.Registry in memory.
// Safe for concurrent use; Replace swaps the whole snapshot.
type Registry struct {
	mu       sync.RWMutex
	entities []domain.Entity
	byName   map[string]domain.Entity
}

// NewRegistry creates a registry holding entities.
func NewRegistry(entities ...domain.Entity) *Registry {
	r := &Registry{}
	r.Replace(entities)
	return r
}

// NewRegistryFromSpecs creates a registry of items sending to sink.
func NewRegistryFromSpecs(specs []domain.ItemSpec, sink domain.CommandSink) *Registry {
	return NewRegistry(Items(specs, sink)...)
}

// Items builds entities from specs.
func Items(specs []domain.ItemSpec, sink domain.CommandSink) []domain.Entity {
	entities := make([]domain.Entity, 0, len(specs))
	for _, spec := range specs {
		entities = append(entities, domain.NewItem(spec, sink))
	}
	return entities
}

// Replace swaps the content of the registry.
func (r *Registry) Replace(entities []domain.Entity) {
	byName := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name()] = e
	}
	copied := append([]domain.Entity(nil), entities...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = copied
	r.byName = byName
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// AllEntities returns every entity in insertion order.
func (r *Registry) AllEntities() []domain.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Entity(nil), r.entities...)
}

// EntitiesByTags returns the entities carrying every tag.
// Entities that do not expose tags never match.
func (r *Registry) EntitiesByTags(tags ...string) []domain.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Entity
	for _, e := range r.entities {
		tagged, ok := e.(interface{ HasTag(string) bool })
		if !ok {
			continue
		}
		all := true
		for _, tag := range tags {
			if !tagged.HasTag(tag) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}

// EntityByName returns the entity with the given name.
func (r *Registry) EntityByName(name string) (domain.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// Load replaces the content of the registry with the items of src.
// On error the previous content is kept.
func (r *Registry) Load(ctx context.Context, src ports.ItemSource, sink domain.CommandSink) (int, error) {
	specs, err := src.LoadItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load items: %w", err)
	}
	r.Replace(Items(specs, sink))
	return len(specs), nil
}
