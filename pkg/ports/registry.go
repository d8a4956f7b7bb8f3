package ports

import (
	"context"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Registry gives the interpreter access to the known entities.
// Lookups are served from memory; loading happens through an ItemSource.
type Registry interface {
	// AllEntities returns every entity in a stable order.
	AllEntities() []domain.Entity

	// EntitiesByTags returns the entities carrying every given tag.
	EntitiesByTags(tags ...string) []domain.Entity

	// EntityByName returns the entity with the given name.
	EntityByName(name string) (domain.Entity, bool)
}

// ItemSource loads item definitions, e.g. from a YAML file or a REST backend.
type ItemSource interface {
	LoadItems(ctx context.Context) ([]domain.ItemSpec, error)
}

// Watchable is implemented by item sources that can signal changes.
// The channel carries the name of the changed resource and is closed when
// ctx is done.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}
