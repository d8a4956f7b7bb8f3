package grammar

import (
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// IsDescendantOf reports whether e is a direct or transitive member of the
// group named group. Memberships are resolved by name through reg and the walk
// tolerates cycles. A group is not its own descendant unless a membership
// cycle leads back to it.
func IsDescendantOf(reg ports.Registry, e domain.Entity, group string) bool {
	visited := make(map[string]struct{})
	pending := append([]string(nil), e.GroupNames()...)

	for len(pending) > 0 {
		name := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if _, seen := visited[name]; seen {
			continue
		}
		visited[name] = struct{}{}

		if name == group {
			return true
		}
		parent, ok := reg.EntityByName(name)
		if !ok {
			continue
		}
		pending = append(pending, parent.GroupNames()...)
	}
	return false
}
