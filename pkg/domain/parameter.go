package domain

import "encoding/json"

// Parameter is the argument handed to an action once a rule matched.
// Entities keeps order and duplicates: an entity listed twice receives the
// command twice.
type Parameter struct {
	Entities []Entity
	Values   map[string]any
}

// WithEntities returns a copy of p with es appended. A nil p is treated as empty.
func (p *Parameter) WithEntities(es ...Entity) *Parameter {
	return MergeParameters(p, &Parameter{Entities: es})
}

// EntityNames lists the names of the collected entities in order.
func (p *Parameter) EntityNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Entities))
	for _, e := range p.Entities {
		names = append(names, e.Name())
	}
	return names
}

// MergeParameters combines the parameters of two sibling expressions.
// If either side is nil the other is returned. Otherwise the entity lists are
// concatenated and every value of b overwrites the same key of a.
func MergeParameters(a, b *Parameter) *Parameter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	merged := &Parameter{
		Entities: make([]Entity, 0, len(a.Entities)+len(b.Entities)),
	}
	merged.Entities = append(merged.Entities, a.Entities...)
	merged.Entities = append(merged.Entities, b.Entities...)

	if len(a.Values) > 0 || len(b.Values) > 0 {
		merged.Values = make(map[string]any, len(a.Values)+len(b.Values))
		for k, v := range a.Values {
			merged.Values[k] = v
		}
		for k, v := range b.Values {
			merged.Values[k] = v
		}
	}
	return merged
}

// MarshalJSON renders entities by name.
func (p *Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Entities []string       `json:"entities"`
		Values   map[string]any `json:"values,omitempty"`
	}{
		Entities: p.EntityNames(),
		Values:   p.Values,
	})
}
