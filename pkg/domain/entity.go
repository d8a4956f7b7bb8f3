package domain

import (
	"context"
	"fmt"
	"strings"
)

// Entity is an addressable automation object.
// Group membership is expressed by name only and may be cyclic.
type Entity interface {
	Name() string
	Label() string
	Kind() string
	GroupNames() []string
	SendCommand(ctx context.Context, payload any) error
}

// AliasProvider is implemented by entities that expose aliases.
// The raw value is a comma separated list.
type AliasProvider interface {
	Alias(namespace string) (string, bool)
}

// IsGroup reports whether e can contain other entities.
func IsGroup(e Entity) bool {
	return e.Kind() == KindGroup
}

// Command is a single payload addressed to one entity.
type Command struct {
	Target  string `json:"target"`
	Payload any    `json:"payload"`
}

// CommandSink delivers commands to the automation backend.
type CommandSink interface {
	Send(ctx context.Context, cmd Command) error
}

// ItemSpec is the declarative description of an item, as found in item files
// or returned by a backend.
type ItemSpec struct {
	Name     string            `json:"name" yaml:"name" mapstructure:"name"`
	Label    string            `json:"label" yaml:"label" mapstructure:"label"`
	Kind     string            `json:"kind" yaml:"kind" mapstructure:"kind"`
	Tags     []string          `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`
	Groups   []string          `json:"groups,omitempty" yaml:"groups,omitempty" mapstructure:"groups"`
	Aliases  []string          `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}

// Item is the Entity implementation used by every registry.
type Item struct {
	spec ItemSpec
	sink CommandSink
}

// NewItem creates an item that sends its commands to sink.
func NewItem(spec ItemSpec, sink CommandSink) *Item {
	return &Item{spec: spec, sink: sink}
}

func (i *Item) Name() string         { return i.spec.Name }
func (i *Item) Label() string        { return i.spec.Label }
func (i *Item) Kind() string         { return i.spec.Kind }
func (i *Item) GroupNames() []string { return i.spec.Groups }
func (i *Item) Tags() []string       { return i.spec.Tags }

// Spec returns the declarative description of the item.
func (i *Item) Spec() ItemSpec { return i.spec }

// Alias returns the raw alias list of the given namespace.
// Aliases declared in the ItemSpec belong to AliasNamespace.
func (i *Item) Alias(namespace string) (string, bool) {
	if namespace == AliasNamespace && len(i.spec.Aliases) > 0 {
		return strings.Join(i.spec.Aliases, ","), true
	}
	v, ok := i.spec.Metadata[namespace]
	return v, ok && v != ""
}

// HasTag reports whether the item carries tag (case-sensitive, like the backend).
func (i *Item) HasTag(tag string) bool {
	for _, t := range i.spec.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SendCommand forwards payload to the item's sink.
func (i *Item) SendCommand(ctx context.Context, payload any) error {
	if i.sink == nil {
		return fmt.Errorf("item %s: %w", i.spec.Name, ErrNoSink)
	}
	return i.sink.Send(ctx, Command{Target: i.spec.Name, Payload: payload})
}

func (i *Item) String() string {
	return i.spec.Name
}
