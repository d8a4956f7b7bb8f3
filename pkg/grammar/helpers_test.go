package grammar_test

import (
	"context"
	"testing"

	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/text"
)

// bareEntity has no alias support.
type bareEntity struct {
	name, label, kind string
	groups            []string
}

func (b *bareEntity) Name() string                          { return b.name }
func (b *bareEntity) Label() string                         { return b.label }
func (b *bareEntity) Kind() string                          { return b.kind }
func (b *bareEntity) GroupNames() []string                  { return b.groups }
func (b *bareEntity) SendCommand(context.Context, any) error { return nil }

func item(name, label string) domain.ItemSpec {
	return domain.ItemSpec{Name: name, Label: label, Kind: "Switch"}
}

func group(name, label string, parents ...string) domain.ItemSpec {
	return domain.ItemSpec{Name: name, Label: label, Kind: domain.KindGroup, Groups: parents}
}

func registry(specs ...domain.ItemSpec) *memory.Registry {
	return memory.NewRegistryFromSpecs(specs, nil)
}

func evaluate(t *testing.T, reg *memory.Registry, expr grammar.Expression, utterance string) grammar.Result {
	t.Helper()
	return grammar.NewEvaluator(reg).Evaluate(expr, text.Tokens(utterance))
}

func names(p *domain.Parameter) []string {
	return p.EntityNames()
}

func entityNames(es []domain.Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name())
	}
	return out
}
