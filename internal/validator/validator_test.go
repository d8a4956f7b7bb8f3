package validator

import (
	"strings"
	"testing"

	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/domain"
	g "github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/JanMattner/cuevox/pkg/rulesets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtin(t *testing.T, lang string) []runtime.Rule {
	t.Helper()
	set, err := rulesets.For(lang)
	require.NoError(t, err)
	rules := make([]runtime.Rule, 0, len(set))
	for _, r := range set {
		rules = append(rules, runtime.Rule{Name: r.Name, Expression: r.Expression})
	}
	return rules
}

func TestValidateRules(t *testing.T) {
	reg := memory.NewRegistryFromSpecs(ports.ContractItems, nil)

	// 1. Scenario A: built-in rule sets are valid
	for _, lang := range rulesets.Languages() {
		assert.NoError(t, ValidateRules(builtin(t, lang), nil), lang)
	}

	// 2. Scenario B: broken rules
	rules := []runtime.Rule{
		{Name: "ok", Expression: g.Seq(g.Lit("go"), g.Cmd(g.Lit("on"), "ON"))},
		{Name: "ok", Expression: g.Lit("again"), Fallback: domain.SendCommandAction("ON")},
		{Name: "inert", Expression: g.Lit("hello")},
		{Name: "fans", Expression: g.Cmd(g.Entity(g.EntityOptions{Tags: []string{"Fan"}}), "ON")},
		{Name: "scenes", Expression: g.Cmd(g.Entity(g.EntityOptions{Kinds: []string{"Scene"}}), "ON")},
		{Name: "warned", Expression: g.EntityFromMap(map[string]any{"tagMode": "some"}, nil), Fallback: domain.SendCommandAction("ON")},
	}

	err := ValidateRules(rules, reg)
	require.Error(t, err)
	msg := err.Error()

	assert.True(t, strings.HasPrefix(msg, "found 5 errors:"), msg)
	assert.Contains(t, msg, "rule 1 (ok): name already used by rule 0")
	assert.Contains(t, msg, "rule 2 (inert): no command in grammar and no fallback")
	assert.Contains(t, msg, `rule 3 (fans): entity(tag=Fan): no entity has tag "Fan"`)
	assert.Contains(t, msg, `rule 4 (scenes): entity(kind=Scene): no entity has kind "Scene"`)
	assert.Contains(t, msg, "rule 5 (warned)")
}

func TestCheck_NilRegistrySkipsFilters(t *testing.T) {
	rules := []runtime.Rule{
		{Expression: g.Cmd(g.Entity(g.EntityOptions{Tags: []string{"Fan"}}), "ON")},
	}
	assert.Empty(t, Check(rules, nil))
	assert.Len(t, Check(rules, memory.NewRegistry()), 1)
}
