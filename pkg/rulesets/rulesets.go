// Package rulesets provides ready-made voice command grammars.
package rulesets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JanMattner/cuevox/pkg/domain"
	g "github.com/JanMattner/cuevox/pkg/grammar"
)

// Rule is a named grammar of a rule set.
type Rule struct {
	Name       string
	Expression g.Expression
}

var languages = map[string]func() []Rule{
	"en": English,
	"de": German,
}

// Languages lists the available rule sets.
func Languages() []string {
	out := make([]string, 0, len(languages))
	for lang := range languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// For returns the rule set of lang ("en", "de").
func For(lang string) ([]Rule, error) {
	build, ok := languages[strings.ToLower(lang)]
	if !ok {
		return nil, fmt.Errorf("no rule set for language %q (available: %s)", lang, strings.Join(Languages(), ", "))
	}
	return build(), nil
}

// location matches a group by label without adding it to the parameter.
func location() g.Expression {
	return g.Entity(g.EntityOptions{Kinds: []string{domain.KindGroup}, Include: g.Bool(false)})
}

// lightsIn selects every light switch below the group named by inner.
func lightsIn(inner g.Expression) g.Expression {
	return g.EntityOf(
		g.EntityOptions{Tags: []string{"Light"}, Kinds: []string{"Switch"}, MatchMultiple: true},
		g.Inner{Expr: inner, GroupContext: g.GroupContextLast},
	)
}
