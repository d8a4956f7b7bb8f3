// Package validator checks loaded rules against the registry they will run on.
package validator

import (
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox/internal/compiler"
	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// Issue is a problem found in one rule.
type Issue = compiler.Diagnostic

// Check reports, per rule:
//   - construction warnings of the grammar
//   - entity filters (tag, kind) that select no entity of reg
//   - rules that can never perform an action
//   - rule names used more than once
//
// reg may be nil, which skips the registry checks.
func Check(rules []runtime.Rule, reg ports.Registry) []Issue {
	issues := compiler.Diagnose(rules)
	seen := make(map[string]int)

	for i, r := range rules {
		add := func(format string, args ...any) {
			issues = append(issues, Issue{Rule: i, Name: r.Name, Message: fmt.Sprintf(format, args...)})
		}

		if r.Name != "" {
			if first, ok := seen[r.Name]; ok {
				add("name already used by rule %d", first)
			} else {
				seen[r.Name] = i
			}
		}

		hasAction := r.Fallback != nil
		grammar.Walk(r.Expression, func(e grammar.Expression) bool {
			switch t := e.(type) {
			case *grammar.Command:
				hasAction = true
			case *grammar.EntityExpr:
				if reg != nil {
					if msg := deadFilter(t.Options(), reg); msg != "" {
						add("%s: %s", t, msg)
					}
				}
			}
			return true
		})
		if !hasAction {
			add("no command in grammar and no fallback: the rule can never perform an action")
		}
	}
	return issues
}

// ValidateRules returns an error listing every issue, or nil.
func ValidateRules(rules []runtime.Rule, reg ports.Registry) error {
	issues := Check(rules, reg)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, 0, len(issues))
	for _, is := range issues {
		lines = append(lines, is.String())
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

func deadFilter(opts grammar.EntityOptions, reg ports.Registry) string {
	for _, tag := range opts.Tags {
		if len(reg.EntitiesByTags(tag)) == 0 {
			return fmt.Sprintf("no entity has tag %q", tag)
		}
	}
	for _, kind := range opts.Kinds {
		if !hasKind(reg.AllEntities(), kind) {
			return fmt.Sprintf("no entity has kind %q", kind)
		}
	}
	return ""
}

func hasKind(es []domain.Entity, kind string) bool {
	for _, e := range es {
		if e.Kind() == kind {
			return true
		}
	}
	return false
}
