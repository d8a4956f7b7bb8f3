package compiler

import (
	"fmt"

	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/pkg/grammar"
)

// Diagnostic is a warning found in the grammar of a rule.
type Diagnostic struct {
	Rule    int
	Name    string
	Message string
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return fmt.Sprintf("rule %d: %s", d.Rule, d.Message)
	}
	return fmt.Sprintf("rule %d (%s): %s", d.Rule, d.Name, d.Message)
}

// Diagnose collects the construction warnings of every rule.
func Diagnose(rules []runtime.Rule) []Diagnostic {
	var out []Diagnostic
	for i, r := range rules {
		for _, w := range grammar.Diagnostics(r.Expression) {
			out = append(out, Diagnostic{Rule: i, Name: r.Name, Message: w})
		}
	}
	return out
}
