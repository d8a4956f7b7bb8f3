package graph

import (
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox/pkg/grammar"
)

// Rule is one rule to draw.
type Rule struct {
	Name       string
	Expression grammar.Expression
	Fallback   string
}

// GraphOverlay marks the rule that handled an utterance.
type GraphOverlay struct {
	MatchedRule int
	Remaining   []string
}

// GenerateMermaid produces a Mermaid flowchart of the grammar trees of rules.
// It applies semantic styling:
// - Rule: ((Circle))
// - Command: [[Subroutine]]
// - Entity: [/Parallelogram/]
// - Alternative: {Rhombus}
// - Sequence: (Rounded)
// - Optional: >Flag] with a dotted edge to its child
// - Literal: [Rectangle]
// An overlay highlights the matched rule.
func GenerateMermaid(rules []Rule, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	w := &writer{sb: &sb}
	for i, r := range rules {
		ruleID := fmt.Sprintf("r%d", i)
		label := fmt.Sprintf("%d", i)
		if r.Name != "" {
			label += ": " + r.Name
		}
		if r.Fallback != "" {
			label += " <br/> => " + r.Fallback
		}
		fmt.Fprintf(&sb, "    %s((\"%s\"))\n", ruleID, escape(label))
		if child := w.node(r.Expression); child != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", ruleID, child)
		}
	}

	if overlay != nil && overlay.MatchedRule >= 0 && overlay.MatchedRule < len(rules) {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class r%d current;\n", overlay.MatchedRule)
		if len(overlay.Remaining) > 0 {
			fmt.Fprintf(&sb, "    r%d -. \"ignored: %s\" .- rest((\" \"))\n", overlay.MatchedRule, escape(strings.Join(overlay.Remaining, " ")))
		}
	}

	return sb.String()
}

type writer struct {
	sb   *strings.Builder
	next int
}

func (w *writer) id() string {
	w.next++
	return fmt.Sprintf("n%d", w.next)
}

// node writes expr and its subtree and returns the id of expr.
func (w *writer) node(expr grammar.Expression) string {
	if expr == nil {
		return ""
	}
	id := w.id()
	switch e := expr.(type) {
	case *grammar.Literal:
		fmt.Fprintf(w.sb, "    %s[\"%s\"]\n", id, escape(e.Token))
	case *grammar.Sequence:
		fmt.Fprintf(w.sb, "    %s(\"seq\")\n", id)
		for i, c := range e.Children {
			w.edge(id, c, fmt.Sprintf("-- \"%d\" -->", i+1))
		}
	case *grammar.Alternative:
		fmt.Fprintf(w.sb, "    %s{\"alt\"}\n", id)
		for _, c := range e.Children {
			w.edge(id, c, "-->")
		}
	case *grammar.Optional:
		fmt.Fprintf(w.sb, "    %s>\"opt\"]\n", id)
		w.edge(id, e.Child, "-.->")
	case *grammar.Command:
		fmt.Fprintf(w.sb, "    %s[[\"cmd: %v\"]]\n", id, escape(fmt.Sprint(e.Payload)))
		w.edge(id, e.Child, "-->")
	case *grammar.EntityExpr:
		fmt.Fprintf(w.sb, "    %s[/\"%s\"/]\n", id, escape(grammar.Entity(e.Options()).String()))
		if inner, ok := e.Inner(); ok {
			arrow := "-->"
			if inner.GroupContext != grammar.GroupContextNone {
				arrow = fmt.Sprintf("-- \"groupContext=%s\" -->", inner.GroupContext)
			}
			w.edge(id, inner.Expr, arrow)
		}
	default:
		fmt.Fprintf(w.sb, "    %s[\"%s\"]\n", id, escape(expr.String()))
	}
	for _, warning := range expr.Warnings() {
		fmt.Fprintf(w.sb, "    %%%% warning: %s\n", warning)
	}
	return id
}

func (w *writer) edge(from string, child grammar.Expression, arrow string) {
	if to := w.node(child); to != "" {
		fmt.Fprintf(w.sb, "    %s %s %s\n", from, arrow, to)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
