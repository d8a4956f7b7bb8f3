package graph_test

import (
	"strings"
	"testing"

	"github.com/JanMattner/cuevox/internal/presentation/graph"
	g "github.com/JanMattner/cuevox/pkg/grammar"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		rules    []graph.Rule
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:  "Rule Shape",
			rules: []graph.Rule{{Name: "hello", Expression: g.Lit("hello"), Fallback: "greet"}},
			contains: []string{
				"graph TD",
				`r0(("0: hello <br/> => greet"))`,
				`n1["hello"]`,
				"r0 --> n1",
			},
		},
		{
			name: "Sequence Order",
			rules: []graph.Rule{{Expression: g.Seq(g.Lit("turn"), g.Lit("on"))}},
			contains: []string{
				`n1("seq")`,
				`n1 -- "1" --> n2`,
				`n1 -- "2" --> n3`,
			},
		},
		{
			name: "Alternative, Command and Optional Shapes",
			rules: []graph.Rule{{Expression: g.Alt(g.Cmd(g.Lit("on"), "ON"), g.Opt(g.Lit("off")))}},
			contains: []string{
				`n1{"alt"}`,
				`n2[["cmd: ON"]]`,
				`n4>"opt"]`,
				"n4 -.-> n5",
			},
		},
		{
			name: "Entity Shape",
			rules: []graph.Rule{{Expression: g.EntityOf(
				g.EntityOptions{Tags: []string{"Light"}, MatchMultiple: true},
				g.Inner{Expr: g.Entity(g.EntityOptions{Kinds: []string{"Group"}}), GroupContext: g.GroupContextLast},
			)}},
			contains: []string{
				`n1[/"entity(tag=Light, matchMultiple)"/]`,
				`n1 -- "groupContext=last" --> n2`,
				`n2[/"entity(kind=Group)"/]`,
			},
		},
		{
			name:    "Overlay",
			rules:   []graph.Rule{{Expression: g.Lit("a")}, {Expression: g.Lit("b")}},
			overlay: &graph.GraphOverlay{MatchedRule: 1, Remaining: []string{"please"}},
			contains: []string{
				"classDef current",
				"class r1 current;",
				`ignored: please`,
			},
			excludes: []string{"class r0 current;"},
		},
		{
			name:     "No Overlay For Unmatched",
			rules:    []graph.Rule{{Expression: g.Lit("a")}},
			overlay:  &graph.GraphOverlay{MatchedRule: -1},
			excludes: []string{"classDef current"},
		},
		{
			name:     "Quotes Escaped",
			rules:    []graph.Rule{{Name: `say "hi"`, Expression: g.Lit("hi")}},
			contains: []string{`r0(("0: say 'hi'"))`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.rules, tt.overlay)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("expected output not to contain %q, got:\n%s", s, got)
				}
			}
		})
	}
}
