package grammar

import (
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox/pkg/text"
)

// Expression is a node of the command grammar.
// The set of implementations is closed; see the package documentation.
type Expression interface {
	fmt.Stringer

	// Warnings returns the diagnostics recorded when the node was built.
	Warnings() []string

	expression()
}

type node struct {
	warnings []string
}

func (n *node) Warnings() []string { return n.warnings }
func (n *node) warn(format string, args ...any) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}
func (*node) expression() {}

// Literal matches exactly one token.
type Literal struct {
	node
	Raw   string
	Token string
}

// Lit creates a literal from a single word. The word is normalized like an
// utterance; only its first token is kept.
func Lit(word string) *Literal {
	l := &Literal{Raw: word}
	tokens := text.Tokens(word)
	switch {
	case len(tokens) == 0:
		l.warn("Empty expression found after normalizing: %s", word)
		return l
	case len(tokens) > 1:
		l.warn("Found expression with multiple tokens, only 1 token is supported: %s", word)
	}
	l.Token = tokens[0]
	return l
}

func (l *Literal) String() string { return l.Token }

// Words creates an alternative of literals.
func Words(words ...string) *Alternative {
	children := make([]Expression, 0, len(words))
	for _, w := range words {
		children = append(children, Lit(w))
	}
	return Alt(children...)
}

// Sequence matches its children one after the other.
type Sequence struct {
	node
	Children []Expression
}

// Seq creates a sequence expression.
func Seq(children ...Expression) *Sequence {
	return &Sequence{Children: children}
}

func (s *Sequence) String() string { return "seq(" + join(s.Children, ", ") + ")" }

// Alternative matches the first child that matches.
type Alternative struct {
	node
	Children []Expression
}

// Alt creates an alternative expression. Children are tried in order.
func Alt(children ...Expression) *Alternative {
	return &Alternative{Children: children}
}

func (a *Alternative) String() string { return "alt(" + join(a.Children, " | ") + ")" }

// Optional matches its child or nothing.
type Optional struct {
	node
	Child Expression
}

// Opt creates an optional expression.
func Opt(child Expression) *Optional {
	return &Optional{Child: child}
}

func (o *Optional) String() string { return "opt(" + str(o.Child) + ")" }

// Command matches its child and describes sending Payload to every entity
// collected in the resulting parameter.
type Command struct {
	node
	Child   Expression
	Payload any
}

// Cmd creates a command expression.
func Cmd(child Expression, payload any) *Command {
	return &Command{Child: child, Payload: payload}
}

func (c *Command) String() string { return fmt.Sprintf("cmd(%s, %v)", str(c.Child), c.Payload) }

// Walk visits expr and its descendants depth-first. It stops descending
// into a node when fn returns false.
func Walk(expr Expression, fn func(Expression) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *Sequence:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case *Alternative:
		for _, c := range e.Children {
			Walk(c, fn)
		}
	case *Optional:
		Walk(e.Child, fn)
	case *Command:
		Walk(e.Child, fn)
	case *EntityExpr:
		if e.inner != nil {
			Walk(e.inner.Expr, fn)
		}
	}
}

// Diagnostics collects the warnings of every node of expr.
func Diagnostics(expr Expression) []string {
	var out []string
	Walk(expr, func(e Expression) bool {
		out = append(out, e.Warnings()...)
		return true
	})
	return out
}

func str(e Expression) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func join(es []Expression, sep string) string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, str(e))
	}
	return strings.Join(parts, sep)
}
