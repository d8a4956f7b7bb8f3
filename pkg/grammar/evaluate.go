package grammar

import (
	"log/slog"

	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// Result is the value threaded through every combinator.
// Remaining is the cursor: it is always a suffix of the evaluated tokens.
type Result struct {
	Success   bool
	Remaining []string
	Action    *domain.Action
	Parameter *domain.Parameter
	Groups    []domain.Entity
}

func fail(tokens []string) Result {
	return Result{Remaining: tokens}
}

// Evaluator evaluates expressions against a registry of entities.
// It holds no mutable state and performs no actions.
type Evaluator struct {
	registry ports.Registry
	logger   *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger for evaluation traces and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(ev *Evaluator) {
		if logger != nil {
			ev.logger = logger
		}
	}
}

// NewEvaluator creates an evaluator resolving entities through reg.
func NewEvaluator(reg ports.Registry, opts ...Option) *Evaluator {
	ev := &Evaluator{
		registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Evaluate matches expr against a prefix of tokens.
//
// With no tokens left every expression except a literal succeeds without
// consuming anything, so that trailing optional parts vanish at the end of
// the input.
func (ev *Evaluator) Evaluate(expr Expression, tokens []string) Result {
	if lit, ok := expr.(*Literal); ok {
		return ev.evalLiteral(lit, tokens)
	}
	if len(tokens) == 0 {
		return Result{Success: true, Remaining: tokens}
	}

	switch e := expr.(type) {
	case *Sequence:
		return ev.evalSequence(e, tokens)
	case *Alternative:
		return ev.evalAlternative(e, tokens)
	case *Optional:
		return ev.evalOptional(e, tokens)
	case *Command:
		return ev.evalCommand(e, tokens)
	case *EntityExpr:
		return ev.evalEntity(e, tokens)
	default:
		ev.logger.Warn("eval: unsupported expression", "expr", expr)
		return fail(tokens)
	}
}

func (ev *Evaluator) evalLiteral(l *Literal, tokens []string) Result {
	if len(tokens) == 0 || l.Token == "" || tokens[0] != l.Token {
		return fail(tokens)
	}
	ev.logger.Debug("eval literal match", "token", l.Token)
	return Result{Success: true, Remaining: tokens[1:]}
}

func (ev *Evaluator) evalSequence(s *Sequence, tokens []string) Result {
	ev.logger.Debug("eval seq", "expr", s, "tokens", tokens)

	out := Result{Success: true, Remaining: tokens}
	for i, child := range s.Children {
		r := ev.Evaluate(child, out.Remaining)
		if !r.Success {
			ev.logger.Debug("eval seq fail", "index", i)
			return fail(tokens)
		}
		out.Remaining = r.Remaining
		if out.Action == nil {
			out.Action = r.Action
		}
		out.Parameter = domain.MergeParameters(out.Parameter, r.Parameter)
		out.Groups = append(out.Groups, r.Groups...)
	}
	return out
}

func (ev *Evaluator) evalAlternative(a *Alternative, tokens []string) Result {
	if len(tokens) == 0 {
		return fail(tokens)
	}
	ev.logger.Debug("eval alt", "expr", a, "tokens", tokens)

	for i, child := range a.Children {
		if r := ev.Evaluate(child, tokens); r.Success {
			ev.logger.Debug("eval alt match", "index", i)
			return r
		}
	}
	return fail(tokens)
}

func (ev *Evaluator) evalOptional(o *Optional, tokens []string) Result {
	if r := ev.Evaluate(o.Child, tokens); r.Success {
		return r
	}
	ev.logger.Debug("eval opt skipped", "expr", o.Child)
	return Result{Success: true, Remaining: tokens}
}

func (ev *Evaluator) evalCommand(c *Command, tokens []string) Result {
	r := ev.Evaluate(c.Child, tokens)
	if !r.Success {
		return fail(tokens)
	}
	ev.logger.Debug("eval cmd match", "payload", c.Payload)
	return Result{
		Success:   true,
		Remaining: r.Remaining,
		Action:    domain.SendCommandAction(c.Payload),
		Parameter: r.Parameter,
		Groups:    r.Groups,
	}
}
