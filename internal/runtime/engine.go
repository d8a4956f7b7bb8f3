package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/JanMattner/cuevox/pkg/text"
	"github.com/google/uuid"
)

// Rule pairs a grammar with an optional fallback action, performed when the
// grammar matched without producing an action of its own.
type Rule struct {
	Name       string
	Expression grammar.Expression
	Fallback   *domain.Action
}

// Engine interprets utterances against an ordered list of rules.
// It does no locking: rules must not be changed while an utterance is
// interpreted.
type Engine struct {
	registry      ports.Registry
	evaluator     *grammar.Evaluator
	rules         []Rule
	hooks         domain.LifecycleHooks
	journal       ports.Journal
	logger        *slog.Logger
	completeMatch bool
	now           func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. Evaluation traces are logged at debug level,
// grammar diagnostics at warn level.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithJournal records the annotation of every interpreted utterance.
func WithJournal(j ports.Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithCompleteMatch only accepts a rule when its grammar consumed every token.
// By default trailing tokens are ignored.
func WithCompleteMatch(enabled bool) EngineOption {
	return func(e *Engine) {
		e.completeMatch = enabled
	}
}

// WithClock overrides the time source used for annotations.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine resolving entities through reg.
func NewEngine(reg ports.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.evaluator = grammar.NewEvaluator(reg, grammar.WithLogger(e.logger))
	return e
}

// AddRule appends a rule. fallback may be nil.
func (e *Engine) AddRule(expr grammar.Expression, fallback *domain.Action) {
	e.Add(Rule{Expression: expr, Fallback: fallback})
}

// Add appends a rule and logs the diagnostics of its grammar.
func (e *Engine) Add(rule Rule) {
	for _, w := range grammar.Diagnostics(rule.Expression) {
		e.logger.Warn(w)
	}
	e.rules = append(e.rules, rule)
}

// ClearRules removes every rule.
func (e *Engine) ClearRules() {
	e.rules = nil
}

// Grammars returns the expression of every rule, in order.
func (e *Engine) Grammars() []grammar.Expression {
	out := make([]grammar.Expression, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Expression
	}
	return out
}

// Rules describes the registered rules in order.
func (e *Engine) Rules() []ports.RuleInfo {
	infos := make([]ports.RuleInfo, 0, len(e.rules))
	for i, r := range e.rules {
		info := ports.RuleInfo{Index: i, Name: r.Name}
		if r.Expression != nil {
			info.Grammar = r.Expression.String()
		}
		if r.Fallback != nil {
			info.Fallback = r.Fallback.Descriptor()
		}
		infos = append(infos, info)
	}
	return infos
}

// InterpretUtterance matches utterance against the rules in order and
// performs the action of the first rule that provides one.
//
// The returned error is non-nil only when a callback action failed; match
// failures are reported through Annotation.Success.
func (e *Engine) InterpretUtterance(ctx context.Context, utterance string) (domain.Annotation, error) {
	start := e.now()
	normalized := text.Normalize(utterance)
	tokens := text.Tokenize(normalized)

	ann := domain.Annotation{
		ID:        uuid.NewString(),
		Time:      start,
		Input:     normalized,
		Tokens:    tokens,
		Remaining: tokens,
		Rule:      domain.NoRule,
	}
	e.logger.Debug("interpret utterance", "input", normalized, "tokens", tokens)

	var err error
	if len(tokens) > 0 {
		err = e.interpret(ctx, tokens, &ann)
	} else {
		e.logger.Debug("empty utterance")
	}

	e.finish(ctx, ann, start)
	return ann, err
}

func (e *Engine) interpret(ctx context.Context, tokens []string, ann *domain.Annotation) error {
	for i, rule := range e.rules {
		result := e.evaluator.Evaluate(rule.Expression, tokens)
		if !result.Success {
			continue
		}
		if e.completeMatch && len(result.Remaining) > 0 {
			e.logger.Debug("rule matched with trailing tokens, continue", "rule", i, "remaining", result.Remaining)
			continue
		}

		action := result.Action
		if action == nil {
			action = rule.Fallback
		}
		if action == nil {
			e.logger.Debug("rule matched, but no action found, continue", "rule", i)
			continue
		}

		ann.Rule = i
		ann.RuleName = rule.Name
		ann.Remaining = result.Remaining
		ann.Action = action.Descriptor()
		ann.Parameter = result.Parameter

		if e.hooks.OnRuleMatch != nil {
			e.hooks.OnRuleMatch(ctx, &domain.RuleEvent{
				EventBase: e.event(domain.EventRuleMatch, ann.ID),
				Rule:      i,
				RuleName:  rule.Name,
				Action:    ann.Action,
			})
		}

		ok, err := e.perform(ctx, ann.ID, action, result.Parameter)
		ann.Success = ok
		if err != nil {
			return fmt.Errorf("rule %d: action %s: %w", i, ann.Action, err)
		}
		return nil
	}
	return nil
}

// perform runs action exactly once.
func (e *Engine) perform(ctx context.Context, id string, action *domain.Action, param *domain.Parameter) (bool, error) {
	switch action.Kind {
	case domain.ActionSendCommand:
		return e.dispatch(ctx, id, action.Payload, param), nil
	case domain.ActionCallback:
		if action.Callback == nil {
			return false, fmt.Errorf("callback %q has no function: %w", action.Name, domain.ErrUnknownAction)
		}
		return action.Callback(ctx, param)
	default:
		return false, fmt.Errorf("action kind %q: %w", action.Kind, domain.ErrUnknownAction)
	}
}

// dispatch sends payload to every entity of param. It succeeds when at least
// one entity was addressed and every send succeeded; a failing entity does
// not stop the others.
func (e *Engine) dispatch(ctx context.Context, id string, payload any, param *domain.Parameter) bool {
	if param == nil || len(param.Entities) == 0 {
		e.logger.Debug("send command without entities", "payload", payload)
		return false
	}

	var errs []error
	for _, ent := range param.Entities {
		err := ent.SendCommand(ctx, payload)
		if e.hooks.OnDispatch != nil {
			e.hooks.OnDispatch(ctx, &domain.DispatchEvent{
				EventBase: e.event(domain.EventDispatch, id),
				Target:    ent.Name(),
				Payload:   payload,
				Err:       err,
			})
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("send %v to %s: %w", payload, ent.Name(), err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		e.logger.Error("send command failed", "payload", payload, "err", err)
		return false
	}
	return true
}

func (e *Engine) finish(ctx context.Context, ann domain.Annotation, start time.Time) {
	if e.journal != nil {
		if err := e.journal.Record(ctx, ann.Record()); err != nil {
			e.logger.Warn("failed to record interpretation", "id", ann.ID, "err", err)
		}
	}
	if e.hooks.OnInterpret != nil {
		e.hooks.OnInterpret(ctx, &domain.InterpretEvent{
			EventBase:  e.event(domain.EventInterpret, ann.ID),
			Annotation: ann,
			Duration:   e.now().Sub(start),
		})
	}
}

func (e *Engine) event(t domain.EventType, id string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, InterpretationID: id}
}
