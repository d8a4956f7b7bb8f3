package cuevox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JanMattner/cuevox/internal/compiler"
	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/JanMattner/cuevox/pkg/registry"
	"github.com/JanMattner/cuevox/pkg/rulesets"
)

var _ ports.Interpreter = (*Interpreter)(nil)

// Interpreter is the high-level entry point of the library.
// It wraps the internal rule engine and adds rule loading.
type Interpreter struct {
	engine        *runtime.Engine
	actions       *registry.Registry
	hooks         domain.LifecycleHooks
	journal       ports.Journal
	logger        *slog.Logger
	completeMatch bool
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Interpreter) {
		i.hooks = hooks
	}
}

// WithJournal records every interpretation.
func WithJournal(j ports.Journal) Option {
	return func(i *Interpreter) {
		i.journal = j
	}
}

// WithActions sets the registry resolving named actions of grammar files.
func WithActions(actions *registry.Registry) Option {
	return func(i *Interpreter) {
		i.actions = actions
	}
}

// WithCompleteMatch rejects rules leaving unconsumed tokens.
func WithCompleteMatch(enabled bool) Option {
	return func(i *Interpreter) {
		i.completeMatch = enabled
	}
}

// New creates an interpreter resolving entities through reg.
func New(reg ports.Registry, opts ...Option) *Interpreter {
	i := &Interpreter{}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = logging.NewNop()
	}
	if i.actions == nil {
		i.actions = registry.NewRegistry()
	}

	i.engine = runtime.NewEngine(reg,
		runtime.WithLogger(i.logger),
		runtime.WithLifecycleHooks(i.hooks),
		runtime.WithJournal(i.journal),
		runtime.WithCompleteMatch(i.completeMatch),
	)
	return i
}

// Actions returns the registry of named actions.
func (i *Interpreter) Actions() *registry.Registry {
	return i.actions
}

// AddRule appends a rule. fallback is performed when expr matched without
// producing an action and may be nil.
func (i *Interpreter) AddRule(expr grammar.Expression, fallback *domain.Action) {
	i.engine.AddRule(expr, fallback)
}

// AddNamedRule appends a rule with a name shown in annotations.
func (i *Interpreter) AddNamedRule(name string, expr grammar.Expression, fallback *domain.Action) {
	i.engine.Add(runtime.Rule{Name: name, Expression: expr, Fallback: fallback})
}

// LoadRuleSet appends the built-in rules of lang.
func (i *Interpreter) LoadRuleSet(lang string) error {
	rules, err := rulesets.For(lang)
	if err != nil {
		return err
	}
	for _, r := range rules {
		i.engine.Add(runtime.Rule{Name: r.Name, Expression: r.Expression})
	}
	i.logger.Debug("rule set loaded", "language", lang, "rules", len(rules))
	return nil
}

// LoadRules appends the rules of a YAML grammar file.
// Nothing is added when the file fails to compile.
func (i *Interpreter) LoadRules(path string) error {
	rules, err := compiler.NewParser(i.actions).ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	for _, r := range rules {
		i.engine.Add(r)
	}
	i.logger.Debug("rules loaded", "path", path, "rules", len(rules))
	return nil
}

// LoadRulesYAML appends the rules of YAML grammar content.
func (i *Interpreter) LoadRulesYAML(data []byte) error {
	rules, err := compiler.NewParser(i.actions).Parse(data)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	for _, r := range rules {
		i.engine.Add(r)
	}
	return nil
}

// ClearRules removes every rule.
func (i *Interpreter) ClearRules() {
	i.engine.ClearRules()
}

// Grammars returns the expression of every rule, in the order of Rules.
func (i *Interpreter) Grammars() []grammar.Expression {
	return i.engine.Grammars()
}

// Rules describes the registered rules in order.
func (i *Interpreter) Rules() []ports.RuleInfo {
	return i.engine.Rules()
}

// InterpretUtterance matches text against the rules and performs the action
// of the first matching rule. See runtime.Engine.InterpretUtterance.
func (i *Interpreter) InterpretUtterance(ctx context.Context, text string) (domain.Annotation, error) {
	return i.engine.InterpretUtterance(ctx, text)
}
