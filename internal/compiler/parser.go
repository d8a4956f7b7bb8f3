package compiler

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/rulesets"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ActionResolver looks up named callback actions.
// *registry.Registry implements it.
type ActionResolver interface {
	Action(name string) (*domain.Action, error)
}

// File is the decoded form of a grammar file.
type File struct {
	// RuleSet prepends a built-in rule set ("en", "de").
	RuleSet string    `mapstructure:"ruleset"`
	Rules   []RuleDoc `mapstructure:"rules"`
}

// RuleDoc is a single rule entry.
type RuleDoc struct {
	Name     string       `mapstructure:"name"`
	Grammar  any          `mapstructure:"grammar"`
	Fallback *FallbackDoc `mapstructure:"fallback"`
}

// FallbackDoc names the action performed when the grammar yields none.
// Exactly one of Action and Send must be set.
type FallbackDoc struct {
	Action string `mapstructure:"action"`
	Send   any    `mapstructure:"send"`
}

type cmdDoc struct {
	Expr    any `mapstructure:"expr"`
	Payload any `mapstructure:"payload"`
}

// Parser converts grammar files into rules.
type Parser struct {
	actions ActionResolver
}

// NewParser creates a parser. actions may be nil, in which case rules with a
// named fallback action fail to compile.
func NewParser(actions ActionResolver) *Parser {
	return &Parser{actions: actions}
}

// ParseFile reads and parses the grammar file at path.
func (p *Parser) ParseFile(path string) ([]runtime.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	rules, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Parse decodes YAML content into rules, built-in rule set first.
func (p *Parser) Parse(data []byte) ([]runtime.Rule, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	var file File
	if err := decode(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	var out []runtime.Rule
	if file.RuleSet != "" {
		builtin, err := rulesets.For(file.RuleSet)
		if err != nil {
			return nil, err
		}
		for _, r := range builtin {
			out = append(out, runtime.Rule{Name: r.Name, Expression: r.Expression})
		}
	}

	for i, doc := range file.Rules {
		rule, err := p.rule(doc)
		if err != nil {
			name := doc.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

func (p *Parser) rule(doc RuleDoc) (runtime.Rule, error) {
	if doc.Grammar == nil {
		return runtime.Rule{}, fmt.Errorf("missing grammar: %w", domain.ErrInvalidExpression)
	}
	expr, err := ParseExpression(doc.Grammar)
	if err != nil {
		return runtime.Rule{}, err
	}
	rule := runtime.Rule{Name: doc.Name, Expression: expr}

	if doc.Fallback == nil {
		return rule, nil
	}
	switch {
	case doc.Fallback.Action != "" && doc.Fallback.Send != nil:
		return runtime.Rule{}, errors.New("fallback: 'action' and 'send' are exclusive")
	case doc.Fallback.Action != "":
		if p.actions == nil {
			return runtime.Rule{}, fmt.Errorf("fallback: action %q: %w", doc.Fallback.Action, domain.ErrUnknownAction)
		}
		action, err := p.actions.Action(doc.Fallback.Action)
		if err != nil {
			return runtime.Rule{}, fmt.Errorf("fallback: %w", err)
		}
		rule.Fallback = action
	case doc.Fallback.Send != nil:
		rule.Fallback = domain.SendCommandAction(doc.Fallback.Send)
	default:
		return runtime.Rule{}, errors.New("fallback: needs 'action' or 'send'")
	}
	return rule, nil
}

// ParseExpression builds an expression from a decoded YAML node:
//
//	word                        literal
//	[a, b]                      seq(a, b)
//	{seq: [a, b]}               seq(a, b)
//	{alt: [a, b]}               alt(a | b)
//	{words: [a, b]}             alt of literals
//	{opt: a}                    opt(a)
//	{cmd: {expr: a, payload: P}}
//	{entity: {tag: Light, expr: a, groupContext: last, ...}}
func ParseExpression(node any) (grammar.Expression, error) {
	return parseNode(node, "grammar")
}

func parseNode(node any, path string) (grammar.Expression, error) {
	switch t := node.(type) {
	case string:
		return grammar.Lit(t), nil
	case []any:
		children, err := parseList(t, path)
		if err != nil {
			return nil, err
		}
		return grammar.Seq(children...), nil
	case map[string]any:
		return parseMap(t, path)
	default:
		return nil, fmt.Errorf("%s: unexpected %T: %w", path, node, domain.ErrInvalidExpression)
	}
}

func parseMap(m map[string]any, path string) (grammar.Expression, error) {
	if len(m) != 1 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: expected exactly one of seq, alt, words, opt, cmd, entity; got [%s]: %w",
			path, strings.Join(keys, ", "), domain.ErrInvalidExpression)
	}

	for key, value := range m {
		sub := path + "." + key
		switch key {
		case "seq", "alt":
			list, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: expected a list: %w", sub, domain.ErrInvalidExpression)
			}
			children, err := parseList(list, sub)
			if err != nil {
				return nil, err
			}
			if key == "seq" {
				return grammar.Seq(children...), nil
			}
			return grammar.Alt(children...), nil

		case "words":
			var words []string
			if err := decode(value, &words); err != nil {
				return nil, fmt.Errorf("%s: %v: %w", sub, err, domain.ErrInvalidExpression)
			}
			return grammar.Words(words...), nil

		case "opt":
			child, err := parseNode(value, sub)
			if err != nil {
				return nil, err
			}
			return grammar.Opt(child), nil

		case "cmd":
			var doc cmdDoc
			if err := decode(value, &doc); err != nil {
				return nil, fmt.Errorf("%s: %v: %w", sub, err, domain.ErrInvalidExpression)
			}
			if doc.Expr == nil {
				return nil, fmt.Errorf("%s: missing expr: %w", sub, domain.ErrInvalidExpression)
			}
			child, err := parseNode(doc.Expr, sub+".expr")
			if err != nil {
				return nil, err
			}
			return grammar.Cmd(child, doc.Payload), nil

		case "entity":
			return parseEntity(value, sub)
		}
	}

	var key string
	for k := range m {
		key = k
	}
	return nil, fmt.Errorf("%s: unknown expression %q: %w", path, key, domain.ErrInvalidExpression)
}

func parseEntity(value any, path string) (grammar.Expression, error) {
	options := map[string]any{}
	switch t := value.(type) {
	case nil:
	case map[string]any:
		for k, v := range t {
			options[k] = v
		}
	default:
		return nil, fmt.Errorf("%s: expected options: %w", path, domain.ErrInvalidExpression)
	}

	var inner grammar.Expression
	if node, ok := options["expr"]; ok {
		delete(options, "expr")
		expr, err := parseNode(node, path+".expr")
		if err != nil {
			return nil, err
		}
		inner = expr
	}
	return grammar.EntityFromMap(options, inner), nil
}

func parseList(list []any, path string) ([]grammar.Expression, error) {
	children := make([]grammar.Expression, 0, len(list))
	for i, item := range list {
		child, err := parseNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      output,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
