package grammar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TagMode selects how several tags filter the candidate entities.
type TagMode string

const (
	// TagModeAll keeps entities carrying every tag.
	TagModeAll TagMode = "all"
	// TagModeAny keeps entities carrying at least one tag.
	TagModeAny TagMode = "any"
)

// GroupContext selects which discovered groups scope an entity expression.
type GroupContext string

const (
	GroupContextNone GroupContext = ""
	GroupContextLast GroupContext = "last"
	GroupContextOne  GroupContext = "one"
	GroupContextAll  GroupContext = "all"
)

// EntityOptions configures an entity expression.
type EntityOptions struct {
	// Include adds the matched entities to the parameter. Defaults to true.
	Include *bool
	// MatchMultiple accepts any number of matches instead of exactly one.
	MatchMultiple bool
	// Kinds restricts candidates to the given kinds.
	Kinds []string
	// Tags restricts candidates by tag, combined according to TagMode.
	Tags    []string
	TagMode TagMode
}

// Inner scopes an entity expression with a preceding sub-expression.
type Inner struct {
	Expr         Expression
	GroupContext GroupContext
}

// Bool returns a pointer to b, for EntityOptions.Include.
func Bool(b bool) *bool { return &b }

func (o EntityOptions) include() bool {
	return o.Include == nil || *o.Include
}

// EntityExpr matches one or more entities of the registry.
type EntityExpr struct {
	node
	opts  EntityOptions
	inner *Inner
}

// Entity creates an entity expression matching entity labels and aliases.
func Entity(opts EntityOptions) *EntityExpr {
	e := &EntityExpr{}
	e.opts = e.checkOptions(opts)
	return e
}

// EntityOf creates an entity expression that first evaluates inner.Expr and
// then selects candidates, optionally restricted to members of the groups the
// inner expression discovered.
func EntityOf(opts EntityOptions, inner Inner) *EntityExpr {
	e := Entity(opts)
	if inner.Expr == nil {
		return e
	}
	switch inner.GroupContext {
	case GroupContextNone, GroupContextLast, GroupContextOne, GroupContextAll:
	default:
		e.warn("entity(): 'groupContext' must be 'last', 'one' or 'all' - got: %s; ignoring", jsonString(string(inner.GroupContext)))
		inner.GroupContext = GroupContextNone
	}
	e.inner = &inner
	return e
}

// EntityFromMap creates an entity expression from loosely typed options, as
// decoded from YAML or JSON. Keys are include, matchMultiple, tag, kind,
// tagMode and groupContext. Invalid values are recorded as warnings and
// replaced by their default. inner may be nil.
func EntityFromMap(options map[string]any, inner Expression) *EntityExpr {
	e := &EntityExpr{}
	var opts EntityOptions

	if v, ok := options["include"]; ok && v != nil {
		if b, isBool := v.(bool); isBool {
			opts.Include = Bool(b)
		} else {
			e.warn("entity(): 'include' must be boolean - got: %s", jsonString(v))
		}
	}
	if v, ok := options["matchMultiple"]; ok && v != nil {
		if b, isBool := v.(bool); isBool {
			opts.MatchMultiple = b
		} else {
			e.warn("entity(): 'matchMultiple' must be boolean - got: %s", jsonString(v))
		}
	}
	if v, ok := options["tag"]; ok {
		if tags, valid := stringList(v); valid {
			opts.Tags = tags
		} else {
			e.warn("entity(): 'tag' must be string or array of strings or null - got: %s", jsonString(v))
		}
	}
	if v, ok := options["kind"]; ok {
		if kinds, valid := stringList(v); valid {
			opts.Kinds = kinds
		} else {
			e.warn("entity(): 'kind' must be string or array of strings or null - got: %s", jsonString(v))
		}
	}
	if v, ok := options["tagMode"]; ok && v != nil {
		if s, isString := v.(string); isString {
			opts.TagMode = TagMode(s)
		} else {
			e.warn("entity(): 'tagMode' must be 'all' or 'any' - got: %s; defaulting to 'all'", jsonString(v))
			opts.TagMode = TagModeAll
		}
	}
	e.opts = e.checkOptions(opts)

	var unknown []string
	for k := range options {
		switch k {
		case "include", "matchMultiple", "tag", "kind", "tagMode", "groupContext":
		default:
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		e.warn("entity(): unknown option '%s'", k)
	}

	if inner == nil {
		return e
	}
	in := Inner{Expr: inner}
	if v, ok := options["groupContext"]; ok && v != nil {
		s, isString := v.(string)
		switch GroupContext(s) {
		case GroupContextLast, GroupContextOne, GroupContextAll:
			in.GroupContext = GroupContext(s)
		default:
			if !isString || s != "" {
				e.warn("entity(): 'groupContext' must be 'last', 'one' or 'all' - got: %s; ignoring", jsonString(v))
			}
		}
	}
	e.inner = &in
	return e
}

// checkOptions validates the typed options.
func (e *EntityExpr) checkOptions(opts EntityOptions) EntityOptions {
	switch opts.TagMode {
	case TagModeAll, TagModeAny:
	case "":
		opts.TagMode = TagModeAll
	default:
		e.warn("entity(): 'tagMode' must be 'all' or 'any' - got: %s; defaulting to 'all'", jsonString(string(opts.TagMode)))
		opts.TagMode = TagModeAll
	}
	return opts
}

// Options returns the effective options.
func (e *EntityExpr) Options() EntityOptions { return e.opts }

// Inner returns the scoping sub-expression, if any.
func (e *EntityExpr) Inner() (Inner, bool) {
	if e.inner == nil {
		return Inner{}, false
	}
	return *e.inner, true
}

func (e *EntityExpr) String() string {
	var args []string
	if len(e.opts.Tags) > 0 {
		args = append(args, "tag="+strings.Join(e.opts.Tags, "+"))
		if e.opts.TagMode == TagModeAny {
			args = append(args, "tagMode=any")
		}
	}
	if len(e.opts.Kinds) > 0 {
		args = append(args, "kind="+strings.Join(e.opts.Kinds, "+"))
	}
	if !e.opts.include() {
		args = append(args, "include=false")
	}
	if e.opts.MatchMultiple {
		args = append(args, "matchMultiple")
	}
	if e.inner != nil {
		args = append(args, "expr="+str(e.inner.Expr))
		if e.inner.GroupContext != GroupContextNone {
			args = append(args, "groupContext="+string(e.inner.GroupContext))
		}
	}
	return "entity(" + strings.Join(args, ", ") + ")"
}

// stringList accepts nil, a string or a list of strings.
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
