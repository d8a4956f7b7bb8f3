package grammar

import (
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox/pkg/domain"
)

func (ev *Evaluator) evalEntity(e *EntityExpr, tokens []string) Result {
	if e.inner == nil {
		return ev.evalEntityLabel(e, tokens)
	}
	return ev.evalEntityScoped(e, tokens)
}

// evalEntityLabel matches a label or alias of one of the candidates.
func (ev *Evaluator) evalEntityLabel(e *EntityExpr, tokens []string) Result {
	matches := Shortest(CollectMatches(ev.candidates(e), tokens, ev.logger))
	switch {
	case len(matches) == 0:
		ev.logger.Debug("eval entity fail: no match", "tokens", tokens)
		return fail(tokens)
	case len(matches) > 1 && !e.opts.MatchMultiple:
		ev.logger.Debug("eval entity fail: ambiguous match", "candidates", matchNames(matches))
		return fail(tokens)
	}

	out := Result{Success: true, Remaining: tokens[matches[0].Length:]}
	matched := make([]domain.Entity, 0, len(matches))
	for _, m := range matches {
		matched = append(matched, m.Entity)
		if domain.IsGroup(m.Entity) {
			out.Groups = append(out.Groups, m.Entity)
		}
	}
	if e.opts.include() {
		out.Parameter = &domain.Parameter{Entities: matched}
	}
	ev.logger.Debug("eval entity match", "entities", matchNames(matches))
	return out
}

// evalEntityScoped evaluates the inner expression and selects the candidates
// it leaves in scope.
func (ev *Evaluator) evalEntityScoped(e *EntityExpr, tokens []string) Result {
	inner := ev.Evaluate(e.inner.Expr, tokens)
	if !inner.Success {
		ev.logger.Debug("eval entity fail: inner expression")
		return fail(tokens)
	}

	gc := e.inner.GroupContext
	if gc != GroupContextNone && len(inner.Groups) == 0 &&
		(inner.Parameter == nil || len(inner.Parameter.Entities) == 0) {
		ev.logger.Debug("eval entity fail: inner expression found nothing")
		return fail(tokens)
	}

	candidates := ev.candidates(e)

	if gc != GroupContextNone {
		if len(inner.Groups) == 0 {
			ev.logger.Debug("eval entity fail: no groups found", "groupContext", gc)
			return fail(tokens)
		}
		if gc == GroupContextOne && len(inner.Groups) > 1 {
			ev.logger.Warn(fmt.Sprintf("eval entity fail: groupContext 'one' but multiple groups matched (%d); groups=[%s]",
				len(inner.Groups), strings.Join(entityNames(inner.Groups), ", ")))
			return fail(tokens)
		}

		scope := inner.Groups
		if gc == GroupContextLast {
			scope = inner.Groups[len(inner.Groups)-1:]
		}
		candidates = ev.membersOf(candidates, scope)
	}

	if !e.opts.MatchMultiple && len(candidates) != 1 {
		ev.logger.Debug("eval entity fail: expected exactly one entity", "count", len(candidates))
		return fail(tokens)
	}

	param := inner.Parameter
	if e.opts.include() {
		param = domain.MergeParameters(param, &domain.Parameter{Entities: candidates})
	}
	ev.logger.Debug("eval entity match", "entities", entityNames(candidates))
	return Result{
		Success:   true,
		Remaining: inner.Remaining,
		Action:    inner.Action,
		Parameter: param,
		Groups:    inner.Groups,
	}
}

// candidates returns the entities passing the tag and kind filters.
func (ev *Evaluator) candidates(e *EntityExpr) []domain.Entity {
	var pool []domain.Entity
	switch {
	case len(e.opts.Tags) == 0:
		pool = ev.registry.AllEntities()
	case e.opts.TagMode == TagModeAny:
		seen := make(map[string]struct{})
		for _, tag := range e.opts.Tags {
			for _, ent := range ev.registry.EntitiesByTags(tag) {
				if _, dup := seen[ent.Name()]; dup {
					continue
				}
				seen[ent.Name()] = struct{}{}
				pool = append(pool, ent)
			}
		}
	default:
		pool = ev.registry.EntitiesByTags(e.opts.Tags...)
	}

	if len(e.opts.Kinds) == 0 {
		return pool
	}
	filtered := make([]domain.Entity, 0, len(pool))
	for _, ent := range pool {
		for _, kind := range e.opts.Kinds {
			if ent.Kind() == kind {
				filtered = append(filtered, ent)
				break
			}
		}
	}
	return filtered
}

// membersOf keeps the candidates belonging to at least one of groups.
func (ev *Evaluator) membersOf(candidates, groups []domain.Entity) []domain.Entity {
	var out []domain.Entity
	for _, c := range candidates {
		for _, g := range groups {
			if IsDescendantOf(ev.registry, c, g.Name()) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func entityNames(es []domain.Entity) []string {
	names := make([]string, 0, len(es))
	for _, e := range es {
		names = append(names, e.Name())
	}
	return names
}

func matchNames(ms []Match) []string {
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Entity.Name())
	}
	return names
}
