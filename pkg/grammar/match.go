package grammar

import (
	"log/slog"
	"strings"

	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/text"
)

// MatchSource tells whether a match came from the label or an alias.
type MatchSource string

const (
	SourceLabel MatchSource = "label"
	SourceAlias MatchSource = "alias"
)

// Match is the shortest exact label or alias match of one entity.
type Match struct {
	Entity domain.Entity
	Length int
	Source MatchSource
	Tokens []string
}

// AliasTokens returns the tokenized aliases of e. Entities without alias
// support have none; a warning is logged for them.
func AliasTokens(e domain.Entity, logger *slog.Logger) [][]string {
	provider, ok := e.(domain.AliasProvider)
	if !ok {
		orNop(logger).Warn("Entity " + e.Name() + " does not implement alias lookup - skipping aliases")
		return nil
	}
	raw, ok := provider.Alias(domain.AliasNamespace)
	if !ok || raw == "" {
		return nil
	}
	var out [][]string
	for _, alias := range strings.Split(raw, ",") {
		out = append(out, text.Tokens(alias))
	}
	return out
}

// ShortestMatch returns the shortest label or alias of e that is an exact
// prefix of tokens.
func ShortestMatch(e domain.Entity, tokens []string, logger *slog.Logger) (Match, bool) {
	var best Match
	found := false

	if label := text.Tokens(e.Label()); len(label) > 0 && text.HasPrefix(tokens, label) {
		best = Match{Entity: e, Length: len(label), Source: SourceLabel, Tokens: label}
		found = true
	}
	for _, alias := range AliasTokens(e, logger) {
		if len(alias) == 0 || !text.HasPrefix(tokens, alias) {
			continue
		}
		if !found || len(alias) < best.Length {
			best = Match{Entity: e, Length: len(alias), Source: SourceAlias, Tokens: alias}
			found = true
		}
	}
	return best, found
}

// CollectMatches returns one match per entity that matches tokens, in the
// order of entities.
func CollectMatches(entities []domain.Entity, tokens []string, logger *slog.Logger) []Match {
	var matches []Match
	for _, e := range entities {
		if m, ok := ShortestMatch(e, tokens, logger); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

// Shortest returns every match that attains the minimal length.
func Shortest(matches []Match) []Match {
	if len(matches) == 0 {
		return nil
	}
	minLen := matches[0].Length
	for _, m := range matches[1:] {
		if m.Length < minLen {
			minLen = m.Length
		}
	}
	var out []Match
	for _, m := range matches {
		if m.Length == minLen {
			out = append(out, m)
		}
	}
	return out
}

// PickUniqueShortest returns the match with the minimal length. A tie at the
// minimal length is ambiguous and reported as no match.
func PickUniqueShortest(matches []Match) (Match, bool) {
	shortest := Shortest(matches)
	if len(shortest) != 1 {
		return Match{}, false
	}
	return shortest[0], true
}

func orNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.NewNop()
	}
	return logger
}
