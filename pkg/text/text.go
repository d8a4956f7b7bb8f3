// Package text turns raw utterances and grammar words into canonical tokens.
//
// The same normalization is applied to user input, grammar literals, entity
// labels and aliases, so that plain string equality is a meaningful match.
package text

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and removes every rune that is not a Unicode
// letter, an apostrophe or a space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r == '\'' || r == ' ' || unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize splits an already normalized string on single spaces and drops
// empty tokens.
func Tokenize(normalized string) []string {
	parts := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Tokens normalizes and tokenizes s in one step.
func Tokens(s string) []string {
	return Tokenize(Normalize(s))
}

// HasPrefix reports whether candidate matches the start of tokens position by
// position.
func HasPrefix(tokens, candidate []string) bool {
	if len(candidate) > len(tokens) {
		return false
	}
	for i, c := range candidate {
		if tokens[i] != c {
			return false
		}
	}
	return true
}
