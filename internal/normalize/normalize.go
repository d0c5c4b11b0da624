// Package normalize provides title normalization shared by the dedupe
// brain and the repository search paths. meals.title is for display;
// meals.title_normalized is for indexing and deterministic equality checks.
package normalize

import (
	"strings"
	"unicode"
)

// junk words commonly prefixed/suffixed onto dataset recipe titles that
// carry no identity signal ("recipe", "easy", "homemade", ...).
var junkWords = map[string]struct{}{
	"recipe":    {},
	"recipes":   {},
	"easy":      {},
	"quick":     {},
	"simple":    {},
	"best":      {},
	"homemade":  {},
	"authentic": {},
	"style":     {},
}

// Title normalizes a meal title for search and dedupe: lowercases,
// replaces non-alphanumeric runs with spaces, collapses whitespace and
// strips junk words. Digits are intentionally kept ("2 minute noodles").
// Combining marks are kept too; Devanagari vowel signs are part of the word.
func Title(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if _, junk := junkWords[f]; junk {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		// Everything was junk; keep the raw normalized tokens rather
		// than returning an empty identity.
		return strings.Join(fields, " ")
	}
	return strings.Join(out, " ")
}

// Tokens returns the whitespace-delimited tokens of a normalized title.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// TokenSet returns the distinct tokens of a normalized title.
func TokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		set[t] = struct{}{}
	}
	return set
}

// Value normalizes an arbitrary scalar value (diet, course, tag value)
// for case/whitespace-insensitive comparison.
func Value(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
