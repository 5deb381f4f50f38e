// Package answer decides whether a typed quiz answer matches the expected
// one, tolerating letter case, stray whitespace and ASCII spellings of
// umlauts and sharp s.
package answer

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Substitution is an umlaut (or ß) and its ASCII spelling.
type Substitution struct {
	Letter string
	ASCII  string
}

// Substitutions are applied in both directions, one site at a time.
var Substitutions = []Substitution{
	{"ä", "ae"},
	{"ö", "oe"},
	{"ü", "ue"},
	{"ß", "ss"},
}

// maxVariants bounds Variants for pathological inputs such as long runs of
// "ss". IsEquivalent does not depend on it.
const maxVariants = 4096

var asciiFolder = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// IsEquivalent reports whether the user's answer and the canonical answer
// share a spelling variant.
//
// The single-site substitutions have one-rune left-hand sides that never
// overlap, so every variant of a string folds to the same all-ASCII form and
// two variant sets intersect exactly when the folded forms are equal.
func IsEquivalent(userAnswer, canonicalAnswer string) bool {
	return Fold(userAnswer) == Fold(canonicalAnswer)
}

// Fold returns the canonical representative of s: NFC, lower-cased,
// whitespace collapsed and umlauts replaced by their ASCII spelling.
func Fold(s string) string {
	return asciiFolder.Replace(lower(clean(s)))
}

// Variants returns every spelling IsEquivalent treats as the same answer as
// s: the trimmed original, its lower-case form, and the closure of single
// umlaut/ß substitutions over both. The result is sorted.
func Variants(s string) []string {
	base := clean(s)
	seen := map[string]struct{}{}
	queue := []string{base, lower(base)}

	for len(queue) > 0 && len(seen) < maxVariants {
		form := queue[0]
		queue = queue[1:]
		if _, ok := seen[form]; ok {
			continue
		}
		seen[form] = struct{}{}

		for _, sub := range Substitutions {
			queue = append(queue, replaceEachSite(form, sub.Letter, sub.ASCII)...)
			queue = append(queue, replaceEachSite(form, sub.ASCII, sub.Letter)...)
		}
	}

	out := make([]string, 0, len(seen))
	for form := range seen {
		out = append(out, form)
	}
	sort.Strings(out)
	return out
}

// Intersects reports whether two variant lists share a member.
func Intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// replaceEachSite returns one string per occurrence of old in s, each with
// only that occurrence replaced.
func replaceEachSite(s, old, new string) []string {
	var out []string
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], old)
		if i < 0 {
			break
		}
		at := offset + i
		out = append(out, s[:at]+new+s[at+len(old):])
		offset = at + 1
	}
	return out
}

// clean NFC-normalises s, trims it and collapses internal whitespace runs.
func clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// A Caser carries state, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.German).String(s)
}
