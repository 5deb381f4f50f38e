package grammar

import (
	"fmt"

	apperrors "deutsch/src/errors"
)

type endingKey struct {
	Case   Case
	Gender Gender
}

// ein-word endings for possessive determiners
var endings = map[endingKey]string{
	{Nominative, Masculine}: "",
	{Nominative, Feminine}:  "e",
	{Nominative, Neuter}:    "",
	{Nominative, Plural}:    "e",
	{Dative, Masculine}:     "em",
	{Dative, Feminine}:      "er",
	{Dative, Neuter}:        "em",
	{Dative, Plural}:        "en",
}

// irregularStems rewrites stems whose vowel contracts before an ending.
// New exceptions are added here; there is no general vowel rule.
var irregularStems = map[string]string{
	"euer": "eur",
}

// NoEnding is how the rule text shows an empty suffix.
const NoEnding = "∅ (no ending)"

// Declension is an inflected possessive determiner followed by its noun.
type Declension struct {
	Phrase   string // determiner + " " + noun
	Rule     string // human readable explanation of the ending
	Stem     string // stem after irregular rewriting
	Suffix   string
	Case     Case
	Gender   Gender
	Fallback bool // no table entry for (Case, Gender); empty suffix used
}

// Determiner is the inflected possessive without the noun.
func (d Declension) Determiner() string {
	return d.Stem + d.Suffix
}

// Ending looks up the suffix for a case and gender. ok is false when the
// pair is not in the table.
func Ending(c Case, g Gender) (suffix string, ok bool) {
	suffix, ok = endings[endingKey{c, g}]
	return suffix, ok
}

// NormalizeStem applies the irregular-stem exception table.
func NormalizeStem(stem string) string {
	if rewritten, ok := irregularStems[stem]; ok {
		return rewritten
	}
	return stem
}

// Decline inflects stem for case c and gender g and appends noun. It never
// fails: unknown pairs decline with an empty suffix.
func Decline(stem string, c Case, g Gender, noun string) Declension {
	d := Declension{
		Stem:   NormalizeStem(stem),
		Case:   c,
		Gender: g,
	}

	if suffix, ok := Ending(c, g); ok {
		d.Suffix = suffix
	} else {
		// Fallback: pair missing from the ending table
		d.Suffix = ""
		d.Fallback = true
	}

	d.Phrase = d.Determiner() + " " + noun
	d.Rule = ruleText(c, g, d.Suffix)
	return d
}

func ruleText(c Case, g Gender, suffix string) string {
	shown := suffix
	if shown == "" {
		shown = NoEnding
	}
	return fmt.Sprintf("ein-word ending for %s+%s is -%s", c, g, shown)
}

// Decliner declines with optional strict validation of case and gender.
type Decliner struct {
	// Strict rejects cases and genders outside the declared sets instead of
	// falling back to the empty suffix.
	Strict bool
}

// Decline behaves like the package-level Decline. In strict mode an
// unrecognised case or gender returns a *errors.ValidationError.
func (d Decliner) Decline(stem string, c Case, g Gender, noun string) (Declension, error) {
	if d.Strict {
		if !c.Known() {
			return Declension{}, &apperrors.ValidationError{
				Field:   "case",
				Value:   string(c),
				Message: "expected nom or dat",
				Err:     apperrors.ErrUnknownCase,
			}
		}
		if !g.Known() {
			return Declension{}, &apperrors.ValidationError{
				Field:   "gender",
				Value:   string(g),
				Message: "expected m, f, n or pl",
				Err:     apperrors.ErrUnknownGender,
			}
		}
	}
	return Decline(stem, c, g, noun), nil
}
