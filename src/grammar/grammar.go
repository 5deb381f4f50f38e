// Package grammar holds the German grammar knowledge the quizzes rely on:
// possessive-determiner declension and the static reference tables.
package grammar

import "strings"

// Case is a grammatical case. Only nominative and dative are quizzed; any
// other value is still a valid Case and declines with the empty ending.
type Case string

const (
	Nominative Case = "nom"
	Dative     Case = "dat"
)

// QuizCases are the cases the pronoun quiz draws from
var QuizCases = []Case{Nominative, Dative}

// Gender is the grammatical gender of a noun, with plural as a fourth class.
type Gender string

const (
	Masculine Gender = "m"
	Feminine  Gender = "f"
	Neuter    Gender = "n"
	Plural    Gender = "pl"
)

// Genders lists every recognised gender in table order
var Genders = []Gender{Masculine, Feminine, Neuter, Plural}

var caseAliases = map[string]Case{
	"nom":        Nominative,
	"nominativ":  Nominative,
	"nominative": Nominative,
	"dat":        Dative,
	"dativ":      Dative,
	"dative":     Dative,
}

var genderAliases = map[string]Gender{
	"m":         Masculine,
	"masc":      Masculine,
	"maskulin":  Masculine,
	"masculine": Masculine,
	"der":       Masculine,
	"f":         Feminine,
	"fem":       Feminine,
	"feminin":   Feminine,
	"feminine":  Feminine,
	"die":       Feminine,
	"n":         Neuter,
	"neut":      Neuter,
	"neutrum":   Neuter,
	"neuter":    Neuter,
	"das":       Neuter,
	"pl":        Plural,
	"plural":    Plural,
}

// ParseCase maps user spellings ("dat", "Dativ", "dative") onto a Case.
// Unrecognised input is returned lower-cased rather than rejected.
func ParseCase(s string) Case {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := caseAliases[key]; ok {
		return c
	}
	return Case(key)
}

// ParseGender maps user spellings ("f", "feminin", "die") onto a Gender.
// Unrecognised input is returned lower-cased rather than rejected.
func ParseGender(s string) Gender {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := genderAliases[key]; ok {
		return g
	}
	return Gender(key)
}

// Known reports whether c is one of the declared cases.
func (c Case) Known() bool {
	return c == Nominative || c == Dative
}

// Known reports whether g is one of the declared genders.
func (g Gender) Known() bool {
	switch g {
	case Masculine, Feminine, Neuter, Plural:
		return true
	}
	return false
}

// Label returns the German name of the case.
func (c Case) Label() string {
	switch c {
	case Nominative:
		return "Nominativ"
	case Dative:
		return "Dativ"
	}
	return string(c)
}

// Label returns the German name of the gender.
func (g Gender) Label() string {
	switch g {
	case Masculine:
		return "Maskulin"
	case Feminine:
		return "Feminin"
	case Neuter:
		return "Neutrum"
	case Plural:
		return "Plural"
	}
	return string(g)
}
