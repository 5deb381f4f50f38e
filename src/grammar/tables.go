package grammar

import (
	"fmt"
	"sort"

	apperrors "deutsch/src/errors"
)

// CaseInfo describes one of the four German cases.
type CaseInfo struct {
	Name     string
	Role     string
	Articles [4]string // definite article per Genders order
	Example  string
}

// Pair is a German word with its English gloss.
type Pair struct {
	German  string
	English string
}

// PronounForm is a personal pronoun in one case.
type PronounForm struct {
	Case    string
	Pronoun string
	Meaning string
}

// SeparableVerb is a verb with a detachable prefix and an example sentence.
type SeparableVerb struct {
	Infinitive string
	Meaning    string
	Example    string
}

// PluralForm pairs a singular with its plural.
type PluralForm struct {
	Singular string
	Plural   string
	Meaning  string
}

var cases = []CaseInfo{
	{
		Name:     "Nominativ",
		Role:     "Subject (who or what is performing the action)",
		Articles: [4]string{"der", "die", "das", "die"},
		Example:  "Der Mann liest. (The man reads.)",
	},
	{
		Name:     "Akkusativ",
		Role:     "Direct object (who or what is receiving the action)",
		Articles: [4]string{"den", "die", "das", "die"},
		Example:  "Ich sehe den Hund. (I see the dog.)",
	},
	{
		Name:     "Dativ",
		Role:     "Indirect object (to whom/for whom something is done)",
		Articles: [4]string{"dem", "der", "dem", "den"},
		Example:  "Ich gebe dem Kind ein Buch. (I give the child a book.)",
	},
	{
		Name:     "Genitiv",
		Role:     "Possession or relationship (whose)",
		Articles: [4]string{"des", "der", "des", "der"},
		Example:  "Das Auto des Mannes. (The man's car.)",
	},
}

var indefiniteArticles = [3]string{"ein", "eine", "ein"}

var accusativePrepositions = []Pair{
	{"durch", "through"},
	{"für", "for"},
	{"ohne", "without"},
	{"gegen", "against"},
	{"um", "around/about"},
}

var dativePrepositions = []Pair{
	{"aus", "from/out of"},
	{"bei", "at/near/with"},
	{"mit", "with"},
	{"nach", "after/to"},
	{"seit", "since/for"},
	{"von", "from"},
	{"zu", "to/at"},
}

var wordOrder = []Pair{
	{"Ich liebe den Film.", "simple sentence: verb in second position"},
	{"Liebst du den Film?", "question: verb first"},
	{"Ich weiß, dass du den Film liebst.", "subordinate clause: verb last"},
}

var conjugationLieben = []Pair{
	{"ich", "liebe"},
	{"du", "liebst"},
	{"er/sie/es", "liebt"},
	{"wir", "lieben"},
	{"ihr", "liebt"},
	{"sie/Sie", "lieben"},
}

var separableVerbs = []SeparableVerb{
	{"ankommen", "to arrive", "Er kommt um 8 Uhr an. (He arrives at 8 o'clock.)"},
	{"aufstehen", "to get up", "Ich stehe früh auf. (I get up early.)"},
	{"mitbringen", "to bring with", "Sie bringt ihren Freund mit. (She brings her friend along.)"},
}

var personalPronouns = []PronounForm{
	{"Nominativ", "ich", "I"},
	{"Nominativ", "du", "you"},
	{"Nominativ", "er", "he"},
	{"Nominativ", "sie", "she"},
	{"Nominativ", "es", "it"},
	{"Nominativ", "wir", "we"},
	{"Nominativ", "ihr", "you all"},
	{"Nominativ", "sie", "they"},
	{"Nominativ", "Sie", "you formal"},
	{"Akkusativ", "mich", "me"},
	{"Akkusativ", "dich", "you"},
	{"Akkusativ", "ihn", "him"},
	{"Akkusativ", "sie", "her"},
	{"Akkusativ", "es", "it"},
	{"Akkusativ", "uns", "us"},
	{"Akkusativ", "euch", "you all"},
	{"Akkusativ", "sie", "them"},
	{"Akkusativ", "Sie", "you formal"},
	{"Dativ", "mir", "to me"},
	{"Dativ", "dir", "to you"},
	{"Dativ", "ihm", "to him"},
	{"Dativ", "ihr", "to her"},
	{"Dativ", "ihm", "to it"},
	{"Dativ", "uns", "to us"},
	{"Dativ", "euch", "to you all"},
	{"Dativ", "ihnen", "to them"},
	{"Dativ", "Ihnen", "to you formal"},
}

var modalVerbs = []Pair{
	{"können", "can, to be able to"},
	{"müssen", "must, to have to"},
	{"wollen", "to want to"},
	{"sollen", "should, ought to"},
	{"dürfen", "may, to be allowed to"},
	{"mögen", "to like"},
}

var pluralForms = []PluralForm{
	{"die Katze", "die Katzen", "the cat → the cats"},
	{"das Kind", "die Kinder", "the child → the children"},
	{"die Blume", "die Blumen", "the flower → the flowers"},
	{"das Auto", "die Autos", "the car → the cars"},
	{"der Lehrer", "die Lehrer", "the teacher → the teachers"},
}

// Table is a reference table ready for display.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

var ruleSets = map[string]func() Table{
	"cases":                  casesTable,
	"articles":               articlesTable,
	"akkusativ_prepositions": func() Table { return pairTable("Akkusativ prepositions", "Preposition", "Meaning", accusativePrepositions) },
	"dativ_prepositions":     func() Table { return pairTable("Dativ prepositions", "Preposition", "Meaning", dativePrepositions) },
	"pronouns":               pronounsTable,
	"modal_verbs":            func() Table { return pairTable("Modal verbs", "Verb", "Meaning", modalVerbs) },
	"word_order":             func() Table { return pairTable("Word order", "Example", "Pattern", wordOrder) },
	"conjugation":            func() Table { return pairTable("Present tense: lieben", "Person", "Form", conjugationLieben) },
	"separable_verbs":        separableVerbsTable,
	"plurals":                pluralsTable,
	"possessive_endings":     possessiveEndingsTable,
}

// RuleSetNames returns the names accepted by RuleSet, sorted.
func RuleSetNames() []string {
	names := make([]string, 0, len(ruleSets))
	for name := range ruleSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RuleSet returns the named reference table.
func RuleSet(name string) (Table, error) {
	build, ok := ruleSets[name]
	if !ok {
		return Table{}, &apperrors.ValidationError{
			Field:   "rule",
			Value:   name,
			Message: fmt.Sprintf("expected one of %v", RuleSetNames()),
		}
	}
	return build(), nil
}

// DefiniteArticle returns the definite article for a case name and gender.
func DefiniteArticle(caseName string, g Gender) (string, bool) {
	idx := genderIndex(g)
	if idx < 0 {
		return "", false
	}
	for _, c := range cases {
		if c.Name == caseName {
			return c.Articles[idx], true
		}
	}
	return "", false
}

func genderIndex(g Gender) int {
	for i, known := range Genders {
		if known == g {
			return i
		}
	}
	return -1
}

func casesTable() Table {
	t := Table{Title: "Cases", Headers: []string{"Case", "Role", "Articles", "Example"}}
	for _, c := range cases {
		articles := fmt.Sprintf("%s: %s, %s: %s, %s: %s, %s: %s",
			Masculine.Label(), c.Articles[0], Feminine.Label(), c.Articles[1],
			Neuter.Label(), c.Articles[2], Plural.Label(), c.Articles[3])
		t.Rows = append(t.Rows, []string{c.Name, c.Role, articles, c.Example})
	}
	return t
}

func articlesTable() Table {
	t := Table{Title: "Articles", Headers: []string{"Article Type", "Gender/Number", "Article"}}
	for i, g := range Genders {
		t.Rows = append(t.Rows, []string{"Definite", g.Label(), cases[0].Articles[i]})
	}
	for i, g := range Genders[:3] {
		t.Rows = append(t.Rows, []string{"Indefinite", g.Label(), indefiniteArticles[i]})
	}
	return t
}

func pairTable(title, left, right string, pairs []Pair) Table {
	t := Table{Title: title, Headers: []string{left, right}}
	for _, p := range pairs {
		t.Rows = append(t.Rows, []string{p.German, p.English})
	}
	return t
}

func pronounsTable() Table {
	t := Table{Title: "Personal pronouns", Headers: []string{"Case", "Pronoun", "Meaning"}}
	for _, p := range personalPronouns {
		t.Rows = append(t.Rows, []string{p.Case, p.Pronoun, p.Meaning})
	}
	return t
}

func separableVerbsTable() Table {
	t := Table{Title: "Separable verbs", Headers: []string{"Verb", "Meaning", "Example"}}
	for _, v := range separableVerbs {
		t.Rows = append(t.Rows, []string{v.Infinitive, v.Meaning, v.Example})
	}
	return t
}

func pluralsTable() Table {
	t := Table{Title: "Plural forms", Headers: []string{"Singular", "Plural", "Meaning"}}
	for _, p := range pluralForms {
		t.Rows = append(t.Rows, []string{p.Singular, p.Plural, p.Meaning})
	}
	return t
}

func possessiveEndingsTable() Table {
	t := Table{Title: "Possessive endings", Headers: []string{"Case", "Gender", "Ending", "Example"}}
	for _, c := range QuizCases {
		for _, g := range Genders {
			suffix, _ := Ending(c, g)
			shown := "-" + suffix
			if suffix == "" {
				shown = "-∅"
			}
			t.Rows = append(t.Rows, []string{c.Label(), g.Label(), shown, "mein" + suffix})
		}
	}
	return t
}
