package quiz

import (
	"context"
	"fmt"

	"deutsch/src/grammar"
	"deutsch/src/vocab"
)

// KindPronouns is the history kind of pronoun quiz sessions
const KindPronouns = "pronouns"

// PronounQuiz asks for possessive determiner + noun phrases in the
// nominative and dative.
type PronounQuiz struct {
	// Cases are the cases drawn from, nominative and dative by default
	Cases []grammar.Case

	lib      *vocab.Library
	decliner grammar.Decliner
	opts     Options
}

func NewPronounQuiz(lib *vocab.Library, opts Options) *PronounQuiz {
	return &PronounQuiz{
		Cases:    grammar.QuizCases,
		lib:      lib,
		decliner: grammar.Decliner{Strict: opts.Strict},
		opts:     opts,
	}
}

// Prompt formats the question shown for one round.
func Prompt(stem string, c grammar.Case, noun vocab.Noun) string {
	return fmt.Sprintf("%s %s (%s,%s) → ", stem, noun.Lemma, c, noun.Gender)
}

// Run plays the quiz until the rounds are done, input ends or ctx is
// cancelled.
func (q *PronounQuiz) Run(ctx context.Context) (*Summary, error) {
	s := newSession(ctx, KindPronouns, q.opts)
	r := s.opts.Rand
	cases := q.Cases
	if len(cases) == 0 {
		cases = grammar.QuizCases
	}

	for round := 1; !s.over(round); round++ {
		stem, err := q.lib.RandomStem(r)
		if err != nil {
			return s.finish(ctx, err)
		}
		c := cases[r.IntN(len(cases))]
		noun, err := q.lib.RandomNoun(r)
		if err != nil {
			return s.finish(ctx, err)
		}

		d, err := q.decliner.Decline(stem.Stem, c, noun.Gender, noun.Lemma)
		if err != nil {
			return s.finish(ctx, fmt.Errorf("declining %s %s: %w", stem.Stem, noun.Lemma, err))
		}

		if err := s.play(ctx, round, question{
			Prompt:   Prompt(stem.Stem, c, noun),
			Expected: d.Phrase,
			Rule:     d.Rule,
		}); err != nil {
			return s.finish(ctx, err)
		}
	}

	return s.finish(ctx, nil)
}
