package quiz

import (
	"context"
	"fmt"
	"strings"

	apperrors "deutsch/src/errors"
	"deutsch/src/vocab"
)

// KindVocab is the history kind of vocabulary quiz sessions
const KindVocab = "vocab"

// Direction is the language the vocabulary quiz shows.
type Direction string

const (
	// GermanToEnglish shows the German word and expects the English one
	GermanToEnglish Direction = "german"
	// EnglishToGerman shows the English word and expects German with article
	EnglishToGerman Direction = "english"
)

// ParseDirection accepts "german" or "english" in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case GermanToEnglish, EnglishToGerman:
		return d, nil
	}
	return "", &apperrors.ValidationError{
		Field:   "direction",
		Value:   s,
		Message: "type 'german' for German-to-English or 'english' for English-to-German",
	}
}

// VocabQuiz asks vocabulary entries in one direction.
type VocabQuiz struct {
	lib       *vocab.Library
	direction Direction
	category  string
	opts      Options
}

// NewVocabQuiz builds a quiz over lib, restricted to category when set.
func NewVocabQuiz(lib *vocab.Library, direction Direction, category string, opts Options) *VocabQuiz {
	return &VocabQuiz{
		lib:       lib,
		direction: direction,
		category:  category,
		opts:      opts,
	}
}

func (q *VocabQuiz) question(e vocab.Entry) question {
	if q.direction == EnglishToGerman {
		return question{
			Prompt:   fmt.Sprintf("What is the German (with correct gender) for '%s'? ", e.English),
			Expected: e.German,
		}
	}
	return question{
		Prompt:   fmt.Sprintf("What is the English for '%s'? ", e.German),
		Expected: e.English,
	}
}

// Run plays the quiz until the rounds are done, input ends or ctx is
// cancelled.
func (q *VocabQuiz) Run(ctx context.Context) (*Summary, error) {
	s := newSession(ctx, KindVocab, q.opts)

	for round := 1; !s.over(round); round++ {
		entry, err := q.lib.RandomEntry(s.opts.Rand, q.category)
		if err != nil {
			return s.finish(ctx, err)
		}
		if err := s.play(ctx, round, q.question(entry)); err != nil {
			return s.finish(ctx, err)
		}
	}

	return s.finish(ctx, nil)
}
