package quiz

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"deutsch/src/database"
	"deutsch/src/display"
	apperrors "deutsch/src/errors"
	"deutsch/src/grammar"
	"deutsch/src/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []database.Attempt
	finished bool
	rounds   int
	correct  int
}

func (f *fakeRecorder) StartSession(ctx context.Context, kind string) (string, error) {
	return "sess-1", nil
}

func (f *fakeRecorder) RecordAttempt(ctx context.Context, a database.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeRecorder) FinishSession(ctx context.Context, id string, rounds, correct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = true
	f.rounds = rounds
	f.correct = correct
	return nil
}

// catLibrary always produces "dein Katze" questions
func catLibrary() *vocab.Library {
	return &vocab.Library{
		Nouns:       []vocab.Noun{{Lemma: "Katze", Gender: grammar.Feminine}},
		Possessives: []vocab.Possessive{{Stem: "dein"}},
		Vocabulary:  []vocab.Entry{{Category: "town", German: "die Straße", English: "street"}},
	}
}

func testOptions(input string, out *bytes.Buffer) Options {
	return Options{
		Rounds:      1,
		MaxAttempts: 1,
		Rand:        rand.New(rand.NewPCG(1, 2)),
		In:          strings.NewReader(input),
		Printer:     display.NewPlainPrinter(out),
	}
}

func dativeQuiz(lib *vocab.Library, opts Options) *PronounQuiz {
	q := NewPronounQuiz(lib, opts)
	q.Cases = []grammar.Case{grammar.Dative}
	return q
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	got := Prompt("dein", grammar.Dative, vocab.Noun{Lemma: "Katze", Gender: grammar.Feminine})
	assert.Equal(t, "dein Katze (dat,f) → ", got)
}

func TestPronounQuizAcceptsVariants(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := testOptions("deiner katze\n  Deiner   Katze \n", &out)
	opts.Rounds = 2

	sum, err := dativeQuiz(catLibrary(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Rounds)
	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 2, sum.Attempts)
	assert.False(t, sum.Quit)
	assert.Equal(t, 2, strings.Count(out.String(), "✅ ein-word ending for dat+f is -er"))
	assert.Contains(t, out.String(), "dein Katze (dat,f) → ")
	assert.Contains(t, out.String(), "Score: 2/2")
}

func TestPronounQuizWrongAnswerShowsExpectedAndRule(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sum, err := dativeQuiz(catLibrary(), testOptions("deine Katze\n", &out)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Rounds)
	assert.Zero(t, sum.Correct)
	assert.Contains(t, out.String(), "❌ deiner Katze ein-word ending for dat+f is -er")
	assert.NotContains(t, out.String(), "Write it again")
	assert.Contains(t, out.String(), "Score: 0/1")
}

func TestRepeatUntilCorrect(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := testOptions("deine Katze\ndeinem Katze\ndeiner Katze\n", &out)
	opts.MaxAttempts = 0
	rec := &fakeRecorder{}
	opts.Recorder = rec

	sum, err := dativeQuiz(catLibrary(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Rounds)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 3, sum.Attempts)
	assert.Equal(t, "sess-1", sum.SessionID)
	assert.Equal(t, 2, strings.Count(out.String(), "Write it again:"))

	require.Len(t, rec.attempts, 3)
	for i, a := range rec.attempts {
		assert.Equal(t, "sess-1", a.SessionID)
		assert.Equal(t, 1, a.Round)
		assert.Equal(t, i+1, a.Try)
		assert.Equal(t, "deiner Katze", a.Expected)
		assert.Equal(t, "ein-word ending for dat+f is -er", a.Rule)
	}
	assert.False(t, rec.attempts[0].Correct)
	assert.True(t, rec.attempts[2].Correct)
	assert.True(t, rec.finished)
	assert.Equal(t, 1, rec.rounds)
	assert.Equal(t, 1, rec.correct)
}

func TestLimitedAttempts(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := testOptions("a\nb\ndeiner Katze\n", &out)
	opts.MaxAttempts = 2

	sum, err := dativeQuiz(catLibrary(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Attempts)
	assert.Zero(t, sum.Correct)
	assert.Equal(t, 1, strings.Count(out.String(), "Write it again:"))
}

func TestInputEndSaysBye(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := testOptions("deiner Katze\n", &out)
	opts.Rounds = 3
	rec := &fakeRecorder{}
	opts.Recorder = rec

	sum, err := dativeQuiz(catLibrary(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.Quit)
	assert.Equal(t, 1, sum.Rounds)
	assert.Equal(t, 1, sum.Correct)
	assert.Contains(t, out.String(), "\n"+Bye+"\n")
	assert.True(t, rec.finished)
	assert.Equal(t, 1, rec.rounds)
}

func TestCancellationSaysBye(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	var out bytes.Buffer
	opts := testOptions("", &out)
	opts.In = pr

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := dativeQuiz(catLibrary(), opts).Run(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Quit)
	assert.Zero(t, sum.Rounds)
	assert.Contains(t, out.String(), Bye)
}

func TestPronounQuizStrictRejectsUnknownGender(t *testing.T) {
	t.Parallel()

	lib := catLibrary()
	lib.Nouns = []vocab.Noun{{Lemma: "Ding", Gender: grammar.Gender("x")}}

	var out bytes.Buffer
	opts := testOptions("dein Ding\n", &out)
	opts.Strict = true

	_, err := dativeQuiz(lib, opts).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownGender)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPronounQuizLenientFallsBack(t *testing.T) {
	t.Parallel()

	lib := catLibrary()
	lib.Nouns = []vocab.Noun{{Lemma: "Ding", Gender: grammar.Gender("x")}}

	var out bytes.Buffer
	sum, err := dativeQuiz(lib, testOptions("dein Ding\n", &out)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Correct)
	assert.Contains(t, out.String(), "is -"+grammar.NoEnding)
}

func TestPronounQuizEmptyLibrary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := NewPronounQuiz(&vocab.Library{}, testOptions("", &out)).Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoStems)
}

func TestPronounQuizIsReproducible(t *testing.T) {
	t.Parallel()

	lib, err := vocab.LoadLibraryFrom("")
	require.NoError(t, err)

	run := func() string {
		var out bytes.Buffer
		opts := testOptions(strings.Repeat("?\n", 5), &out)
		opts.Rounds = 5
		opts.Rand = rand.New(rand.NewPCG(42, 42))
		_, err := NewPronounQuiz(lib, opts).Run(context.Background())
		require.NoError(t, err)
		return out.String()
	}

	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, 5, strings.Count(first, display.MarkWrong))
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"german", GermanToEnglish, false},
		{" English ", EnglishToGerman, false},
		{"french", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabQuizDirections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		direction Direction
		input     string
		prompt    string
	}{
		{"german to english", GermanToEnglish, "Street\n", "What is the English for 'die Straße'? "},
		{"english to german", EnglishToGerman, "die strasse\n", "What is the German (with correct gender) for 'street'? "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			sum, err := NewVocabQuiz(catLibrary(), tt.direction, "", testOptions(tt.input, &out)).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Correct)
			assert.Contains(t, out.String(), tt.prompt)
			assert.Contains(t, out.String(), display.MarkCorrect)
		})
	}
}

func TestVocabQuizEndlessUntilInputEnds(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := testOptions("street\nroad\nstreet\n", &out)
	opts.Rounds = 0
	opts.MaxAttempts = 0

	sum, err := NewVocabQuiz(catLibrary(), GermanToEnglish, "town", opts).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.Quit)
	assert.Equal(t, 2, sum.Rounds)
	assert.Equal(t, 2, sum.Correct)
	assert.Equal(t, 3, sum.Attempts)
	assert.Contains(t, out.String(), "❌ street")
}

func TestVocabQuizUnknownCategory(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := NewVocabQuiz(catLibrary(), GermanToEnglish, "space", testOptions("", &out)).Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoVocabulary)
}

func TestFinishedRunsStopReadingInput(t *testing.T) {
	// not parallel: counts goroutines
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		var out bytes.Buffer
		sum, err := dativeQuiz(catLibrary(), testOptions("deiner Katze\nextra\nextra\n", &out)).Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, sum.Correct)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReadErrorEndsQuizWithError(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk gone")
	tests := []struct {
		name string
		in   io.Reader
		want error
	}{
		{
			name: "line too long",
			in:   strings.NewReader(strings.Repeat("a", bufio.MaxScanTokenSize+1) + "\n"),
			want: bufio.ErrTooLong,
		},
		{
			name: "reader fails",
			in:   iotest.ErrReader(errDisk),
			want: errDisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			opts := testOptions("", &out)
			opts.In = tt.in

			sum, err := dativeQuiz(catLibrary(), opts).Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, sum.Quit)
			assert.Equal(t, 0, sum.Rounds)
			assert.NotContains(t, out.String(), Bye)
		})
	}
}
