// Package quiz runs the interactive pronoun and vocabulary quizzes.
package quiz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"deutsch/src/answer"
	"deutsch/src/database"
	"deutsch/src/display"

	"go.uber.org/zap"
)

// Recorder receives quiz sessions and attempts. The history database
// implements it.
type Recorder interface {
	StartSession(ctx context.Context, kind string) (string, error)
	RecordAttempt(ctx context.Context, a database.Attempt) error
	FinishSession(ctx context.Context, id string, rounds, correct int) error
}

// Options control one quiz run.
type Options struct {
	// Rounds is the number of questions; 0 asks until input ends
	Rounds int
	// MaxAttempts is the number of tries per question; 0 repeats until the
	// answer is correct
	MaxAttempts int
	Strict      bool
	Rand        *rand.Rand
	In          io.Reader
	Out         io.Writer
	Printer     *display.Printer
	Recorder    Recorder
	Log         *zap.Logger
}

// Summary is the outcome of a quiz run.
type Summary struct {
	SessionID string
	Rounds    int // questions asked
	Correct   int // questions eventually answered correctly
	Attempts  int // answers typed
	Quit      bool
}

// Bye is printed when input ends or the run is interrupted
const Bye = "Bye"

type question struct {
	Prompt   string
	Expected string
	Rule     string
}

// inputLine is one line of input, or the error that stopped reading
type inputLine struct {
	text string
	err  error
}

type session struct {
	kind  string
	opts  Options
	out   *display.Printer
	lines <-chan inputLine
	done  chan struct{}
	id    string
	sum   Summary
}

func newSession(ctx context.Context, kind string, opts Options) *session {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>32))
	}
	out := opts.Printer
	if out == nil {
		out = display.NewPrinter(opts.Out)
	}

	s := &session{
		kind: kind,
		opts: opts,
		out:  out,
		done: make(chan struct{}),
	}
	s.lines = readLines(opts.In, s.done)

	if opts.Recorder != nil {
		id, err := opts.Recorder.StartSession(ctx, kind)
		if err != nil {
			opts.Log.Warn("quiz history unavailable", zap.Error(err))
			s.opts.Recorder = nil
		} else {
			s.id = id
		}
	}
	s.sum.SessionID = s.id
	return s
}

// readLines feeds input lines to a channel so a blocked read does not keep
// the quiz from noticing cancellation. The reader stops once done is closed.
// A read error is delivered as the last line.
func readLines(r io.Reader, done <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- inputLine{text: scanner.Text()}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-done:
			}
		}
	}()
	return lines
}

func (s *session) over(round int) bool {
	return s.opts.Rounds > 0 && round > s.opts.Rounds
}

func (s *session) ask(ctx context.Context, prompt string) (string, error) {
	s.out.Prompt(prompt)
	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		if line.err != nil {
			return "", fmt.Errorf("failed to read answer: %w", line.err)
		}
		return line.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// play asks q until it is answered correctly or the tries run out.
func (s *session) play(ctx context.Context, round int, q question) error {
	s.sum.Rounds++
	for try := 1; s.opts.MaxAttempts == 0 || try <= s.opts.MaxAttempts; try++ {
		reply, err := s.ask(ctx, q.Prompt)
		if err != nil {
			if try == 1 {
				// never answered, so it does not count
				s.sum.Rounds--
			}
			return err
		}

		match := answer.Grade(reply, q.Expected)
		s.sum.Attempts++
		s.record(ctx, database.Attempt{
			SessionID: s.id,
			Round:     round,
			Try:       try,
			Prompt:    q.Prompt,
			Expected:  q.Expected,
			Answer:    reply,
			Correct:   match.Correct(),
			Rule:      q.Rule,
		})

		if match.Correct() {
			s.sum.Correct++
			s.out.Correct(q.Rule)
			return nil
		}

		s.out.Wrong(q.Expected, q.Rule)
		if s.opts.MaxAttempts == 0 || try < s.opts.MaxAttempts {
			s.out.Muted("Write it again:")
		}
	}
	return nil
}

func (s *session) record(ctx context.Context, a database.Attempt) {
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.RecordAttempt(ctx, a); err != nil {
		s.opts.Log.Warn("failed to record attempt", zap.Error(err))
	}
}

// finish closes the session. Input end and cancellation are a normal way to
// stop and are not reported as errors.
func (s *session) finish(ctx context.Context, err error) (*Summary, error) {
	close(s.done)

	if err != nil && !isStop(err) {
		return &s.sum, err
	}
	if err != nil {
		s.sum.Quit = true
		s.out.Println()
		s.out.Println(Bye)
	}

	s.out.Score(s.sum.Correct, s.sum.Rounds)

	if s.opts.Recorder != nil {
		// cancellation must not lose the final score
		if ferr := s.opts.Recorder.FinishSession(context.WithoutCancel(ctx), s.id, s.sum.Rounds, s.sum.Correct); ferr != nil {
			s.opts.Log.Warn("failed to finish session", zap.Error(ferr))
		}
	}

	s.opts.Log.Debug("quiz finished",
		zap.String("kind", s.kind),
		zap.String("session", s.id),
		zap.Int("rounds", s.sum.Rounds),
		zap.Int("correct", s.sum.Correct),
		zap.Bool("quit", s.sum.Quit))
	return &s.sum, nil
}

func isStop(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
