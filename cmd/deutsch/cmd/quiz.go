package cmd

import (
	"math/rand/v2"

	"deutsch/src/config"
	"deutsch/src/database"
	"deutsch/src/display"
	apperrors "deutsch/src/errors"
	"deutsch/src/grammar"
	"deutsch/src/quiz"
	"deutsch/src/vocab"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	quizRounds      int
	quizMaxAttempts int
	quizStrict      bool
	quizSeed        uint64
	quizNoHistory   bool
	quizCases       []string
	quizDirection   string
	quizCategory    string
)

// quizCmd represents the quiz command
var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Practice possessives or vocabulary",
	Long: `Interactive quizzes. Press Ctrl-D or Ctrl-C to stop.

Examples:
  deutsch quiz pronouns
  deutsch quiz pronouns --rounds 10 --case dat
  deutsch quiz vocab --direction english --category family`,
}

var quizPronounsCmd = &cobra.Command{
	Use:   "pronouns",
	Short: "Decline possessive determiners in the nominative and dative",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		lib, err := vocab.LoadLibrary()
		if err != nil {
			return err
		}

		opts, closeHistory, err := quizOptions(cmd, settings)
		if err != nil {
			return err
		}
		defer closeHistory()

		q := quiz.NewPronounQuiz(lib, opts)
		if len(quizCases) > 0 {
			q.Cases = nil
			for _, c := range quizCases {
				q.Cases = append(q.Cases, grammar.ParseCase(c))
			}
		}

		_, err = q.Run(cmd.Context())
		return err
	},
}

var quizVocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Translate vocabulary between German and English",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, err := quiz.ParseDirection(quizDirection)
		if err != nil {
			return err
		}
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		lib, err := vocab.LoadLibrary()
		if err != nil {
			return err
		}

		opts, closeHistory, err := quizOptions(cmd, settings)
		if err != nil {
			return err
		}
		defer closeHistory()

		_, err = quiz.NewVocabQuiz(lib, direction, quizCategory, opts).Run(cmd.Context())
		return err
	},
}

// quizOptions merges settings with the flags given on the command line
func quizOptions(cmd *cobra.Command, settings *config.Settings) (quiz.Options, func(), error) {
	opts := quiz.Options{
		Rounds:      settings.Quiz.Rounds,
		MaxAttempts: settings.Quiz.MaxAttempts,
		Strict:      settings.Quiz.Strict,
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
		Printer:     display.NewPrinter(cmd.OutOrStdout()),
		Log:         log,
	}

	flags := cmd.Flags()
	if quizRounds < 0 || quizMaxAttempts < 0 {
		return opts, nil, &apperrors.ValidationError{
			Field:   "rounds/max-attempts",
			Message: "must not be negative",
		}
	}
	if flags.Changed("rounds") {
		opts.Rounds = quizRounds
	}
	if flags.Changed("max-attempts") {
		opts.MaxAttempts = quizMaxAttempts
	}
	if flags.Changed("strict") {
		opts.Strict = quizStrict
	}
	if flags.Changed("seed") {
		opts.Rand = rand.New(rand.NewPCG(quizSeed, quizSeed))
	}

	noop := func() {}
	if quizNoHistory {
		return opts, noop, nil
	}

	db, err := openHistory(settings)
	if err != nil {
		// the quiz still works without history
		log.Warn("history disabled", zap.Error(err))
		return opts, noop, nil
	}
	opts.Recorder = db
	return opts, func() { db.Close() }, nil
}

// the history database records quiz sessions
var _ quiz.Recorder = (*database.HistoryDB)(nil)

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.AddCommand(quizPronounsCmd)
	quizCmd.AddCommand(quizVocabCmd)

	for _, c := range []*cobra.Command{quizPronounsCmd, quizVocabCmd} {
		c.Flags().IntVarP(&quizRounds, "rounds", "n", 5, "Number of questions (0 asks until input ends)")
		c.Flags().IntVar(&quizMaxAttempts, "max-attempts", 1, "Tries per question (0 repeats until correct)")
		c.Flags().Uint64Var(&quizSeed, "seed", 0, "Seed for a reproducible question order")
		c.Flags().BoolVar(&quizNoHistory, "no-history", false, "Do not record this session")
	}

	quizPronounsCmd.Flags().BoolVar(&quizStrict, "strict", false, "Reject nouns with an unknown gender instead of using no ending")
	quizPronounsCmd.Flags().StringSliceVar(&quizCases, "case", nil, "Cases to practice (nom, dat)")

	quizVocabCmd.Flags().StringVarP(&quizDirection, "direction", "d", string(quiz.GermanToEnglish), "german (German to English) or english (English to German)")
	quizVocabCmd.Flags().StringVar(&quizCategory, "category", "", "Only ask words from this category")
}
