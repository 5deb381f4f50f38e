package cmd

import (
	"errors"
	"fmt"
	"strings"

	"deutsch/src/answer"
	"deutsch/src/display"
	"deutsch/src/grammar"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrWrongAnswer is returned by check when the answer does not match
var ErrWrongAnswer = errors.New("answer does not match")

var (
	declineStrict bool
	checkVariants bool
)

// declineCmd represents the decline command
var declineCmd = &cobra.Command{
	Use:   "decline <stem> <case> <gender> <noun>",
	Short: "Decline a possessive determiner for a noun",
	Long: `Decline a possessive determiner stem for case and gender.

Cases: nom, dat. Genders: m, f, n, pl (long names work too).

Examples:
  deutsch decline dein dat f Katze
  deutsch decline euer nominativ maskulin Hund`,
	Args: cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict := declineStrict
		if !cmd.Flags().Changed("strict") {
			if settings, err := loadSettings(); err == nil {
				strict = settings.Quiz.Strict
			}
		}

		c := grammar.ParseCase(args[1])
		g := grammar.ParseGender(args[2])
		noun := strings.Join(args[3:], " ")

		d, err := grammar.Decliner{Strict: strict}.Decline(args[0], c, g, noun)
		if err != nil {
			return err
		}
		if d.Fallback {
			log.Debug("no ending in table", zap.String("case", string(c)), zap.String("gender", string(g)))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, d.Phrase)
		fmt.Fprintln(out, d.Rule)
		return nil
	},
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <answer> <expected>",
	Short: "Check whether an answer matches, allowing umlaut spellings",
	Long: `Check an answer the way the quizzes grade it. Letter case, extra spaces
and the spellings ä/ae, ö/oe, ü/ue, ß/ss are ignored. Exits with status 1
when the answer is wrong.

Examples:
  deutsch check "Fuss" "Fuß"
  deutsch check --variants "Übergröße" "uebergroesse"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := display.NewPrinter(cmd.OutOrStdout())

		if checkVariants {
			for _, s := range args {
				p.Muted(fmt.Sprintf("%q: %s", s, strings.Join(answer.Variants(s), " | ")))
			}
		}

		match := answer.Grade(args[0], args[1])
		if !match.Correct() {
			p.Wrong(args[1], match.String())
			// the ❌ line already says it
			cmd.SilenceErrors = true
			return ErrWrongAnswer
		}
		p.Correct(match.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(declineCmd)
	rootCmd.AddCommand(checkCmd)

	declineCmd.Flags().BoolVar(&declineStrict, "strict", false, "Reject unknown cases and genders")
	checkCmd.Flags().BoolVar(&checkVariants, "variants", false, "Show every spelling variant considered")
}
