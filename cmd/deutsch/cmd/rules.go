package cmd

import (
	"fmt"

	"deutsch/src/display"
	"deutsch/src/grammar"

	"github.com/spf13/cobra"
)

var (
	rulesName   string
	rulesFormat string
	rulesList   bool
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show German grammar reference tables",
	Long: `Show grammar reference tables: cases, articles, prepositions, pronouns,
modal verbs, word order, conjugation, separable verbs, plurals and the
possessive endings the quiz uses.

Examples:
  deutsch rules --list
  deutsch rules --rule dativ_prepositions
  deutsch rules --rule possessive_endings --format markdown`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if rulesList {
			for _, name := range grammar.RuleSetNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		names := grammar.RuleSetNames()
		if rulesName != "" {
			names = []string{rulesName}
		}

		for i, name := range names {
			table, err := grammar.RuleSet(name)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := display.RenderTable(out, table.Title, table.Headers, table.Rows, rulesFormat); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesName, "rule", "r", "", "Rule set to show (default: all)")
	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", display.FormatGrid, "Table format: grid or markdown")
	rulesCmd.Flags().BoolVarP(&rulesList, "list", "l", false, "List rule set names")
}
