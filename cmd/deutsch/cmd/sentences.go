package cmd

import (
	"fmt"
	"strings"

	"deutsch/src/assistant"
	"deutsch/src/database"
	"deutsch/src/display"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const kindSentences = "sentences"

var sentencesFormat string

// sentencesCmd represents the sentences command
var sentencesCmd = &cobra.Command{
	Use:   "sentences",
	Short: "Generate and review practice sentences",
	Long: `Ask a local Ollama model for German-English sentence pairs that practise
a grammar point, and keep them in the history database.

Examples:
  deutsch sentences generate "dative with possessive pronouns"
  deutsch sentences list`,
}

// sentencesGenerateCmd represents the sentences generate command
var sentencesGenerateCmd = &cobra.Command{
	Use:   "generate <instruction...>",
	Short: "Generate sentence pairs for a grammar point",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instruction := strings.TrimSpace(strings.Join(args, " "))
		if instruction == "" {
			return fmt.Errorf("instruction must not be empty")
		}

		settings, err := loadSettings()
		if err != nil {
			return err
		}
		client := assistant.NewOllamaClient(&settings.Ollama, log)

		pairs, err := client.GenerateSentences(cmd.Context(), instruction)
		if err != nil {
			return fmt.Errorf("is Ollama running at %s? %w", settings.Ollama.URL, err)
		}

		db, err := openHistory(settings)
		if err != nil {
			return err
		}
		defer db.Close()

		sentences := make([]database.Sentence, 0, len(pairs))
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			sentences = append(sentences, database.Sentence{German: p.German, English: p.English})
			rows = append(rows, []string{p.German, p.English})
		}

		total, err := db.SaveSentences(cmd.Context(), instruction, sentences)
		if err != nil {
			return err
		}
		if err := db.LogAssistant(cmd.Context(), kindSentences, client.Model(), instruction, fmt.Sprintf("%d pairs", len(pairs))); err != nil {
			log.Warn("failed to log assistant response", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		if err := display.RenderTable(out, instruction, []string{"Deutsch", "English"}, rows, sentencesFormat); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Generated %d new sentence pairs\n", display.MarkCorrect, len(pairs))
		fmt.Fprintf(out, "%s Total sentences in database: %d\n", display.MarkCorrect, total)
		return nil
	},
}

// sentencesListCmd represents the sentences list command
var sentencesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored practice sentences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		sentences, err := db.ListSentences(cmd.Context())
		if err != nil {
			return err
		}
		if len(sentences) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sentences in database yet")
			return nil
		}

		rows := make([][]string, 0, len(sentences))
		for _, s := range sentences {
			rows = append(rows, []string{s.German, s.English, truncate(s.Instruction, 40)})
		}
		return display.RenderTable(cmd.OutOrStdout(), fmt.Sprintf("Sentences (%d)", len(rows)),
			[]string{"Deutsch", "English", "Practising"}, rows, sentencesFormat)
	},
}

func init() {
	rootCmd.AddCommand(sentencesCmd)
	sentencesCmd.AddCommand(sentencesGenerateCmd)
	sentencesCmd.AddCommand(sentencesListCmd)

	sentencesCmd.PersistentFlags().StringVarP(&sentencesFormat, "format", "f", display.FormatGrid, "Table format: grid or markdown")
}
