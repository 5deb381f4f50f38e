package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"deutsch/src/config"
	"deutsch/src/display"
	"deutsch/src/vocab"

	"github.com/spf13/cobra"
)

var (
	vocabCategory string
	vocabNouns    bool
	vocabFormat   string
)

// vocabCmd represents the vocab command
var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Show or extend the word lists",
	Long: `Show or extend the nouns and vocabulary the quizzes use. Files in the
config directory (nouns.toml, possessives.toml, vocabulary.toml) replace the
built-in lists.

Examples:
  deutsch vocab list
  deutsch vocab list --category family
  deutsch vocab list --nouns
  deutsch vocab import nouns.xlsx`,
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vocabulary entries or nouns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := vocab.LoadLibrary()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if vocabNouns {
			rows := make([][]string, 0, len(lib.Nouns))
			for _, n := range lib.Nouns {
				rows = append(rows, []string{n.Lemma, n.Gender.Label(), n.English})
			}
			return display.RenderTable(out, fmt.Sprintf("Nouns (%d)", len(rows)),
				[]string{"Noun", "Gender", "English"}, rows, vocabFormat)
		}

		categories := lib.Categories()
		if vocabCategory != "" {
			categories = []string{vocabCategory}
		}

		for i, category := range categories {
			entries := lib.EntriesIn(category)
			if len(entries) == 0 {
				return fmt.Errorf("no vocabulary in category %q", category)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.German, e.English})
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := display.RenderTable(out, category, []string{"Deutsch", "English"}, rows, vocabFormat); err != nil {
				return err
			}
		}
		return nil
	},
}

var vocabImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Add nouns from a spreadsheet to your noun list",
	Long: `Add nouns from the first sheet of a spreadsheet. Column A holds the
noun, B its gender (m, f, n, pl, der, die, das, ...), C an optional English
translation. The first row is treated as a header. Nouns already in the list
are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := vocab.ImportNounsXLSX(f, log)
		if err != nil {
			return err
		}

		configDir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		current, err := vocab.LoadLibraryFrom(configDir)
		if err != nil {
			return err
		}

		merged, added := vocab.MergeNouns(current.Nouns, result.Nouns)
		path := filepath.Join(configDir, vocab.NounsFile)
		if err := vocab.SaveNouns(path, merged); err != nil {
			return fmt.Errorf("failed to save nouns: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %d new nouns (%d already known, %d rows skipped)\n",
			added, len(result.Nouns)-added, result.Skipped)
		fmt.Fprintf(out, "Noun list saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabListCmd)
	vocabCmd.AddCommand(vocabImportCmd)

	vocabListCmd.Flags().StringVar(&vocabCategory, "category", "", "Only list this category")
	vocabListCmd.Flags().BoolVar(&vocabNouns, "nouns", false, "List the nouns used by the pronoun quiz")
	vocabListCmd.Flags().StringVarP(&vocabFormat, "format", "f", display.FormatGrid, "Table format: grid or markdown")
}
