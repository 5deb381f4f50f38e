package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"deutsch/src/assistant"
	"deutsch/src/display"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	kindTranslate = "translate"
	kindAnalyze   = "analyze"
)

var (
	assistantRaw       bool
	assistantNoHistory bool
)

// translateCmd represents the translate command
var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate a word or sentence with a local Ollama model",
	Long: `Translate German to English or English to German. Single words come back
with article, plural and example sentences.

Examples:
  deutsch translate Eichhörnchen
  deutsch translate "I would like a coffee"
  deutsch translate --raw Haus`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssistant(cmd, args, kindTranslate, "Enter word or sentence in German or English: ")
	},
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [sentence...]",
	Short: "Explain the grammar of a German sentence",
	Long: `Ask a local Ollama model for a word by word breakdown of a German
sentence: parts of speech, cases, verb forms and sentence structure.

Examples:
  deutsch analyze "Ich gebe meinem Bruder das Buch."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssistant(cmd, args, kindAnalyze, "Enter a German sentence: ")
	},
}

func runAssistant(cmd *cobra.Command, args []string, kind, prompt string) error {
	out := cmd.OutOrStdout()
	printer := display.NewPrinter(out)

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		printer.Prompt(prompt)
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = line
	}
	if text == "" {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	client := assistant.NewOllamaClient(&settings.Ollama, log)

	var response string
	var sections []assistant.Section
	switch kind {
	case kindTranslate:
		response, err = client.Translate(cmd.Context(), text)
		sections = assistant.TranslationSections(response)
	default:
		response, err = client.Analyze(cmd.Context(), text)
		sections = assistant.Sections(response)
	}
	if err != nil {
		return fmt.Errorf("is Ollama running at %s? %w", settings.Ollama.URL, err)
	}

	if !assistantNoHistory {
		if db, err := openHistory(settings); err != nil {
			log.Warn("history disabled", zap.Error(err))
		} else {
			if err := db.LogAssistant(cmd.Context(), kind, client.Model(), text, response); err != nil {
				log.Warn("failed to log assistant response", zap.Error(err))
			}
			db.Close()
		}
	}

	if assistantRaw {
		fmt.Fprintln(out, response)
		return nil
	}

	renderer, err := display.NewMarkdownRenderer(printer.Color(), 0)
	if err != nil {
		return err
	}
	for _, s := range sections {
		panel, err := renderer.Panel(s.Title, s.Body)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, panel)
	}
	return nil
}

// readLine reads one trimmed line, treating EOF as an empty answer
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(analyzeCmd)

	for _, c := range []*cobra.Command{translateCmd, analyzeCmd} {
		c.Flags().BoolVar(&assistantRaw, "raw", false, "Print the model response without formatting")
		c.Flags().BoolVar(&assistantNoHistory, "no-history", false, "Do not log this request")
	}
}
