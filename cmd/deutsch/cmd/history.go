package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"deutsch/src/database"
	"deutsch/src/display"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyDays   int
	historyOutput string
	historyFormat string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past quiz sessions",
	Long: `Review quiz sessions stored in the history database.

Examples:
  deutsch history list
  deutsch history show <session-id>
  deutsch history stats
  deutsch history weak --limit 5
  deutsch history clean --days=30
  deutsch history export --output history.xlsx
  deutsch history assistant`,
}

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent quiz sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.RecentSessions(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No quiz sessions recorded yet")
			return nil
		}

		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			rows = append(rows, []string{
				s.ID[:8],
				s.StartedAt.Format("2006-01-02 15:04"),
				s.Kind,
				fmt.Sprintf("%d/%d", s.Correct, s.Rounds),
				sessionState(s),
			})
		}
		return display.RenderTable(cmd.OutOrStdout(), "Recent sessions",
			[]string{"Session", "Started", "Quiz", "Score", "State"}, rows, historyFormat)
	},
}

// historyShowCmd represents the history show command
var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show every answer of one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		session, err := db.GetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		attempts, err := db.SessionAttempts(cmd.Context(), session.ID)
		if err != nil {
			return fmt.Errorf("failed to get attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session: %s\n", session.ID)
		fmt.Fprintf(out, "Quiz: %s, started %s, score %d/%d\n\n",
			session.Kind, session.StartedAt.Format("2006-01-02 15:04"), session.Correct, session.Rounds)

		rows := make([][]string, 0, len(attempts))
		for _, a := range attempts {
			mark := display.MarkWrong
			if a.Correct {
				mark = display.MarkCorrect
			}
			rows = append(rows, []string{
				strconv.Itoa(a.Round),
				strconv.Itoa(a.Try),
				truncate(a.Prompt, 60),
				a.Answer,
				a.Expected,
				mark,
			})
		}
		return display.RenderTable(out, "", []string{"Round", "Try", "Question", "Answer", "Expected", ""}, rows, historyFormat)
	},
}

// historyStatsCmd represents the history stats command
var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accuracy per quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No quiz sessions recorded yet")
			return nil
		}

		rows := make([][]string, 0, len(stats))
		for _, k := range stats {
			rows = append(rows, []string{
				k.Kind,
				strconv.Itoa(k.Sessions),
				strconv.Itoa(k.Attempts),
				strconv.Itoa(k.Correct),
				fmt.Sprintf("%.0f%%", k.Accuracy()*100),
			})
		}
		return display.RenderTable(cmd.OutOrStdout(), "Accuracy",
			[]string{"Quiz", "Sessions", "Answers", "Correct", "Accuracy"}, rows, historyFormat)
	},
}

// historyWeakCmd represents the history weak command
var historyWeakCmd = &cobra.Command{
	Use:   "weak",
	Short: "Show the answers missed most often",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.WeakestItems(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing missed yet")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, w := range items {
			rows = append(rows, []string{w.Expected, strconv.Itoa(w.Misses), strconv.Itoa(w.Attempts)})
		}
		return display.RenderTable(cmd.OutOrStdout(), "Most missed",
			[]string{"Expected", "Misses", "Answers"}, rows, historyFormat)
	},
}

// historyCleanCmd represents the history clean command
var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old quiz sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDays <= 0 {
			return fmt.Errorf("--days must be greater than 0")
		}

		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		cutoff := time.Now().AddDate(0, 0, -historyDays)
		count, err := db.CleanupOlderThan(cmd.Context(), cutoff)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d sessions older than %d days\n", count, historyDays)
		return nil
	},
}

// historyExportCmd represents the history export command
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all sessions and answers to a spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Create(historyOutput)
		if err != nil {
			return err
		}
		if err := db.ExportXLSX(cmd.Context(), f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "History exported to %s\n", historyOutput)
		return nil
	},
}

// historyAssistantCmd represents the history assistant command
var historyAssistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "List recent translate and analyze requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := getDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.RecentAssistant(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No assistant requests recorded yet")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.CreatedAt.Format("2006-01-02 15:04"),
				e.Kind,
				e.Model,
				truncate(e.Input, 50),
			})
		}
		return display.RenderTable(cmd.OutOrStdout(), "Assistant requests",
			[]string{"Time", "Kind", "Model", "Input"}, rows, historyFormat)
	},
}

// getDatabase opens the history database configured in settings
func getDatabase() (*database.HistoryDB, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return openHistory(settings)
}

func sessionState(s database.Session) string {
	if s.FinishedAt.IsZero() {
		return "open"
	}
	return s.FinishedAt.Sub(s.StartedAt).Round(time.Second).String()
}

// truncate truncates a string to the specified number of runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyWeakCmd)
	historyCmd.AddCommand(historyCleanCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyAssistantCmd)

	// Flags
	historyCmd.PersistentFlags().StringVarP(&historyFormat, "format", "f", display.FormatGrid, "Table format: grid or markdown")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of sessions to show")
	historyWeakCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of answers to show")
	historyAssistantCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of requests to show")
	historyCleanCmd.Flags().IntVar(&historyDays, "days", 30, "Remove sessions older than this many days")
	historyExportCmd.Flags().StringVarP(&historyOutput, "output", "o", "deutsch-history.xlsx", "Spreadsheet to write")
}
