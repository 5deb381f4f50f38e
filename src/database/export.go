package database

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSessionLimit = 10000

// ExportXLSX writes every session and its attempts to a spreadsheet with a
// "Sessions" and an "Attempts" sheet
func (h *HistoryDB) ExportXLSX(ctx context.Context, w io.Writer) error {
	sessions, err := h.RecentSessions(ctx, exportSessionLimit)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			h.log.Warn("closing spreadsheet", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", "Sessions"); err != nil {
		return fmt.Errorf("failed to name sessions sheet: %w", err)
	}
	if _, err := f.NewSheet("Attempts"); err != nil {
		return fmt.Errorf("failed to create attempts sheet: %w", err)
	}

	sessionRows := [][]interface{}{{"Session", "Kind", "Started", "Finished", "Rounds", "Correct"}}
	attemptRows := [][]interface{}{{"Session", "Round", "Try", "Prompt", "Expected", "Answer", "Correct", "Rule"}}

	for _, s := range sessions {
		finished := ""
		if !s.FinishedAt.IsZero() {
			finished = s.FinishedAt.Format("2006-01-02 15:04:05")
		}
		sessionRows = append(sessionRows, []interface{}{
			s.ID, s.Kind, s.StartedAt.Format("2006-01-02 15:04:05"), finished, s.Rounds, s.Correct,
		})

		attempts, err := h.SessionAttempts(ctx, s.ID)
		if err != nil {
			return err
		}
		for _, a := range attempts {
			attemptRows = append(attemptRows, []interface{}{
				a.SessionID, a.Round, a.Try, a.Prompt, a.Expected, a.Answer, a.Correct, a.Rule,
			})
		}
	}

	if err := writeRows(f, "Sessions", sessionRows); err != nil {
		return err
	}
	if err := writeRows(f, "Attempts", attemptRows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	h.log.Debug("history exported", zap.Int("sessions", len(sessions)))
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
