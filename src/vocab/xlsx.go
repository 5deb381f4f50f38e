package vocab

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"deutsch/src/grammar"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportResult reports what a spreadsheet import produced.
type ImportResult struct {
	Nouns   []Noun
	Skipped int
}

// ImportNounsXLSX reads nouns from the first sheet of a spreadsheet.
// Column A is the lemma, B the gender, C the optional English gloss; the
// first row is a header. Rows without a lemma or with an unknown gender are
// skipped.
func ImportNounsXLSX(r io.Reader, log *zap.Logger) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("closing excel file", zap.Error(err))
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var lemma, gender, english string
		if len(row) > 0 {
			lemma = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			gender = row[1]
		}
		if len(row) > 2 {
			english = strings.TrimSpace(row[2])
		}

		g := grammar.ParseGender(gender)
		if lemma == "" || !g.Known() {
			log.Debug("skipping row", zap.Int("row", i+1), zap.String("lemma", lemma), zap.String("gender", gender))
			result.Skipped++
			continue
		}

		result.Nouns = append(result.Nouns, Noun{Lemma: lemma, Gender: g, English: english})
	}

	log.Debug("imported nouns", zap.Int("count", len(result.Nouns)), zap.Int("skipped", result.Skipped))
	return result, nil
}
