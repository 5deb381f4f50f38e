package database

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode"

	apperrors "deutsch/src/errors"

	"go.uber.org/zap"
)

const maxSentenceKeyLen = 60

// Sentence is a German practice sentence with its English translation
type Sentence struct {
	Key         string
	German      string
	English     string
	Instruction string
	CreatedAt   time.Time
}

// SentenceKey derives the stable key of a sentence from its English text:
// lower case, letters, digits and spaces only, words joined by "_", at
// most 60 characters.
func SentenceKey(english string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(english) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	key := []rune(strings.Join(strings.Fields(b.String()), "_"))
	if len(key) > maxSentenceKeyLen {
		key = key[:maxSentenceKeyLen]
	}
	return strings.TrimRight(string(key), "_")
}

// SaveSentences stores sentences generated for instruction. A sentence
// whose key already exists is replaced. It returns how many sentences are
// stored in total afterwards.
func (h *HistoryDB) SaveSentences(ctx context.Context, instruction string, sentences []Sentence) (int, error) {
	now := h.now().Unix()

	var total int
	err := h.tx.WithRetry(ctx, nil, func(tx *sql.Tx) error {
		for _, s := range sentences {
			key := s.Key
			if key == "" {
				key = SentenceKey(s.English)
			}
			if key == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO sentences (key, german, english, instruction, created_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					german = excluded.german,
					english = excluded.english,
					instruction = excluded.instruction`,
				key, s.German, s.English, instruction, now); err != nil {
				return err
			}
		}
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&total)
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("insert", "sentences", err)
	}

	h.log.Debug("sentences saved", zap.Int("new", len(sentences)), zap.Int("total", total))
	return total, nil
}

// ListSentences returns every stored sentence, oldest first
func (h *HistoryDB) ListSentences(ctx context.Context) ([]Sentence, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT key, german, english, instruction, created_at FROM sentences ORDER BY created_at, key`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "sentences", err)
	}
	defer rows.Close()

	var sentences []Sentence
	for rows.Next() {
		var s Sentence
		var created int64
		if err := rows.Scan(&s.Key, &s.German, &s.English, &s.Instruction, &created); err != nil {
			return nil, apperrors.NewDatabaseError("scan", "sentences", err)
		}
		s.CreatedAt = time.Unix(created, 0)
		sentences = append(sentences, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("query", "sentences", err)
	}
	return sentences, nil
}
