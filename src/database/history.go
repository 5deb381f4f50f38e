package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "deutsch/src/errors"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"
)

// Session is one quiz run
type Session struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the session is open
	Rounds     int
	Correct    int
}

// Attempt is one answer typed during a session
type Attempt struct {
	ID        int64
	SessionID string
	Round     int
	Try       int
	Prompt    string
	Expected  string
	Answer    string
	Correct   bool
	Rule      string
	CreatedAt time.Time
}

// KindStats aggregates attempts per quiz kind
type KindStats struct {
	Kind     string
	Sessions int
	Attempts int
	Correct  int
}

// Accuracy is the share of correct attempts, 0 when nothing was answered
func (k KindStats) Accuracy() float64 {
	if k.Attempts == 0 {
		return 0
	}
	return float64(k.Correct) / float64(k.Attempts)
}

// WeakItem is an expected answer that was missed at least once
type WeakItem struct {
	Expected string
	Attempts int
	Misses   int
}

type HistoryDB struct {
	db  *sql.DB
	tx  *TxManager
	log *zap.Logger
	now func() time.Time
}

// NewHistoryDB opens (and creates if needed) the libSQL history database
func NewHistoryDB(dbPath string, log *zap.Logger) (*HistoryDB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseConnection, err)
	}
	// SQLite allows one writer; a single connection keeps it simple
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseConnection, err)
	}

	h := &HistoryDB{
		db:  db,
		tx:  NewTxManager(db),
		log: log,
		now: time.Now,
	}

	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("history database ready", zap.String("path", dbPath))
	return h, nil
}

func (h *HistoryDB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quiz_sessions (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL DEFAULT 0,
			rounds INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			try INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			expected TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			rule TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON quiz_attempts(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON quiz_sessions(started_at)`,
		`CREATE TABLE IF NOT EXISTS sentences (
			key TEXT PRIMARY KEY,
			german TEXT NOT NULL,
			english TEXT NOT NULL,
			instruction TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assistant_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := h.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartSession opens a new quiz session and returns its id
func (h *HistoryDB) StartSession(ctx context.Context, kind string) (string, error) {
	id := uuid.NewString()

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO quiz_sessions (id, kind, started_at) VALUES (?, ?, ?)`,
		id, kind, h.now().Unix())
	if err != nil {
		return "", apperrors.NewDatabaseError("insert", "quiz_sessions", err)
	}

	h.log.Debug("session started", zap.String("session", id), zap.String("kind", kind))
	return id, nil
}

// RecordAttempt stores one answer
func (h *HistoryDB) RecordAttempt(ctx context.Context, a Attempt) error {
	err := h.tx.WithRetry(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_attempts (session_id, round, try, prompt, expected, answer, correct, rule, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.SessionID, a.Round, a.Try, a.Prompt, a.Expected, a.Answer, boolToInt(a.Correct), a.Rule, h.now().Unix())
		return err
	})
	if err != nil {
		return apperrors.NewDatabaseError("insert", "quiz_attempts", err)
	}
	return nil
}

// FinishSession stores the final score of a session
func (h *HistoryDB) FinishSession(ctx context.Context, id string, rounds, correct int) error {
	res, err := h.db.ExecContext(ctx,
		`UPDATE quiz_sessions SET finished_at = ?, rounds = ?, correct = ? WHERE id = ?`,
		h.now().Unix(), rounds, correct, id)
	if err != nil {
		return apperrors.NewDatabaseError("update", "quiz_sessions", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseError("update", "quiz_sessions", err)
	}
	if n == 0 {
		return fmt.Errorf("finish %s: %w", id, apperrors.ErrSessionNotFound)
	}
	return nil
}

const sessionColumns = `id, kind, started_at, finished_at, rounds, correct`

// RecentSessions returns the newest sessions first
func (h *HistoryDB) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_sessions", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan", "quiz_sessions", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession looks a session up by id or unique id prefix. The prefix is
// compared literally.
func (h *HistoryDB) GetSession(ctx context.Context, idOrPrefix string) (*Session, error) {
	if idOrPrefix == "" {
		return nil, &apperrors.ValidationError{Field: "session", Message: "session id is required", Err: apperrors.ErrMissingRequired}
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions
		WHERE substr(id, 1, length(?)) = ? ORDER BY started_at DESC LIMIT 2`,
		idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_sessions", err)
	}
	defer rows.Close()

	var found []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan", "quiz_sessions", err)
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_sessions", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("session %s: %w", idOrPrefix, apperrors.ErrSessionNotFound)
	case len(found) > 1 && found[0].ID != idOrPrefix:
		return nil, &apperrors.ValidationError{Field: "session", Value: idOrPrefix, Message: "prefix matches more than one session"}
	}
	return &found[0], nil
}

// SessionAttempts returns the attempts of a session in the order typed
func (h *HistoryDB) SessionAttempts(ctx context.Context, sessionID string) ([]Attempt, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, session_id, round, try, prompt, expected, answer, correct, rule, created_at
		FROM quiz_attempts WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_attempts", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var correct int
		var created int64
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Round, &a.Try, &a.Prompt, &a.Expected,
			&a.Answer, &correct, &a.Rule, &created); err != nil {
			return nil, apperrors.NewDatabaseError("scan", "quiz_attempts", err)
		}
		a.Correct = correct != 0
		a.CreatedAt = time.Unix(created, 0)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Stats aggregates attempts per quiz kind
func (h *HistoryDB) Stats(ctx context.Context) ([]KindStats, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT s.kind, COUNT(DISTINCT s.id), COUNT(a.id), COALESCE(SUM(a.correct), 0)
		FROM quiz_sessions s
		LEFT JOIN quiz_attempts a ON a.session_id = s.id
		GROUP BY s.kind
		ORDER BY s.kind`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_attempts", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var k KindStats
		if err := rows.Scan(&k.Kind, &k.Sessions, &k.Attempts, &k.Correct); err != nil {
			return nil, apperrors.NewDatabaseError("scan", "quiz_attempts", err)
		}
		stats = append(stats, k)
	}
	return stats, rows.Err()
}

// WeakestItems returns the most frequently missed expected answers
func (h *HistoryDB) WeakestItems(ctx context.Context, limit int) ([]WeakItem, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT expected, COUNT(*) AS attempts, SUM(CASE WHEN correct = 0 THEN 1 ELSE 0 END) AS misses
		FROM quiz_attempts
		GROUP BY expected
		HAVING misses > 0
		ORDER BY misses DESC, expected ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "quiz_attempts", err)
	}
	defer rows.Close()

	var items []WeakItem
	for rows.Next() {
		var w WeakItem
		if err := rows.Scan(&w.Expected, &w.Attempts, &w.Misses); err != nil {
			return nil, apperrors.NewDatabaseError("scan", "quiz_attempts", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// CleanupOlderThan removes sessions started before cutoff together with
// their attempts and returns how many sessions were removed
func (h *HistoryDB) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := h.tx.WithRetry(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM quiz_attempts
			WHERE session_id IN (SELECT id FROM quiz_sessions WHERE started_at < ?)`, cutoff.Unix()); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM quiz_sessions WHERE started_at < ?`, cutoff.Unix())
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete", "quiz_sessions", err)
	}

	h.log.Debug("history cleaned", zap.Int64("sessions", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

// LogAssistant stores a language model exchange
func (h *HistoryDB) LogAssistant(ctx context.Context, kind, model, input, output string) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO assistant_log (kind, model, input, output, created_at) VALUES (?, ?, ?, ?, ?)`,
		kind, model, input, output, h.now().Unix())
	if err != nil {
		return apperrors.NewDatabaseError("insert", "assistant_log", err)
	}
	return nil
}

// AssistantEntry is a logged language model exchange
type AssistantEntry struct {
	Kind      string
	Model     string
	Input     string
	Output    string
	CreatedAt time.Time
}

// RecentAssistant returns logged exchanges, newest first
func (h *HistoryDB) RecentAssistant(ctx context.Context, limit int) ([]AssistantEntry, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT kind, model, input, output, created_at FROM assistant_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query", "assistant_log", err)
	}
	defer rows.Close()

	var entries []AssistantEntry
	for rows.Next() {
		var e AssistantEntry
		var created int64
		if err := rows.Scan(&e.Kind, &e.Model, &e.Input, &e.Output, &created); err != nil {
			return nil, apperrors.NewDatabaseError("scan", "assistant_log", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (Session, error) {
	var s Session
	var started, finished int64
	if err := row.Scan(&s.ID, &s.Kind, &started, &finished, &s.Rounds, &s.Correct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, apperrors.ErrRecordNotFound
		}
		return s, err
	}
	s.StartedAt = time.Unix(started, 0)
	if finished > 0 {
		s.FinishedAt = time.Unix(finished, 0)
	}
	return s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
