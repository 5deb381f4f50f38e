package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "deutsch/src/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "history.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func recordSession(t *testing.T, db *HistoryDB, kind string, results ...bool) string {
	t.Helper()
	ctx := context.Background()

	id, err := db.StartSession(ctx, kind)
	require.NoError(t, err)

	correct := 0
	for i, ok := range results {
		expected := "meinem Hund"
		if i%2 == 1 {
			expected = "deiner Katze"
		}
		answer := expected
		if !ok {
			answer = "falsch"
		} else {
			correct++
		}
		require.NoError(t, db.RecordAttempt(ctx, Attempt{
			SessionID: id,
			Round:     i + 1,
			Try:       1,
			Prompt:    "prompt",
			Expected:  expected,
			Answer:    answer,
			Correct:   ok,
			Rule:      "rule",
		}))
	}
	require.NoError(t, db.FinishSession(ctx, id, len(results), correct))
	return id
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	id := recordSession(t, db, "pronouns", true, false, true)

	session, err := db.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pronouns", session.Kind)
	assert.Equal(t, 3, session.Rounds)
	assert.Equal(t, 2, session.Correct)
	assert.False(t, session.FinishedAt.IsZero())

	byPrefix, err := db.GetSession(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, byPrefix.ID)

	attempts, err := db.SessionAttempts(ctx, id)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, 1, attempts[0].Round)
	assert.True(t, attempts[0].Correct)
	assert.False(t, attempts[1].Correct)
	assert.Equal(t, "falsch", attempts[1].Answer)
	assert.Equal(t, "deiner Katze", attempts[1].Expected)
}

func TestGetSessionNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	_, err := db.GetSession(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	err = db.FinishSession(context.Background(), "does-not-exist", 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestGetSessionPrefixIsLiteral(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	id := recordSession(t, db, "pronouns", true)

	for _, pattern := range []string{"%", "_", "________", id[:4] + "%"} {
		_, err := db.GetSession(ctx, pattern)
		assert.ErrorIs(t, err, apperrors.ErrSessionNotFound, pattern)
	}

	_, err := db.GetSession(ctx, "")
	assert.True(t, apperrors.IsValidation(err))

	s, err := db.GetSession(ctx, id[:4])
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
}

func TestRecentSessionsNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	db.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	first := recordSession(t, db, "pronouns", true)
	second := recordSession(t, db, "vocab", false)

	sessions, err := db.RecentSessions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)

	limited, err := db.RecentSessions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStatsAndWeakestItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	recordSession(t, db, "pronouns", true, false, false, false)
	recordSession(t, db, "pronouns", false)
	recordSession(t, db, "vocab", true, true)

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "pronouns", stats[0].Kind)
	assert.Equal(t, 2, stats[0].Sessions)
	assert.Equal(t, 5, stats[0].Attempts)
	assert.Equal(t, 1, stats[0].Correct)
	assert.InDelta(t, 0.2, stats[0].Accuracy(), 1e-9)

	assert.Equal(t, "vocab", stats[1].Kind)
	assert.InDelta(t, 1.0, stats[1].Accuracy(), 1e-9)
	assert.Zero(t, KindStats{}.Accuracy())

	weak, err := db.WeakestItems(ctx, 5)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	// both missed twice; ties sort by expected answer
	assert.Equal(t, 2, weak[0].Misses)
	assert.Equal(t, "deiner Katze", weak[0].Expected)
	assert.Equal(t, "meinem Hund", weak[1].Expected)
}

func TestCleanupOlderThan(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now.AddDate(0, 0, -40) }
	old := recordSession(t, db, "pronouns", true, false)

	db.now = func() time.Time { return now }
	fresh := recordSession(t, db, "pronouns", true)

	removed, err := db.CleanupOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = db.GetSession(ctx, old)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	attempts, err := db.SessionAttempts(ctx, old)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	_, err = db.GetSession(ctx, fresh)
	assert.NoError(t, err)
}

func TestAssistantLog(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.LogAssistant(ctx, "translate", "llama3.1", "Hund", "### Translation\ndog"))
	require.NoError(t, db.LogAssistant(ctx, "analyze", "llama3.1", "Ich gehe.", "### Grammar\n..."))

	entries, err := db.RecentAssistant(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "analyze", entries[0].Kind)
	assert.Equal(t, "Hund", entries[1].Input)
}

func TestExportXLSX(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	id := recordSession(t, db, "pronouns", true, false)

	var buf bytes.Buffer
	require.NoError(t, db.ExportXLSX(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sessions, err := f.GetRows("Sessions")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Session", sessions[0][0])
	assert.Equal(t, id, sessions[1][0])

	attempts, err := f.GetRows("Attempts")
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "meinem Hund", attempts[1][4])
	assert.Equal(t, "falsch", attempts[2][5])
}
