package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_CursorColumnsIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.GetCursor(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, RoomCursor{RoomID: "10"}, c)

	require.NoError(t, s.SetLastGreetingDate(ctx, "10", "2025-03-05"))
	require.NoError(t, s.SetLastMessageID(ctx, "10", "m1"))
	require.NoError(t, s.SetLastMessageID(ctx, "10", "m2"))

	c, err = s.GetCursor(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "m2", c.LastMessageID)
	assert.Equal(t, "2025-03-05", c.LastGreetingDate, "message id write must not clear greeting date")

	d, err := s.GetLastGreetingDate(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", d)

	d, err = s.GetLastGreetingDate(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestSQLiteStore_CalendarCreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	first, err := s.AppendCalendarEntry(ctx, "03/05", "ひなまつり前日")
	require.NoError(t, err)
	_, err = s.AppendCalendarEntry(ctx, "2025/01/01", "元日")
	require.NoError(t, err)
	_, err = s.AppendCalendarEntry(ctx, "05", "給料日")
	require.NoError(t, err)

	entries, err := s.ListCalendarEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, []string{"03/05", "2025/01/01", "05"},
		[]string{entries[0].DateSpec, entries[1].DateSpec, entries[2].DateSpec})
	assert.Equal(t, "給料日", entries[2].Description)
	assert.True(t, entries[0].CreatedAt.Equal(base.Add(time.Second)))
}

func TestSQLiteStore_AppendLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendLog(ctx, LogEntry{
		RoomID: "10", LogName: "ログ", SenderID: "1", SenderName: "alice", Body: "hi", MessageID: "m1",
	}))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message_logs WHERE log_name = ?`, "ログ").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bot.db")
	s, err := NewSQLiteStore(p)
	require.NoError(t, err)
	_, err = s.AppendCalendarEntry(context.Background(), "05", "x")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(p)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.ListCalendarEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
