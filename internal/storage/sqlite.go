package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS message_tracking (
	room_id TEXT PRIMARY KEY,
	last_message_id TEXT,
	last_daily_greeting_date TEXT
);
CREATE TABLE IF NOT EXISTS date_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	event TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS message_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	log_name TEXT NOT NULL,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL,
	message_content TEXT NOT NULL,
	message_id TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_logs_room ON message_logs (room_id);
`

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows one writer; a single connection keeps writes ordered
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logrus.WithField("path", path).Info("📂 sqlite store ready")
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetCursor(ctx context.Context, roomID string) (RoomCursor, error) {
	var msgID, greet sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT last_message_id, last_daily_greeting_date FROM message_tracking WHERE room_id = ?`, roomID,
	).Scan(&msgID, &greet)
	if errors.Is(err, sql.ErrNoRows) {
		return RoomCursor{RoomID: roomID}, nil
	}
	if err != nil {
		return RoomCursor{}, fmt.Errorf("get cursor %s: %w", roomID, err)
	}
	return RoomCursor{RoomID: roomID, LastMessageID: msgID.String, LastGreetingDate: greet.String}, nil
}

func (s *SQLiteStore) SetLastMessageID(ctx context.Context, roomID, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_tracking (room_id, last_message_id) VALUES (?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET last_message_id = excluded.last_message_id`,
		roomID, messageID)
	if err != nil {
		return fmt.Errorf("set last message id %s: %w", roomID, err)
	}
	return nil
}

func (s *SQLiteStore) GetLastGreetingDate(ctx context.Context, roomID string) (string, error) {
	c, err := s.GetCursor(ctx, roomID)
	if err != nil {
		return "", err
	}
	return c.LastGreetingDate, nil
}

func (s *SQLiteStore) SetLastGreetingDate(ctx context.Context, roomID, date string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_tracking (room_id, last_daily_greeting_date) VALUES (?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET last_daily_greeting_date = excluded.last_daily_greeting_date`,
		roomID, date)
	if err != nil {
		return fmt.Errorf("set last greeting date %s: %w", roomID, err)
	}
	return nil
}

func (s *SQLiteStore) AppendCalendarEntry(ctx context.Context, dateSpec, description string) (CalendarEntry, error) {
	created := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO date_events (date, event, created_at) VALUES (?, ?, ?)`,
		dateSpec, description, created.Format(time.RFC3339Nano))
	if err != nil {
		return CalendarEntry{}, fmt.Errorf("append calendar entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CalendarEntry{}, fmt.Errorf("calendar entry id: %w", err)
	}
	return CalendarEntry{ID: id, DateSpec: dateSpec, Description: description, CreatedAt: created}, nil
}

func (s *SQLiteStore) ListCalendarEntries(ctx context.Context) ([]CalendarEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, event, created_at FROM date_events ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list calendar entries: %w", err)
	}
	defer rows.Close()

	var entries []CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		var created string
		if err := rows.Scan(&e.ID, &e.DateSpec, &e.Description, &created); err != nil {
			return nil, fmt.Errorf("scan calendar entry: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calendar entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) AppendLog(ctx context.Context, entry LogEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_logs (room_id, log_name, user_id, user_name, message_content, message_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RoomID, entry.LogName, entry.SenderID, entry.SenderName, entry.Body, entry.MessageID,
		ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append log %s: %w", entry.RoomID, err)
	}
	return nil
}
