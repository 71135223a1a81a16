package storage

import (
	"context"
	"time"
)

// RoomCursor tracks per-room progress. One row per room, created on first write.
type RoomCursor struct {
	RoomID           string `json:"room_id"`
	LastMessageID    string `json:"last_message_id,omitempty"`
	LastGreetingDate string `json:"last_greeting_date,omitempty"`
}

// CalendarEntry is a recurring or one-off event keyed by a date spec
// ("YYYY/MM/DD", "MM/DD" or "DD").
type CalendarEntry struct {
	ID          int64     `json:"id"`
	DateSpec    string    `json:"date_spec"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogEntry is one group-chat message. Direct chats are never logged.
type LogEntry struct {
	RoomID     string    `json:"room_id"`
	LogName    string    `json:"log_name"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	MessageID  string    `json:"message_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store is the durable state of the bot. Implementations must be safe for concurrent use.
// Calendar entries and log entries are append-only; cursors are updated column by column.
type Store interface {
	GetCursor(ctx context.Context, roomID string) (RoomCursor, error)
	SetLastMessageID(ctx context.Context, roomID, messageID string) error
	GetLastGreetingDate(ctx context.Context, roomID string) (string, error)
	SetLastGreetingDate(ctx context.Context, roomID, date string) error
	AppendCalendarEntry(ctx context.Context, dateSpec, description string) (CalendarEntry, error)
	ListCalendarEntries(ctx context.Context) ([]CalendarEntry, error)
	AppendLog(ctx context.Context, entry LogEntry) error
	Close() error
}
