package greeting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/calendar"
	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/config"
	"chatwork-bot/internal/storage"
)

type Store interface {
	GetLastGreetingDate(ctx context.Context, roomID string) (string, error)
	SetLastGreetingDate(ctx context.Context, roomID, date string) error
	ListCalendarEntries(ctx context.Context) ([]storage.CalendarEntry, error)
}

type Sender interface {
	Send(ctx context.Context, roomID, text string) error
}

// Task posts the daily greeting. Running it again on the same day is a no-op.
type Task struct {
	cfg    *config.Config
	store  Store
	sender Sender
	now    func() time.Time
	mu     sync.Mutex
}

func NewTask(cfg *config.Config, store Store, sender Sender) *Task {
	return &Task{cfg: cfg, store: store, sender: sender, now: time.Now}
}

// Run greets roomID unless it was already greeted today. The date is recorded only after
// the message went out, so a failed send is retried on the next tick.
func (t *Task) Run(ctx context.Context, roomID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().In(t.cfg.Location())
	today := calendar.DateOnly(now)

	last, err := t.store.GetLastGreetingDate(ctx, roomID)
	if err != nil {
		return fmt.Errorf("read greeting date: %w", err)
	}
	if last == today {
		logrus.WithField("room_id", roomID).Debug("already greeted today")
		return nil
	}

	entries, err := t.store.ListCalendarEntries(ctx)
	if err != nil {
		return fmt.Errorf("list calendar: %w", err)
	}
	if err := t.sender.Send(ctx, roomID, compose(now, entries)); err != nil {
		return fmt.Errorf("send greeting: %w", err)
	}
	if err := t.store.SetLastGreetingDate(ctx, roomID, today); err != nil {
		return fmt.Errorf("write greeting date: %w", err)
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "date": today}).Info("daily greeting sent")
	return nil
}

func compose(now time.Time, entries []storage.CalendarEntry) string {
	var b strings.Builder
	b.WriteString("今日は" + calendar.LongDate(now) + "だよ！")
	for _, e := range calendar.TodayKeys(now).Filter(entries) {
		b.WriteString("\n今日は" + e.Description + "だよ！")
	}
	return chatwork.Info("日付変更！", b.String())
}
