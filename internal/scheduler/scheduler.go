package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RoomTask is the per-room job run on every tick.
type RoomTask func(ctx context.Context, roomID string) error

// Scheduler runs a room task over a fixed room list on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	rooms     []string
	roomDelay time.Duration
	task      RoomTask
}

func New(loc *time.Location, rooms []string, roomDelay time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     append([]string(nil), rooms...),
		roomDelay: roomDelay,
	}
}

func (s *Scheduler) SetRoomTask(f RoomTask) {
	s.task = f
}

// Start registers the task under spec and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if s.task == nil {
		logrus.Warn("⚠️ Room task not set, scheduler will not run")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		logrus.WithField("rooms", len(s.rooms)).Info("🕛 Triggered daily greeting")
		s.RunOnce(s.ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.WithField("schedule", spec).Info("📅 Scheduler started")
	return nil
}

// RunOnce runs the task for every room in order. A failing room is logged and skipped.
// It returns the number of rooms that failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for i, roomID := range s.rooms {
		if i > 0 && s.roomDelay > 0 {
			select {
			case <-ctx.Done():
				return failed + len(s.rooms) - i
			case <-time.After(s.roomDelay):
			}
		}
		if err := s.runRoom(ctx, roomID); err != nil {
			failed++
			logrus.WithField("room_id", roomID).WithError(err).Error("❌ Daily greeting failed")
		}
	}
	return failed
}

func (s *Scheduler) runRoom(ctx context.Context, roomID string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("room task panicked")
			logrus.WithField("room_id", roomID).Errorf("room task panic: %v", p)
		}
	}()
	return s.task(ctx, roomID)
}

// Stop cancels the task context and waits for a running tick to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logrus.Info("📅 Scheduler stopped")
}

// IsRunning reports whether a job has been registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
