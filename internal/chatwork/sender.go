package chatwork

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/throttle"
)

type poster interface {
	PostMessage(ctx context.Context, roomID, text string) error
}

// Sender posts messages through the shared throttle gate.
type Sender struct {
	api  poster
	gate *throttle.Gate
}

func NewSender(api poster, gate *throttle.Gate) *Sender {
	return &Sender{api: api, gate: gate}
}

func (s *Sender) Send(ctx context.Context, roomID, text string) error {
	if err := s.gate.Wait(ctx); err != nil {
		return fmt.Errorf("send wait: %w", err)
	}
	if err := s.api.PostMessage(ctx, roomID, text); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("failed to send message")
		return err
	}
	logrus.WithField("room_id", roomID).Debug("message sent")
	return nil
}
