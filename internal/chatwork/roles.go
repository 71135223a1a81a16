package chatwork

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/throttle"
)

type memberAPI interface {
	FetchRoster(ctx context.Context, roomID string) (Roster, error)
	SetRolePartition(ctx context.Context, roomID string, p Partition) error
}

type messageSender interface {
	Send(ctx context.Context, roomID, text string) error
}

var errEmptyRoster = errors.New("roster is empty")

// RoleChanger moves one member to a new role by resubmitting the whole partition,
// then announces the outcome in the room.
type RoleChanger struct {
	api    memberAPI
	sender messageSender
	gate   *throttle.Gate
}

func NewRoleChanger(api memberAPI, sender messageSender, gate *throttle.Gate) *RoleChanger {
	return &RoleChanger{api: api, sender: sender, gate: gate}
}

// SetRole never leaves the room uninformed: on failure an error notice is posted instead of the
// announcement. The returned error is for the caller's log only.
func (r *RoleChanger) SetRole(ctx context.Context, roomID, targetID string, role Role, reason string) error {
	if !role.Valid() {
		return fmt.Errorf("set role: unknown role %q", role)
	}
	if err := r.apply(ctx, roomID, targetID, role); err != nil {
		if sendErr := r.sender.Send(ctx, roomID, failureNotice(targetID)); sendErr != nil {
			err = errors.Join(err, sendErr)
		}
		return fmt.Errorf("set role %s for %s: %w", role, targetID, err)
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "account_id": targetID, "role": role}).Info("member role changed")
	if err := r.sender.Send(ctx, roomID, announcement(targetID, role, reason)); err != nil {
		return fmt.Errorf("announce role change: %w", err)
	}
	return nil
}

func (r *RoleChanger) apply(ctx context.Context, roomID, targetID string, role Role) error {
	roster, err := r.api.FetchRoster(ctx, roomID)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return errEmptyRoster
	}
	p := PartitionOf(roster).Move(targetID, role)
	if err := r.gate.Wait(ctx); err != nil {
		return err
	}
	return r.api.SetRolePartition(ctx, roomID, p)
}

func announcement(targetID string, role Role, reason string) string {
	body := fmt.Sprintf("%s%sさんの権限を「%s」に変更しました。", To(targetID), PName(targetID), role.Label())
	if reason != "" {
		body += "\n理由: " + reason
	}
	body += "\nルームルールに基づき、ご協力をお願いいたします。"
	return Info("権限変更のお知らせ", body)
}

func failureNotice(targetID string) string {
	return ErrorBlock("権限変更エラー", fmt.Sprintf("%s%sさんの権限変更に失敗しました。管理者にご連絡ください。", To(targetID), PName(targetID)))
}
