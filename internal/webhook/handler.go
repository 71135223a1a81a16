package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/engine"
)

// EventHandler consumes normalized inbound events.
type EventHandler interface {
	Handle(ctx context.Context, ev engine.Event) error
}

type payload struct {
	SettingID string        `json:"webhook_setting_id"`
	EventType string        `json:"webhook_event_type"`
	EventTime int64         `json:"webhook_event_time"`
	Event     *messageEvent `json:"webhook_event" validate:"required"`
}

type messageEvent struct {
	RoomID    chatwork.ID `json:"room_id" validate:"required"`
	MessageID chatwork.ID `json:"message_id" validate:"required"`
	Account   *account    `json:"account" validate:"required"`
	Body      string      `json:"body"`
}

type account struct {
	AccountID chatwork.ID `json:"account_id"`
	Name      string      `json:"name"`
}

func (p payload) event() engine.Event {
	ev := p.Event
	return engine.Event{
		RoomID:    string(ev.RoomID),
		MessageID: string(ev.MessageID),
		Sender:    engine.Sender{ID: string(ev.Account.AccountID), DisplayName: ev.Account.Name},
		Body:      ev.Body,
	}
}

// Handler serves the health check and the webhook endpoint.
type Handler struct {
	events   EventHandler
	timeout  time.Duration
	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(events EventHandler, timeout time.Duration) *Handler {
	return &Handler{
		events:   events,
		timeout:  timeout,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.Health)
	r.POST("/webhook", h.Webhook)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Webhook decodes one delivery and runs it through the engine before replying.
// Events missing sender details are acknowledged and dropped.
func (h *Handler) Webhook(c *gin.Context) {
	log := logrus.WithField("delivery_id", uuid.NewString())

	var p payload
	if err := c.ShouldBindJSON(&p); err != nil {
		log.WithError(err).Warn("webhook: undecodable payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.validate.Struct(p); err != nil {
		log.WithError(err).Warn("webhook: payload missing required fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	ev := p.event()
	log = log.WithFields(logrus.Fields{"room_id": ev.RoomID, "message_id": ev.MessageID, "event_type": p.EventType})

	ctx := context.WithoutCancel(c.Request.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.events.Handle(ctx, ev); err != nil {
		if !errors.Is(err, engine.ErrInvalidEvent) {
			log.WithError(err).Error("webhook: event handling failed")
		}
	} else {
		log.Debug("webhook: event handled")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
