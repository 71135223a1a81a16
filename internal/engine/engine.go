package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/config"
	"chatwork-bot/internal/lookup"
	"chatwork-bot/internal/storage"
)

// ErrInvalidEvent marks events dropped before any rule runs.
var ErrInvalidEvent = errors.New("invalid inbound event")

type Sender struct {
	ID          string
	DisplayName string
}

// Event is one inbound chat message.
type Event struct {
	RoomID    string
	MessageID string
	Sender    Sender
	Body      string
}

func (e Event) Validate() error {
	var missing []string
	if e.RoomID == "" {
		missing = append(missing, "room_id")
	}
	if e.MessageID == "" {
		missing = append(missing, "message_id")
	}
	if e.Sender.ID == "" {
		missing = append(missing, "account_id")
	}
	if e.Sender.DisplayName == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEvent, strings.Join(missing, ", "))
	}
	return nil
}

type RosterFetcher interface {
	FetchRoster(ctx context.Context, roomID string) (chatwork.Roster, error)
}

type Replier interface {
	Send(ctx context.Context, roomID, text string) error
}

type RoleSetter interface {
	SetRole(ctx context.Context, roomID, targetID string, role chatwork.Role, reason string) error
}

type Store interface {
	SetLastMessageID(ctx context.Context, roomID, messageID string) error
	AppendCalendarEntry(ctx context.Context, dateSpec, description string) (storage.CalendarEntry, error)
	ListCalendarEntries(ctx context.Context) ([]storage.CalendarEntry, error)
	AppendLog(ctx context.Context, entry storage.LogEntry) error
}

type Oracle interface {
	Answer(ctx context.Context) (string, error)
}

type Encyclopedia interface {
	Summary(ctx context.Context, term string) (string, error)
}

type Profiles interface {
	Profile(ctx context.Context, kind lookup.ProfileKind, id string) (string, error)
}

// Deps are the collaborators the engine calls out to.
type Deps struct {
	Roster       RosterFetcher
	Replier      Replier
	Roles        RoleSetter
	Store        Store
	Oracle       Oracle
	Encyclopedia Encyclopedia
	Profiles     Profiles
}

// roomMode is how the roster fetch resolved for one event.
type roomMode int

const (
	modeGroup roomMode = iota
	modeDirect
	modeUnavailable
)

func (m roomMode) String() string {
	switch m {
	case modeGroup:
		return "group"
	case modeDirect:
		return "direct"
	default:
		return "unavailable"
	}
}

// dispatch is the per-event view every rule evaluates against.
type dispatch struct {
	ev     Event
	body   string
	roster chatwork.Roster
	mode   roomMode
	direct bool
	admin  bool
	log    *logrus.Entry
}

// Engine evaluates the fixed rule set against each inbound event.
type Engine struct {
	cfg   *config.Config
	deps  Deps
	rules []rule
	locks *roomLocks

	now  func() time.Time
	rand func() float64
}

func New(cfg *config.Config, deps Deps) *Engine {
	e := &Engine{
		cfg:   cfg,
		deps:  deps,
		locks: newRoomLocks(),
		now:   time.Now,
		rand:  rand.Float64,
	}
	e.rules = e.ruleSet()
	return e
}

// Handle runs every rule for ev in order. Rule failures are logged and never stop the
// remaining rules; the room cursor is written last in all cases. Only malformed events
// produce an error, and they have no side effects.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		logrus.WithField("room_id", ev.RoomID).WithError(err).Info("skipping incomplete message")
		return err
	}
	if e.cfg.SerializeRooms {
		defer e.locks.lock(ev.RoomID)()
	}

	d := e.prepare(ctx, ev)
	if !d.direct {
		e.run(ctx, d, "message-log", e.writeLog)
	}
	for _, r := range e.rules {
		e.run(ctx, d, r.name, r.fn)
	}

	// the cursor write must happen even when ctx expired during the rules
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := e.deps.Store.SetLastMessageID(cctx, ev.RoomID, ev.MessageID); err != nil {
		d.log.WithError(err).Error("failed to update cursor")
	}
	return nil
}

func (e *Engine) prepare(ctx context.Context, ev Event) *dispatch {
	d := &dispatch{
		ev:   ev,
		body: strings.TrimSpace(ev.Body),
		log:  logrus.WithFields(logrus.Fields{"room_id": ev.RoomID, "message_id": ev.MessageID}),
	}
	roster, err := e.deps.Roster.FetchRoster(ctx, ev.RoomID)
	switch {
	case err != nil:
		d.mode = modeUnavailable
		d.log.WithError(err).WithField("policy", e.cfg.RosterFailurePolicy).Warn("roster unavailable")
	case len(roster) == 0:
		d.mode = modeDirect
	default:
		d.mode = modeGroup
		d.roster = roster
	}
	d.direct = d.mode == modeDirect ||
		(d.mode == modeUnavailable && e.cfg.RosterFailurePolicy != config.RosterDistrust)
	d.admin = d.direct || d.roster.IsAdmin(ev.Sender.ID)
	d.log = d.log.WithField("mode", d.mode.String())
	return d
}

func (e *Engine) run(ctx context.Context, d *dispatch, name string, fn func(context.Context, *dispatch) error) {
	defer func() {
		if p := recover(); p != nil {
			d.log.WithField("rule", name).Errorf("rule panicked: %v", p)
		}
	}()
	if err := fn(ctx, d); err != nil {
		d.log.WithField("rule", name).WithError(err).Error("rule failed")
	}
}

func (e *Engine) writeLog(ctx context.Context, d *dispatch) error {
	return e.deps.Store.AppendLog(ctx, storage.LogEntry{
		RoomID:     d.ev.RoomID,
		LogName:    e.cfg.LogName(d.ev.RoomID),
		SenderID:   d.ev.Sender.ID,
		SenderName: d.ev.Sender.DisplayName,
		Body:       d.ev.Body,
		MessageID:  d.ev.MessageID,
		Timestamp:  e.now(),
	})
}

func (e *Engine) today() time.Time {
	return e.now().In(e.cfg.Location())
}
