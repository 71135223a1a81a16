package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/config"
	"chatwork-bot/internal/lookup"
	"chatwork-bot/internal/storage"
)

type fakeRoster struct {
	roster chatwork.Roster
	err    error
	calls  int
}

func (f *fakeRoster) FetchRoster(context.Context, string) (chatwork.Roster, error) {
	f.calls++
	return f.roster, f.err
}

type fakeReplier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeReplier) Send(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

type roleCall struct {
	target string
	role   chatwork.Role
	reason string
}

type fakeRoles struct {
	calls []roleCall
	err   error
}

func (f *fakeRoles) SetRole(_ context.Context, _ string, target string, role chatwork.Role, reason string) error {
	f.calls = append(f.calls, roleCall{target, role, reason})
	return f.err
}

type memStore struct {
	mu        sync.Mutex
	cursors   map[string]string
	entries   []storage.CalendarEntry
	logs      []storage.LogEntry
	appendErr error
	listErr   error
}

func newMemStore() *memStore { return &memStore{cursors: map[string]string{}} }

func (m *memStore) SetLastMessageID(ctx context.Context, roomID, messageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[roomID] = messageID
	return nil
}

func (m *memStore) AppendCalendarEntry(_ context.Context, spec, desc string) (storage.CalendarEntry, error) {
	if m.appendErr != nil {
		return storage.CalendarEntry{}, m.appendErr
	}
	e := storage.CalendarEntry{ID: int64(len(m.entries) + 1), DateSpec: spec, Description: desc}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) ListCalendarEntries(context.Context) ([]storage.CalendarEntry, error) {
	return m.entries, m.listErr
}

func (m *memStore) AppendLog(_ context.Context, entry storage.LogEntry) error {
	m.logs = append(m.logs, entry)
	return nil
}

type fakeOracle struct {
	answer string
	err    error
	panics bool
}

func (f fakeOracle) Answer(context.Context) (string, error) {
	if f.panics {
		panic("oracle exploded")
	}
	return f.answer, f.err
}

type fakeWiki struct {
	summary string
	err     error
	terms   []string
}

func (f *fakeWiki) Summary(_ context.Context, term string) (string, error) {
	f.terms = append(f.terms, term)
	return f.summary, f.err
}

type fakeProfiles struct {
	text string
	err  error
	kind lookup.ProfileKind
	id   string
}

func (f *fakeProfiles) Profile(_ context.Context, kind lookup.ProfileKind, id string) (string, error) {
	f.kind, f.id = kind, id
	return f.text, f.err
}

type harness struct {
	engine   *Engine
	cfg      *config.Config
	roster   *fakeRoster
	replier  *fakeReplier
	roles    *fakeRoles
	store    *memStore
	oracle   *fakeOracle
	wiki     *fakeWiki
	profiles *fakeProfiles
}

var fixedNow = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func groupRoster() chatwork.Roster {
	return chatwork.Roster{
		{ID: "1", DisplayName: "owner", Role: chatwork.RoleAdmin},
		{ID: "2", DisplayName: "alice", Role: chatwork.RoleMember},
		{ID: "3", DisplayName: "bob", Role: chatwork.RoleReadonly},
	}
}

func newHarness(t *testing.T, roster chatwork.Roster) *harness {
	t.Helper()
	h := &harness{
		cfg:      &config.Config{SerializeRooms: true, RosterFailurePolicy: config.RosterTrust, RoomLogNames: map[string]string{"10": "ログ"}},
		roster:   &fakeRoster{roster: roster},
		replier:  &fakeReplier{},
		roles:    &fakeRoles{},
		store:    newMemStore(),
		oracle:   &fakeOracle{answer: "yes"},
		wiki:     &fakeWiki{summary: "summary"},
		profiles: &fakeProfiles{text: "[info]stats[/info]"},
	}
	h.engine = New(h.cfg, Deps{
		Roster:       h.roster,
		Replier:      h.replier,
		Roles:        h.roles,
		Store:        h.store,
		Oracle:       h.oracle,
		Encyclopedia: h.wiki,
		Profiles:     h.profiles,
	})
	h.engine.now = func() time.Time { return fixedNow }
	h.engine.rand = func() float64 { return 0.5 }
	return h
}

func (h *harness) handle(t *testing.T, senderID, body string) {
	t.Helper()
	name := "user" + senderID
	if err := h.engine.Handle(context.Background(), Event{
		RoomID: "10", MessageID: "m-" + body, Sender: Sender{ID: senderID, DisplayName: name}, Body: body,
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

var errBoom = errors.New("boom")

type storageEntry = storage.CalendarEntry
