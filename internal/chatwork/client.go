package chatwork

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chatwork-bot/internal/restclient"
)

const tokenHeader = "X-ChatWorkToken"

// APIError is a non-2xx answer from the platform.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chatwork %s: status %d: %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// ID is an account or room id. The platform sends ids as JSON numbers; strings are accepted too.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Client struct {
	rc *restclient.RestClient
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{rc: restclient.NewRestClient(baseURL, map[string]string{tokenHeader: token}, timeout)}
}

type wireMember struct {
	AccountID ID     `json:"account_id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}

// FetchRoster returns the current members of a room. A nil error with an empty roster means a direct chat.
func (c *Client) FetchRoster(ctx context.Context, roomID string) (Roster, error) {
	body, status, err := c.rc.Get(ctx, "/rooms/"+url.PathEscape(roomID)+"/members", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	if status == http.StatusNoContent {
		return Roster{}, nil
	}
	if status/100 != 2 {
		return nil, &APIError{Op: "fetch roster", StatusCode: status, Body: string(body)}
	}
	var wire []wireMember
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	roster := make(Roster, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for _, w := range wire {
		id := string(w.AccountID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, Member{ID: id, DisplayName: w.Name, Role: w.Role})
	}
	return roster, nil
}

func (c *Client) PostMessage(ctx context.Context, roomID, text string) error {
	body, status, err := c.rc.PostForm(ctx, "/rooms/"+url.PathEscape(roomID)+"/messages", url.Values{"body": {text}}, nil)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	if status/100 != 2 {
		return &APIError{Op: "post message", StatusCode: status, Body: string(body)}
	}
	return nil
}

// SetRolePartition replaces the whole role assignment of a room.
func (c *Client) SetRolePartition(ctx context.Context, roomID string, p Partition) error {
	form := url.Values{
		"members_admin_ids":    {strings.Join(p.Admin, ",")},
		"members_member_ids":   {strings.Join(p.Member, ",")},
		"members_readonly_ids": {strings.Join(p.Readonly, ",")},
	}
	body, status, err := c.rc.PutForm(ctx, "/rooms/"+url.PathEscape(roomID)+"/members", form, nil)
	if err != nil {
		return fmt.Errorf("set role partition: %w", err)
	}
	if status/100 != 2 {
		return &APIError{Op: "set role partition", StatusCode: status, Body: string(body)}
	}
	return nil
}
