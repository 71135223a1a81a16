package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chatwork-bot/internal/restclient"
)

type ProfileKind string

const (
	ProfileUser    ProfileKind = "user"
	ProfileProject ProfileKind = "project"
)

const noInfo = "情報なし"

// Scratch reads user and project pages from the Scratch API and formats them as info blocks.
type Scratch struct {
	siteURL string
	rc      *restclient.RestClient
}

func NewScratch(apiURL, siteURL string, timeout time.Duration) *Scratch {
	return &Scratch{siteURL: strings.TrimRight(siteURL, "/"), rc: restclient.NewRestClient(apiURL, nil, timeout)}
}

func (s *Scratch) Profile(ctx context.Context, kind ProfileKind, id string) (string, error) {
	switch kind {
	case ProfileUser:
		return s.user(ctx, id)
	case ProfileProject:
		return s.project(ctx, id)
	}
	return "", fmt.Errorf("%w: unknown profile kind %q", ErrUnavailable, kind)
}

func (s *Scratch) fetch(ctx context.Context, op, path string, out any) error {
	body, status, err := s.rc.Get(ctx, path, nil, nil)
	if err != nil {
		return unavailable(op, err)
	}
	if err := checkStatus(op, status); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unavailable(op+" decode", err)
	}
	return nil
}

func (s *Scratch) user(ctx context.Context, username string) (string, error) {
	var resp struct {
		Profile *struct {
			Status *string `json:"status"`
		} `json:"profile"`
	}
	if err := s.fetch(ctx, "scratch user", "/users/"+url.PathEscape(username), &resp); err != nil {
		return "", err
	}
	status := noInfo
	if resp.Profile != nil && resp.Profile.Status != nil {
		status = *resp.Profile.Status
	}
	link := fmt.Sprintf("%s/users/%s/", s.siteURL, url.PathEscape(username))
	return fmt.Sprintf("[info][title]Scratchユーザー情報[/title]ユーザー名: %s\nステータス: %s\nユーザーページ: %s[/info]",
		username, status, link), nil
}

func (s *Scratch) project(ctx context.Context, projectID string) (string, error) {
	var resp struct {
		Title string `json:"title"`
		Stats *struct {
			Views     *int `json:"views"`
			Loves     *int `json:"loves"`
			Favorites *int `json:"favorites"`
			Remixes   *int `json:"remixes"`
		} `json:"stats"`
	}
	if err := s.fetch(ctx, "scratch project", "/projects/"+url.PathEscape(projectID), &resp); err != nil {
		return "", err
	}
	title := resp.Title
	if title == "" {
		title = "タイトルなし"
	}
	views, loves, favorites, remixes := noInfo, noInfo, noInfo, noInfo
	if st := resp.Stats; st != nil {
		views, loves, favorites, remixes = count(st.Views), count(st.Loves), count(st.Favorites), count(st.Remixes)
	}
	link := fmt.Sprintf("%s/projects/%s/", s.siteURL, url.PathEscape(projectID))
	return fmt.Sprintf("[info][title]Scratchプロジェクト情報[/title]タイトル: %s\n閲覧数: %s\n好きの数: %s\nお気に入りの数: %s\nリミックス数: %s\nプロジェクトページ: %s[/info]",
		title, views, loves, favorites, remixes, link), nil
}

func count(n *int) string {
	if n == nil {
		return noInfo
	}
	return strconv.Itoa(*n)
}
