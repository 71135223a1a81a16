package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatwork-bot/internal/calendar"
	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/lookup"
)

const (
	broadcastMarker = "[toall]"

	cmdFortune       = "おみくじ"
	cmdDayWrite      = "/day-write "
	cmdOracle        = "/yes-or-no"
	cmdWiki          = "/wiki/"
	cmdScratchUser   = "/scratch-user/"
	cmdScratchProj   = "/scratch-project/"
	cmdToday         = "/today"
	cmdDayView       = "/day-view"
	cmdMembers       = "/member"
	cmdMemberNames   = "/member-name"
	oracleFailAnswer = "APIエラーにより取得できませんでした。"
)

type rule struct {
	name string
	fn   func(context.Context, *dispatch) error
}

type mention struct {
	trigger   string
	accountID string
	label     string
}

var mentions = []mention{
	{trigger: "はんせい", accountID: "9859068", label: "なかよし"},
	{trigger: "ゆゆゆ", accountID: "10544705", label: "ゆゆゆ"},
	{trigger: "からめり", accountID: "10337719", label: "からめり"},
}

// ruleSet is the evaluation order. Every rule checks its own trigger.
func (e *Engine) ruleSet() []rule {
	rules := []rule{
		{"broadcast-guard", e.broadcastGuard},
		{"fortune", e.fortune},
		{"emoji-flood-guard", e.emojiFloodGuard},
		{"day-write", e.dayWrite},
		{"yes-or-no", e.oracle},
		{"wiki", e.wiki},
		{"scratch-user", e.profile(cmdScratchUser, lookup.ProfileUser)},
		{"scratch-project", e.profile(cmdScratchProj, lookup.ProfileProject)},
		{"today", e.todayQuery},
		{"day-view", e.dayView},
		{"member", e.memberList(cmdMembers, "メンバー一覧", func(m chatwork.Member) string {
			return chatwork.PIcon(m.ID) + m.DisplayName
		})},
		{"member-name", e.memberList(cmdMemberNames, "メンバー名一覧", func(m chatwork.Member) string {
			return m.DisplayName
		})},
	}
	for _, m := range mentions {
		rules = append(rules, rule{"mention:" + m.trigger, e.mention(m)})
	}
	return rules
}

func (e *Engine) reply(ctx context.Context, d *dispatch, text string) error {
	prefix := chatwork.Reply(d.ev.Sender.ID, d.ev.RoomID, d.ev.MessageID)
	return e.deps.Replier.Send(ctx, d.ev.RoomID, prefix+text)
}

func (e *Engine) broadcastGuard(ctx context.Context, d *dispatch) error {
	if d.direct || d.admin || !strings.Contains(d.body, broadcastMarker) {
		return nil
	}
	d.log.WithField("sender", d.ev.Sender.DisplayName).Info("non-admin used broadcast marker")
	return e.deps.Roles.SetRole(ctx, d.ev.RoomID, d.ev.Sender.ID, chatwork.RoleReadonly, "TOALL を使用したため")
}

func (e *Engine) fortune(ctx context.Context, d *dispatch) error {
	if d.body != cmdFortune {
		return nil
	}
	result := drawFortune(d.admin, e.rand)
	return e.reply(ctx, d, chatwork.Info("おみくじ", "おみくじの結果は…\n\n"+result+"\n\nです！"))
}

func (e *Engine) emojiFloodGuard(ctx context.Context, d *dispatch) error {
	if d.direct || d.admin {
		return nil
	}
	n := countEmoji(d.body)
	if n < emojiFloodThreshold {
		return nil
	}
	d.log.WithField("sender", d.ev.Sender.DisplayName).WithField("emoji", n).Info("non-admin flooded emoji")
	return e.deps.Roles.SetRole(ctx, d.ev.RoomID, d.ev.Sender.ID, chatwork.RoleReadonly,
		fmt.Sprintf("Chatwork絵文字を%d個送信したため", n))
}

func (e *Engine) dayWrite(ctx context.Context, d *dispatch) error {
	if !strings.HasPrefix(d.body, cmdDayWrite) {
		return nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(d.body, cmdDayWrite))
	dateArg, description, ok := strings.Cut(arg, " ")
	if !ok || dateArg == "" {
		return e.reply(ctx, d, "コマンドの形式が正しくありません。「/day-write yyyy-mm-dd 〇〇の日」のように入力してください。")
	}
	spec, err := calendar.ParseSpec(dateArg)
	if err != nil {
		return e.reply(ctx, d, "日付の形式が正しくありません。「yyyy-mm-dd」「mm-dd」「dd」形式で入力してください。")
	}
	if _, err := e.deps.Store.AppendCalendarEntry(ctx, spec, description); err != nil {
		return errors.Join(err, e.reply(ctx, d, "日付の解析中にエラーが発生しました。"))
	}
	return e.reply(ctx, d, fmt.Sprintf("%s のイベント「%s」を日付リストに登録しました。", spec, description))
}

func (e *Engine) oracle(ctx context.Context, d *dispatch) error {
	if d.body != cmdOracle {
		return nil
	}
	answer, err := e.deps.Oracle.Answer(ctx)
	if err != nil {
		d.log.WithError(err).Warn("oracle lookup failed")
		answer = oracleFailAnswer
	}
	return e.reply(ctx, d, fmt.Sprintf("答えは「%s」です！", answer))
}

func (e *Engine) wiki(ctx context.Context, d *dispatch) error {
	if !strings.HasPrefix(d.body, cmdWiki) {
		return nil
	}
	term := strings.TrimSpace(strings.TrimPrefix(d.body, cmdWiki))
	if term == "" {
		return e.reply(ctx, d, "検索キーワードを指定してください。「/wiki/検索したいこと」のように入力してください。")
	}
	summary, err := e.deps.Encyclopedia.Summary(ctx, term)
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		summary = fmt.Sprintf("「%s」に関する記事は見つかりませんでした。", term)
	case err != nil:
		d.log.WithError(err).Warn("wikipedia lookup failed")
		summary = fmt.Sprintf("Wikipedia検索中にエラーが発生しました。「%s」", term)
	}
	return e.reply(ctx, d, "Wikipediaの検索結果です。\n\n"+summary)
}

func (e *Engine) profile(prefix string, kind lookup.ProfileKind) func(context.Context, *dispatch) error {
	subject, argName := "ユーザー", "ユーザー名"
	if kind == lookup.ProfileProject {
		subject, argName = "プロジェクト", "プロジェクトID"
	}
	usageHint := strings.TrimSuffix(prefix, "/") + "/[" + argName + "]"
	return func(ctx context.Context, d *dispatch) error {
		if !strings.HasPrefix(d.body, prefix) {
			return nil
		}
		id := strings.TrimSpace(strings.TrimPrefix(d.body, prefix))
		if id == "" {
			return e.reply(ctx, d, fmt.Sprintf("%sを指定してください。「%s」のように入力してください。", argName, usageHint))
		}
		stats, err := e.deps.Profiles.Profile(ctx, kind, id)
		switch {
		case errors.Is(err, lookup.ErrNotFound):
			stats = fmt.Sprintf("「%s」というScratch%sは見つかりませんでした。", id, subject)
		case err != nil:
			d.log.WithError(err).Warn("scratch lookup failed")
			stats = fmt.Sprintf("Scratch%s情報の取得中にエラーが発生しました。", subject)
		}
		return e.reply(ctx, d, fmt.Sprintf("Scratch%s「%s」の情報です。\n\n%s", subject, id, stats))
	}
}

func (e *Engine) todayQuery(ctx context.Context, d *dispatch) error {
	if d.body != cmdToday {
		return nil
	}
	entries, err := e.deps.Store.ListCalendarEntries(ctx)
	if err != nil {
		return err
	}
	now := e.today()
	var b strings.Builder
	b.WriteString("今日は" + calendar.LongDate(now) + "だよ！")
	matches := calendar.TodayKeys(now).Filter(entries)
	for _, m := range matches {
		b.WriteString("\n今日は" + m.Description + "だよ！")
	}
	if len(matches) == 0 {
		b.WriteString("\n今日は特に登録されたイベントはないみたい。")
	}
	return e.reply(ctx, d, "\n\n"+chatwork.Info("今日の情報", b.String()))
}

func (e *Engine) dayView(ctx context.Context, d *dispatch) error {
	if d.body != cmdDayView {
		return nil
	}
	entries, err := e.deps.Store.ListCalendarEntries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return e.reply(ctx, d, "日付リストにはまだイベントが登録されていません。")
	}
	var b strings.Builder
	for _, en := range entries {
		b.WriteString("\n" + calendar.Display(en.DateSpec) + " " + en.Description)
	}
	return e.reply(ctx, d, "\n\n"+chatwork.Info("日付一覧", b.String()))
}

// memberList replies with the freshly fetched roster. Suppressed in direct chats.
func (e *Engine) memberList(trigger, title string, line func(chatwork.Member) string) func(context.Context, *dispatch) error {
	return func(ctx context.Context, d *dispatch) error {
		if d.body != trigger || d.direct {
			return nil
		}
		roster, err := e.deps.Roster.FetchRoster(ctx, d.ev.RoomID)
		if err != nil || len(roster) == 0 {
			if err != nil {
				d.log.WithError(err).Warn("roster fetch for member list failed")
			}
			return e.reply(ctx, d, "メンバー情報の取得に失敗しました。")
		}
		lines := make([]string, len(roster))
		for i, m := range roster {
			lines[i] = line(m)
		}
		return e.reply(ctx, d, "\n\n"+chatwork.Info(title, strings.Join(lines, "\n")+"\n"))
	}
}

func (e *Engine) mention(m mention) func(context.Context, *dispatch) error {
	return func(ctx context.Context, d *dispatch) error {
		if d.body != m.trigger {
			return nil
		}
		text := fmt.Sprintf("%s %s\n%sに呼ばれてるよ！", chatwork.To(m.accountID), m.label, chatwork.PName(d.ev.Sender.ID))
		return e.deps.Replier.Send(ctx, d.ev.RoomID, text)
	}
}
