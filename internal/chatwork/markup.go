package chatwork

import "fmt"

// Reply addresses a response to a specific message and names its sender.
func Reply(accountID, roomID, messageID string) string {
	return fmt.Sprintf("[rp aid=%s to=%s-%s][pname:%s]さん、", accountID, roomID, messageID, accountID)
}

func Info(title, body string) string {
	return fmt.Sprintf("[info][title]%s[/title]%s[/info]", title, body)
}

func ErrorBlock(title, body string) string {
	return fmt.Sprintf("[error][title]%s[/title]%s[/error]", title, body)
}

func To(accountID string) string { return "[To:" + accountID + "]" }

func PName(accountID string) string { return "[pname:" + accountID + "]" }

func PIcon(accountID string) string { return "[picon:" + accountID + "]" }
