package engine

import (
	"regexp"
	"strings"
)

const emojiFloodThreshold = 50

var emojiCodes = []string{
	"roger", "bow", "cracker", "dance", "clap", "y", "sweat", "blush", "inlove",
	"talk", "yawn", "puke", "emo", "nod", "shake", "^^;", ":/", "whew", "flex",
	"gogo", "think", "please", "quick", "anger", "devil", "lightbulb", "h", "F",
	"eat", "^", "coffee", "beer", "handshake",
}

var emojiPattern = func() *regexp.Regexp {
	quoted := make([]string, len(emojiCodes))
	for i, c := range emojiCodes {
		quoted[i] = regexp.QuoteMeta(c)
	}
	return regexp.MustCompile(`\((?:` + strings.Join(quoted, "|") + `)\)`)
}()

// countEmoji counts non-overlapping "(code)" markups, case-sensitive.
func countEmoji(s string) int {
	return len(emojiPattern.FindAllStringIndex(s, -1))
}
