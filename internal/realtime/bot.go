package realtime

import "strings"

const (
	ReplyOrderStatus = "You can check your orders in the History section."
	ReplyGreeting    = "Hello! 👋 Welcome to Smart Shop Support."
	ReplyGeneric     = "I received your message! How else can I help?"
)

// botRules are checked in order and the first matching keyword wins.
var botRules = []struct {
	keyword string
	reply   string
}{
	{keyword: "order", reply: ReplyOrderStatus},
	{keyword: "hello", reply: ReplyGreeting},
}

// BotReply picks the automatic support reply for a user message using a
// case-insensitive substring match.
func BotReply(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range botRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.reply
		}
	}

	return ReplyGeneric
}
