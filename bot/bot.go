// Package bot runs the optional Telegram operator bot: it announces logins
// and lets the operator revoke outstanding authorization codes.
package bot

import (
	"strings"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/service"
)

type Bot struct {
	Bot    *tb.Bot
	Issuer *service.CodeIssuer

	operatorChat int64
}

type CommandHandler func(b *Bot, m *tb.Message, params []string)

var GlobalCommandMapper = make(map[string]CommandHandler)

func RegisterCommands(command string, f CommandHandler) {
	GlobalCommandMapper[command] = f
}

// New connects the bot. Only the configured operator chat may issue
// commands. Call Start to begin polling.
func New(token string, operatorChat int64, issuer *service.CodeIssuer, poller *tb.LongPoller) (*Bot, error) {
	if poller == nil {
		poller = &tb.LongPoller{Timeout: 15 * time.Second}
	}
	b, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: poller,
	})
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		Bot:          b,
		Issuer:       issuer,
		operatorChat: operatorChat,
	}
	b.Handle(tb.OnText, func(m *tb.Message) {
		if !strings.HasPrefix(m.Text, "/") || len(m.Text) <= 1 {
			return
		}
		if m.Chat.ID != operatorChat {
			_, _ = b.Reply(m, "This bot only obeys its operator.")
			return
		}
		text := strings.TrimPrefix(m.Text, "/")
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return
		}
		if handler, ok := GlobalCommandMapper[fields[0]]; ok {
			handler(bot, m, fields[1:])
		}
	})
	return bot, nil
}

// Start blocks polling for updates.
func (b *Bot) Start() {
	b.Bot.Start()
}

// Announce posts a message into the operator chat. Best effort.
func (b *Bot) Announce(text string) {
	if _, err := b.Bot.Send(&tb.Chat{ID: b.operatorChat}, text, tb.Silent, tb.NoPreview); err != nil {
		log.Warn("announce to operator chat: %v", err)
	}
}
