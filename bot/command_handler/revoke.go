package command_handler

import (
	"strconv"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/deltachat-bot/deltachat-loginbot/bot"
	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

func init() {
	bot.RegisterCommands("revoke", Revoke)
}

// Revoke removes the outstanding authorization code of an identity.
func Revoke(b *bot.Bot, m *tb.Message, params []string) {
	if len(params) < 1 {
		b.Bot.Reply(m, "Invalid revoke params. Format:\n/revoke <identity_ref>", tb.Silent, tb.NoPreview)
		return
	}
	ref, err := strconv.ParseUint(params[0], 10, 32)
	if err != nil {
		b.Bot.Reply(m, "identity_ref should be a number", tb.Silent, tb.NoPreview)
		return
	}
	log.Info("Revoke: identity: %v", ref)
	if err := b.Issuer.RevokeIdentity(model.IdentityRef(ref)); err != nil {
		b.Bot.Reply(m, err.Error(), tb.Silent, tb.NoPreview)
	} else {
		b.Bot.Reply(m, "Revoked.", tb.Silent, tb.NoPreview)
	}
}
