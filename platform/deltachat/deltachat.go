// Package deltachat adapts a Delta Chat account, driven over the JSON-RPC
// client, to the platform.Platform capability interface.
package deltachat

import (
	"context"
	"fmt"

	dc "github.com/deltachat/deltachat-rpc-client-go/deltachat"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
	"github.com/deltachat-bot/deltachat-loginbot/platform"
)

type Options struct {
	// AccountsDir is where the account database lives.
	AccountsDir string
	// Addr and MailPw configure the account on first run.
	Addr   string
	MailPw string
}

type Platform struct {
	rpc     *dc.RpcIO
	bot     *dc.Bot
	account *dc.Account
}

// New starts the RPC backend, picks or creates the bot account, configures it
// if needed and begins processing IO in the background.
func New(opts Options) (*Platform, error) {
	rpc := dc.NewRpcIO()
	rpc.AccountsDir = opts.AccountsDir
	if err := rpc.Start(); err != nil {
		return nil, fmt.Errorf("start deltachat rpc: %w", err)
	}
	manager := &dc.AccountManager{Rpc: rpc}
	bot := dc.NewBotFromAccountManager(manager)
	bot.On(dc.EVENT_ERROR, func(event *dc.Event) {
		log.Error("deltachat: %v", event.Msg)
	})
	bot.On(dc.EVENT_WARNING, func(event *dc.Event) {
		log.Warn("deltachat: %v", event.Msg)
	})
	bot.On(dc.EVENT_INFO, func(event *dc.Event) {
		log.Debug("deltachat: %v", event.Msg)
	})
	if !bot.IsConfigured() {
		log.Info("configuring deltachat account %v", opts.Addr)
		if err := bot.Configure(opts.Addr, opts.MailPw); err != nil {
			rpc.Stop()
			return nil, fmt.Errorf("configure deltachat account: %w", err)
		}
	}
	p := &Platform{
		rpc:     rpc,
		bot:     bot,
		account: bot.Account,
	}
	// Run starts IO and pumps the event feed into the handlers above.
	go bot.Run()
	return p, nil
}

func (p *Platform) Close() {
	p.rpc.Stop()
}

func (p *Platform) chat(channel model.ChannelID) *dc.Chat {
	return &dc.Chat{Account: p.account, Id: dc.ChatId(channel)}
}

func (p *Platform) CreateChannel(ctx context.Context, name string) (model.ChannelID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	chat, err := p.account.CreateGroup(name, true)
	if err != nil {
		return 0, fmt.Errorf("create verification channel: %w", err)
	}
	return model.ChannelID(chat.Id), nil
}

func (p *Platform) InviteLink(ctx context.Context, channel model.ChannelID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	link, _, err := p.chat(channel).QrCode()
	if err != nil {
		return "", fmt.Errorf("securejoin link for channel %v: %w", channel, err)
	}
	return link, nil
}

func (p *Platform) InviteSVG(ctx context.Context, channel model.ChannelID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, svg, err := p.chat(channel).QrCode()
	if err != nil {
		return "", fmt.Errorf("securejoin svg for channel %v: %w", channel, err)
	}
	return svg, nil
}

func (p *Platform) ListMembers(ctx context.Context, channel model.ChannelID) ([]platform.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	contacts, err := p.chat(channel).Contacts()
	if err != nil {
		return nil, fmt.Errorf("list members of channel %v: %w", channel, err)
	}
	self := p.account.Me()
	members := make([]platform.Member, 0, len(contacts))
	for _, contact := range contacts {
		members = append(members, platform.Member{
			Ref:  model.IdentityRef(contact.Id),
			Self: contact.Id == self.Id,
		})
	}
	return members, nil
}

func (p *Platform) SendNotice(ctx context.Context, channel model.ChannelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.chat(channel).SendText(text); err != nil {
		return fmt.Errorf("send notice to channel %v: %w", channel, err)
	}
	return nil
}

func (p *Platform) ResolveIdentity(ctx context.Context, ref model.IdentityRef) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}
	contact := &dc.Contact{Account: p.account, Id: dc.ContactId(ref)}
	snapshot, err := contact.Snapshot()
	if err != nil {
		return model.Identity{}, fmt.Errorf("resolve identity %v: %w", ref, err)
	}
	return model.Identity{
		Ref:  ref,
		Name: snapshot.DisplayName,
		Addr: snapshot.Address,
	}, nil
}
